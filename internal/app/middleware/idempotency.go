package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	domainauth "glampstay/internal/domain/auth"
)

// IdempotentCommand is implemented by commands that replay their first outcome for a repeated key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to the handler result type
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

// Idempotency stores the first result or client error per caller and key and replays it.
// It must run after authorization: a replay never re-checks who is asking.
// Store and internal failures are not remembered so a retry can succeed.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			key = scopedKey(ctx, cmd.Key(), key)
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, apperr.Store(err)
			}
			if found {
				return replay(rec, idCmd, codec)
			}

			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
			if err != nil {
				classified := apperr.Classify(err)
				if !remember(classified.Kind) {
					return nil, err
				}
				record.Error = apperr.PublicMessage(classified)
				record.ErrorKind = string(classified.Kind)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, apperr.Store(saveErr)
			}
			return result, nil
		})
	}
}

// scopedKey ties a client key to the command and the caller, so one caller's key
// never replays another caller's outcome.
func scopedKey(ctx context.Context, command, key string) string {
	caller := "anonymous"
	if p, ok := domainauth.PrincipalFromContext(ctx); ok && p.Authenticated() {
		caller = string(p.UserID)
	}
	return command + ":" + caller + ":" + key
}

func replay(rec IdempotencyRecord, cmd IdempotentCommand, codec ResultCodec) (any, error) {
	if rec.Error != "" {
		kind := apperr.Kind(rec.ErrorKind)
		if kind == "" {
			kind = apperr.KindInternal
		}
		return nil, apperr.New(kind, rec.Error)
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return normalizePrototype(proto), nil
	}
	if err := codec.Decode(rec.Payload, proto); err != nil {
		return nil, err
	}
	return normalizePrototype(proto), nil
}

func remember(kind apperr.Kind) bool {
	switch kind {
	case apperr.KindStore, apperr.KindInternal, apperr.KindUnavailable, apperr.KindUnauthorized:
		return false
	default:
		return true
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
