package middleware

import (
	"context"
	"errors"
	"fmt"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/queries"
)

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation rejects malformed commands before authorization, idempotency or a
// transaction see them. Failures always reach the caller as a validation error.
func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, invalid(cmd.Key(), err)
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, invalid(q.Key(), err)
			}
			return nextFn(ctx, q)
		})
	}
}

// invalid keeps errors that already carry a kind and marks the rest as validation
// failures, naming the message in the cause for logs.
func invalid(key string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return err
	}
	return apperr.Wrap(apperr.KindValidation, fmt.Errorf("validate %s: %w", key, err), err.Error())
}
