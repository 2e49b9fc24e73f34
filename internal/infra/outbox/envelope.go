package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	appoutbox "glampstay/internal/app/outbox"
)

const (
	cloudEventsVersion     = "1.0"
	cloudEventsContentType = "application/cloudevents+json"
)

var ErrMalformedEnvelope = errors.New("outbox: malformed cloudevents envelope")

// Envelope is the structured-mode CloudEvents body put on the wire.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
	TraceParent     string          `json:"traceparent,omitempty"`
}

// EncodeEnvelope wraps a record. The envelope id is the record id so consumers can dedupe retries.
func EncodeEnvelope(rec appoutbox.EventRecord, source string) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, ErrMalformedEnvelope
	}
	env := Envelope{
		SpecVersion:     cloudEventsVersion,
		ID:              rec.ID,
		Type:            rec.Name + ".v1",
		Source:          source,
		Subject:         rec.Aggregate,
		Time:            rec.OccurredAt.UTC(),
		DataContentType: "application/json",
		Data:            json.RawMessage(rec.Payload),
		TraceParent:     rec.Headers["traceparent"],
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": cloudEventsContentType}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// DecodeEnvelope turns a wire message back into the record the relay published.
func DecodeEnvelope(payload []byte) (appoutbox.EventRecord, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return appoutbox.EventRecord{}, errors.Join(ErrMalformedEnvelope, err)
	}
	if env.ID == "" || env.Type == "" {
		return appoutbox.EventRecord{}, ErrMalformedEnvelope
	}
	rec := appoutbox.EventRecord{
		ID:         env.ID,
		Name:       strings.TrimSuffix(env.Type, ".v1"),
		Payload:    []byte(env.Data),
		OccurredAt: env.Time,
		Aggregate:  env.Subject,
		Headers:    map[string]string{},
	}
	if env.TraceParent != "" {
		rec.Headers["traceparent"] = env.TraceParent
	}
	return rec, nil
}

// TopicFor maps "booking.confirmed" to "<prefix>booking.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events.v1"
}
