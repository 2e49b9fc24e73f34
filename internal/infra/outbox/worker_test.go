package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	appoutbox "glampstay/internal/app/outbox"
)

type sliceSource struct {
	mu      sync.Mutex
	pending []*Claimed
	sent    []string
	failed  map[string]int
}

func (s *sliceSource) Claim(ctx context.Context, workerID string) (*Claimed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, nil
	}
	rec := s.pending[0]
	s.pending = s.pending[1:]
	return rec, nil
}

func (s *sliceSource) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, id)
	return nil
}

func (s *sliceSource) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[string]int{}
	}
	s.failed[id]++
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
}

type recordingProducer struct {
	out  []published
	fail error
}

func (p *recordingProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload})
	return nil
}

func record(id, name string) *Claimed {
	return &Claimed{EventRecord: appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"bookingId":"b-1"}`),
		OccurredAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "b-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}}
}

func TestWorkerDrainPublishesEnvelopes(t *testing.T) {
	src := &sliceSource{pending: []*Claimed{record("ev-1", "booking.requested"), record("ev-2", "contact.submitted")}}
	prod := &recordingProducer{}
	w := &Worker{Source: src, Producer: prod, TopicPrefix: "dev."}

	if err := w.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(prod.out) != 2 || len(src.sent) != 2 {
		t.Fatalf("published %d, sent %d; want 2 and 2", len(prod.out), len(src.sent))
	}
	if prod.out[0].topic != "dev.booking.events.v1" || prod.out[1].topic != "dev.contact.events.v1" {
		t.Fatalf("unexpected topics %q %q", prod.out[0].topic, prod.out[1].topic)
	}
	var env Envelope
	if err := json.Unmarshal(prod.out[0].payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.ID != "ev-1" || env.Type != "booking.requested.v1" || env.Source != "app://glampstay" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.TraceParent != "00-abc-def-01" {
		t.Fatalf("traceparent not propagated: %q", env.TraceParent)
	}
}

func TestWorkerMarksFailedOnPublishError(t *testing.T) {
	src := &sliceSource{pending: []*Claimed{record("ev-1", "booking.confirmed")}}
	w := &Worker{Source: src, Producer: &recordingProducer{fail: errors.New("broker down")}}

	if err := w.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if src.failed["ev-1"] != 1 {
		t.Fatalf("expected one failure mark, got %v", src.failed)
	}
	if len(src.sent) != 0 {
		t.Fatalf("nothing should be marked sent, got %v", src.sent)
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	w := &Worker{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}

func TestNextRetryUsesLastBackoffStep(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}, Now: func() time.Time { return base }}
	if got := w.nextRetry(0); !got.Equal(base.Add(time.Second)) {
		t.Fatalf("attempt 0 retry at %v", got)
	}
	if got := w.nextRetry(7); !got.Equal(base.Add(time.Minute)) {
		t.Fatalf("attempt 7 retry at %v", got)
	}
}

type memoryInbox struct {
	seen map[string]bool
}

func (m *memoryInbox) Seen(ctx context.Context, id string) (bool, error) {
	if m.seen[id] {
		return true, nil
	}
	m.seen[id] = true
	return false, nil
}

func (m *memoryInbox) Forget(ctx context.Context, id string) error {
	delete(m.seen, id)
	return nil
}

type countingHandler struct {
	calls int
	fail  error
}

func (h *countingHandler) Handle(ctx context.Context, rec appoutbox.EventRecord) error {
	h.calls++
	return h.fail
}

func TestDeliveryDedupesAndRetriesFailures(t *testing.T) {
	payload, _, err := EncodeEnvelope(record("ev-9", "booking.canceled").EventRecord, "app://test")
	if err != nil {
		t.Fatal(err)
	}
	handler := &countingHandler{fail: errors.New("smtp down")}
	d := &Delivery{Inbox: &memoryInbox{seen: map[string]bool{}}, Handler: handler}

	if err := d.Deliver(context.Background(), payload); err == nil {
		t.Fatal("expected handler failure to surface")
	}
	handler.fail = nil
	if err := d.Deliver(context.Background(), payload); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := d.Deliver(context.Background(), payload); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if handler.calls != 2 {
		t.Fatalf("handler called %d times, want 2", handler.calls)
	}
}

func TestDecodeEnvelopeRoundTripsRecord(t *testing.T) {
	payload, headers, err := EncodeEnvelope(record("ev-3", "booking.reminder_due").EventRecord, "app://test")
	if err != nil {
		t.Fatal(err)
	}
	if headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("content-type header = %q", headers["content-type"])
	}
	rec, err := DecodeEnvelope(payload)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "ev-3" || rec.Name != "booking.reminder_due" || rec.Aggregate != "b-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, err := DecodeEnvelope([]byte("not json")); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
	}
}
