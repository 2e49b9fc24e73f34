package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "glampstay/internal/app/outbox"
	infraoutbox "glampstay/internal/infra/outbox"
)

type outboxEntry struct {
	record      appoutbox.EventRecord
	attempts    int
	nextAttempt time.Time
	claimed     bool
	lastError   string
}

// Outbox keeps events in memory and hands them to the relay worker.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	wake    chan struct{}
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{wake: make(chan struct{}, 1), now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{record: record, nextAttempt: o.now().UTC()})
	return nil
}

// Flush wakes the relay instead of waiting for its next tick.
func (o *Outbox) Flush(ctx context.Context) error {
	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

func (o *Outbox) Wake() <-chan struct{} {
	return o.wake
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Claimed, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now().UTC()
	for _, e := range o.entries {
		if e.claimed || e.nextAttempt.After(now) {
			continue
		}
		e.claimed = true
		return &infraoutbox.Claimed{EventRecord: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.record.ID == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.entries {
		if e.record.ID == id {
			e.claimed = false
			e.attempts++
			e.nextAttempt = next
			e.lastError = errMsg
			return nil
		}
	}
	return nil
}

// Pending returns records not yet delivered.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}

var (
	_ appoutbox.Outbox   = (*Outbox)(nil)
	_ infraoutbox.Source = (*Outbox)(nil)
)
