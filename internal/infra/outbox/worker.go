package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "glampstay/internal/app/outbox"
)

// Claimed is an outbox record leased to one worker.
type Claimed struct {
	appoutbox.EventRecord
	Attempts int
}

// Source is the durable side of the outbox the relay drains.
type Source interface {
	Claim(ctx context.Context, workerID string) (*Claimed, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

type Worker struct {
	Source      Source
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	EventSource string
	ID          string
	Backoff     []time.Duration
	// Wake lets the outbox trigger a pass right after a commit.
	Wake   <-chan struct{}
	Logger *slog.Logger
	Now    func() time.Time
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// maxBatch bounds one pass so a stuck producer cannot starve shutdown.
const maxBatch = 100

func (w *Worker) Run(ctx context.Context) error {
	if w.Source == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-w.Wake:
		}
		if err := w.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger().Error("outbox relay pass failed", "error", err)
		}
	}
}

// Drain publishes everything currently due and returns how the last claim went.
func (w *Worker) Drain(ctx context.Context) error {
	for i := 0; i < maxBatch; i++ {
		more, err := w.processOnce(ctx)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	rec, err := w.Source.Claim(ctx, w.ID)
	if err != nil || rec == nil {
		return false, err
	}
	payload, headers, err := EncodeEnvelope(rec.EventRecord, w.source())
	if err != nil {
		w.fail(ctx, rec, err)
		return true, nil
	}
	if err := w.Producer.Publish(ctx, TopicFor(w.TopicPrefix, rec.Name), rec.Aggregate, payload, headers); err != nil {
		w.fail(ctx, rec, err)
		return true, nil
	}
	return true, w.Source.MarkSent(ctx, rec.ID)
}

func (w *Worker) fail(ctx context.Context, rec *Claimed, cause error) {
	next := w.nextRetry(rec.Attempts)
	w.logger().Warn("outbox publish failed",
		"event_id", rec.ID,
		"event", rec.Name,
		"attempts", rec.Attempts+1,
		"next_attempt", next,
		"error", cause,
	)
	if err := w.Source.MarkFailed(ctx, rec.ID, next, cause.Error()); err != nil {
		w.logger().Error("outbox mark failed", "event_id", rec.ID, "error", err)
	}
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return w.now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return w.now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return w.now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.EventSource != "" {
		return w.EventSource
	}
	return "app://glampstay"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
