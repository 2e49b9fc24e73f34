package outbox

import (
	"context"
	"errors"
	"log/slog"

	appoutbox "glampstay/internal/app/outbox"
)

// Inbox records which events a consumer already handled.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type EventHandler interface {
	Handle(ctx context.Context, rec appoutbox.EventRecord) error
}

// Delivery decodes a published envelope and hands it to the handler once.
type Delivery struct {
	Inbox   Inbox
	Handler EventHandler
	Logger  *slog.Logger
}

func (d *Delivery) Deliver(ctx context.Context, payload []byte) error {
	rec, err := DecodeEnvelope(payload)
	if err != nil {
		// a poison message would block the partition forever
		d.logger().Warn("dropping malformed event", "error", err)
		return nil
	}
	if d.Inbox != nil {
		seen, err := d.Inbox.Seen(ctx, rec.ID)
		if err != nil {
			return err
		}
		if seen {
			d.logger().Debug("event already handled", "event_id", rec.ID)
			return nil
		}
	}
	if err := d.Handler.Handle(ctx, rec); err != nil {
		if d.Inbox != nil {
			if ferr := d.Inbox.Forget(ctx, rec.ID); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}
		return err
	}
	return nil
}

func (d *Delivery) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// LocalProducer delivers straight to an in-process handler. It stands in for
// the broker when the service runs without Kafka.
type LocalProducer struct {
	Delivery *Delivery
}

func (p LocalProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	return p.Delivery.Deliver(ctx, payload)
}
