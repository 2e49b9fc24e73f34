package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	domainuser "glampstay/internal/domain/user"
)

// Dispatcher turns relayed events into emails and pushes. A returned error means the
// event should be delivered again; events that produce no notification return nil.
type Dispatcher struct {
	Mailer  policies.Mailer
	Push    policies.PushSender
	Users   domainuser.Repository
	Limiter *rate.Limiter
	// StaffEmail receives contact form inquiries.
	StaffEmail string
	Logger     *slog.Logger
}

// NewLimiter allows perSecond deliveries with a small burst.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (d *Dispatcher) Handle(ctx context.Context, rec outbox.EventRecord) error {
	kind, err := ParseKind(rec.Name)
	if err != nil {
		d.log().Debug("event has no notification", "event", rec.Name, "event_id", rec.ID)
		return nil
	}
	var p Payload
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		// A malformed payload will not improve on retry.
		d.log().Error("notification payload unreadable", "event", rec.Name, "event_id", rec.ID, "error", err)
		return nil
	}
	msg, err := render(kind, p)
	if err != nil {
		d.log().Error("notification render failed", "event", rec.Name, "event_id", rec.ID, "error", err)
		return nil
	}

	to := p.GuestEmail
	if kind == KindContactSubmitted {
		to = d.StaffEmail
	}
	if to != "" && d.Mailer != nil {
		if err := d.wait(ctx); err != nil {
			return err
		}
		if err := d.Mailer.Send(ctx, policies.Email{To: to, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text}); err != nil {
			return fmt.Errorf("notify: email %s for %s: %w", kind, rec.Aggregate, err)
		}
	}
	if msg.Push != "" && p.UserID != "" {
		d.push(ctx, kind, p, msg)
	}
	d.log().Info("notification delivered", "kind", kind, "event_id", rec.ID, "aggregate", rec.Aggregate)
	return nil
}

// push is best effort: a device that cannot be reached must not cause the email to resend.
func (d *Dispatcher) push(ctx context.Context, kind Kind, p Payload, msg rendered) {
	if d.Push == nil || d.Users == nil {
		return
	}
	user, err := d.Users.ByID(ctx, domainuser.ID(p.UserID))
	if err != nil {
		if !errors.Is(err, domainuser.ErrNotFound) {
			d.log().Warn("push skipped, user lookup failed", "user_id", p.UserID, "error", err)
		}
		return
	}
	if len(user.DeviceTokens) == 0 {
		return
	}
	if err := d.wait(ctx); err != nil {
		return
	}
	err = d.Push.Push(ctx, policies.PushMessage{
		Tokens: append([]string(nil), user.DeviceTokens...),
		Title:  msg.Push,
		Body:   msg.Subject,
		Data:   map[string]string{"kind": string(kind), "bookingId": p.BookingID},
	})
	if err != nil {
		d.log().Warn("push delivery failed", "user_id", p.UserID, "kind", kind, "error", err)
	}
}

func (d *Dispatcher) wait(ctx context.Context) error {
	if d.Limiter == nil {
		return nil
	}
	return d.Limiter.Wait(ctx)
}

func (d *Dispatcher) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
