package reminders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/outbox"
	domainbooking "glampstay/internal/domain/booking"
)

const (
	sweepKey = "reminders.sweep"

	DefaultLead = 48 * time.Hour
)

// SweepCommand stamps confirmed bookings checking in within Lead and records a reminder
// event for each. It is sent by the periodic task and the ops endpoint, never by guests.
type SweepCommand struct {
	Lead time.Duration
}

func (SweepCommand) Key() string { return sweepKey }

func (SweepCommand) AllowAnonymous() bool { return true }

type SweepResult struct {
	Reminded []string `json:"reminded"`
}

type SweepHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   support.Clock
}

func (h *SweepHandler) Handle(ctx context.Context, cmd SweepCommand) (*SweepResult, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, err
	}
	lead := cmd.Lead
	if lead <= 0 {
		lead = DefaultLead
	}
	now := h.Clock.Now()
	due, err := unit.Bookings().ListDueReminders(ctx, now, now.Add(lead))
	if err != nil {
		return nil, support.StoreErr(err)
	}

	result := &SweepResult{Reminded: make([]string, 0, len(due))}
	for _, booking := range due {
		if err := booking.MarkReminded(now); err != nil {
			if errors.Is(err, domainbooking.ErrAlreadyReminded) || errors.Is(err, domainbooking.ErrInvalidState) {
				continue
			}
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, booking); err != nil {
			return nil, support.StoreErr(err)
		}
		if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
			return nil, support.StoreErr(err)
		}
		result.Reminded = append(result.Reminded, string(booking.ID))
	}
	if h.Logger != nil {
		h.Logger.Info("reminder sweep finished", "lead", lead.String(), "candidates", len(due), "reminded", len(result.Reminded))
	}
	return result, nil
}

var _ commands.Handler[SweepCommand, *SweepResult] = (*SweepHandler)(nil)
