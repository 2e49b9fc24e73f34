package schedule

import (
	"context"
	"time"
)

const (
	TaskCompleteBooking = "booking:complete"
	TaskReminderSweep   = "booking:reminder_sweep"
)

// CompleteBookingPayload is the body of a TaskCompleteBooking task.
type CompleteBookingPayload struct {
	BookingID string `json:"bookingId"`
}

// Scheduler enqueues a named task to run at runAt. id makes repeated scheduling a no-op.
type Scheduler interface {
	Schedule(ctx context.Context, name, id string, payload any, runAt time.Time) error
}

// Nop drops every task. Used when no task queue is configured.
type Nop struct{}

func (Nop) Schedule(context.Context, string, string, any, time.Time) error { return nil }
