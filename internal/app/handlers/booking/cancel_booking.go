package booking

import (
	"context"
	"fmt"
	"log/slog"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/middleware"
	"glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	domainbooking "glampstay/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

// CancelBookingCommand cancels on behalf of the owner or an administrator.
// RefundAmount, in minor units, is honoured only for administrators.
type CancelBookingCommand struct {
	BookingID       string `validate:"required"`
	Reason          string `validate:"max=500"`
	RefundAmount    *int64
	IdempotencyKeyV string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelBookingCommand) ResultPrototype() any { return &CancelBookingResult{} }

type CancelBookingResult struct {
	BookingID    string       `json:"bookingId"`
	Status       string       `json:"status"`
	RefundAmount dto.MoneyDTO `json:"refundAmount"`
	RefundID     string       `json:"refundId,omitempty"`
}

type CancelBookingHandler struct {
	Payments policies.PaymentsPort
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Logger   *slog.Logger
	Clock    support.Clock
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, err
	}
	principal, err := support.Caller(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := support.BookingForCaller(ctx, unit.Bookings(), principal, cmd.BookingID)
	if err != nil {
		return nil, err
	}

	now := h.Clock.Now()
	refund, err := booking.Cancel(domainbooking.CancelParams{
		RequestedBy: string(principal.UserID),
		Reason:      cmd.Reason,
		Decision:    domainbooking.RefundDecision{Admin: principal.IsAdmin(), Override: cmd.RefundAmount},
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	// The refund goes out before the commit; a provider failure rolls the cancellation back.
	var refundID string
	if booking.RefundRequired() {
		if h.Payments == nil {
			return nil, apperr.New(apperr.KindUnavailable, "refunds are not configured")
		}
		refundID, err = h.Payments.Refund(ctx, string(booking.ID), booking.PaymentReference, refund)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, fmt.Errorf("refund booking %s: %w", booking.ID, err), "refund could not be issued")
		}
		if err := booking.RecordPayment(domainbooking.PaymentRefunded, "", now); err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, support.StoreErr(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, support.StoreErr(err)
	}

	if h.Logger != nil {
		h.Logger.Info("booking canceled",
			"booking_id", booking.ID,
			"canceled_by", principal.UserID,
			"admin", principal.IsAdmin(),
			"refund", refund.Amount,
			"refund_id", refundID,
		)
	}
	return &CancelBookingResult{
		BookingID:    string(booking.ID),
		Status:       string(booking.Status),
		RefundAmount: dto.MapMoney(refund),
		RefundID:     refundID,
	}, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.IdempotentCommand = CancelBookingCommand{}
