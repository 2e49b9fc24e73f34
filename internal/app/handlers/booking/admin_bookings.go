package booking

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/outbox"
	"glampstay/internal/app/queries"
	"glampstay/internal/app/schedule"
	"glampstay/internal/app/uow"
	domainbooking "glampstay/internal/domain/booking"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
)

const (
	listBookingsKey    = "admin.bookings.list"
	confirmBookingKey  = "admin.bookings.confirm"
	completeBookingKey = "admin.bookings.complete"
	recordPaymentKey   = "admin.bookings.payment"
	autoCompleteKey    = "booking.auto_complete"
)

type ListBookingsQuery struct {
	PropertyID string
	Status     string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

func (q ListBookingsQuery) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	filter := domainbooking.ListFilter{PropertyID: domainproperty.ID(strings.TrimSpace(q.PropertyID))}
	if raw := strings.TrimSpace(q.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := domainbooking.ParseStatus(raw)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		filter.Statuses = []domainbooking.Status{status}
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().List(execCtx, filter)
	if err != nil {
		return dto.BookingCollection{}, support.StoreErr(err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Range.CheckIn.Before(items[j].Range.CheckIn) })
	if h.Logger != nil {
		h.Logger.Debug("bookings listed", "property_id", filter.PropertyID, "status", q.Status, "count", len(items))
	}
	return dto.MapBookings(items), nil
}

// ConfirmBookingCommand accepts a pending booking. A payment reference marks it paid.
type ConfirmBookingCommand struct {
	BookingID        string `validate:"required"`
	PaymentReference string `validate:"max=200"`
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

func (c ConfirmBookingCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type CompleteBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

func (c CompleteBookingCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type RecordPaymentCommand struct {
	BookingID string `validate:"required"`
	Status    string `validate:"required"`
	Reference string `validate:"max=200"`
}

func (c RecordPaymentCommand) Key() string { return recordPaymentKey }

func (c RecordPaymentCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

// AutoCompleteBookingCommand is sent by the task worker at check-out.
type AutoCompleteBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c AutoCompleteBookingCommand) Key() string { return autoCompleteKey }

func (c AutoCompleteBookingCommand) AllowAnonymous() bool { return true }

type AdminBookingHandler struct {
	Scheduler schedule.Scheduler
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	Logger    *slog.Logger
	Clock     support.Clock
}

func (h *AdminBookingHandler) Confirm(ctx context.Context, cmd ConfirmBookingCommand) (dto.BookingDTO, error) {
	unit, booking, err := h.load(ctx, cmd.BookingID)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	if err := booking.Confirm(cmd.PaymentReference, h.Clock.Now()); err != nil {
		return dto.BookingDTO{}, err
	}
	if err := h.persist(ctx, unit, booking); err != nil {
		return dto.BookingDTO{}, err
	}
	if h.Scheduler != nil {
		payload := schedule.CompleteBookingPayload{BookingID: string(booking.ID)}
		if err := h.Scheduler.Schedule(ctx, schedule.TaskCompleteBooking, "complete-"+string(booking.ID), payload, booking.Range.CheckOut); err != nil {
			// The booking can still be completed by hand; do not fail the confirmation.
			h.log().Warn("auto-complete not scheduled", "booking_id", booking.ID, "error", err)
		}
	}
	h.log().Info("booking confirmed", "booking_id", booking.ID, "payment_status", booking.PaymentStatus)
	return dto.MapBooking(booking), nil
}

func (h *AdminBookingHandler) Complete(ctx context.Context, cmd CompleteBookingCommand) (dto.BookingDTO, error) {
	unit, booking, err := h.load(ctx, cmd.BookingID)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	if err := booking.Complete(h.Clock.Now()); err != nil {
		return dto.BookingDTO{}, err
	}
	if err := h.persist(ctx, unit, booking); err != nil {
		return dto.BookingDTO{}, err
	}
	h.log().Info("booking completed", "booking_id", booking.ID)
	return dto.MapBooking(booking), nil
}

func (h *AdminBookingHandler) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (dto.BookingDTO, error) {
	status, err := domainbooking.ParsePaymentStatus(cmd.Status)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	unit, booking, err := h.load(ctx, cmd.BookingID)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	if err := booking.RecordPayment(status, cmd.Reference, h.Clock.Now()); err != nil {
		return dto.BookingDTO{}, err
	}
	if err := h.persist(ctx, unit, booking); err != nil {
		return dto.BookingDTO{}, err
	}
	h.log().Info("payment recorded", "booking_id", booking.ID, "payment_status", status)
	return dto.MapBooking(booking), nil
}

// AutoComplete completes a confirmed booking whose stay has ended. Anything else is left alone
// so a late or repeated task is harmless.
func (h *AdminBookingHandler) AutoComplete(ctx context.Context, cmd AutoCompleteBookingCommand) (dto.BookingDTO, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.BookingDTO{}, support.StoreErr(err)
	}
	now := h.Clock.Now()
	if booking.Status != domainbooking.StatusConfirmed || now.Before(booking.Range.CheckOut) {
		h.log().Debug("auto-complete skipped", "booking_id", booking.ID, "status", booking.Status)
		return dto.MapBooking(booking), nil
	}
	if err := booking.Complete(now); err != nil {
		return dto.BookingDTO{}, err
	}
	if err := h.persist(ctx, unit, booking); err != nil {
		return dto.BookingDTO{}, err
	}
	h.log().Info("booking auto-completed", "booking_id", booking.ID)
	return dto.MapBooking(booking), nil
}

func (h *AdminBookingHandler) load(ctx context.Context, id string) (uow.UnitOfWork, *domainbooking.Booking, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, nil, err
	}
	principal, err := support.Caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	booking, err := support.BookingForCaller(ctx, unit.Bookings(), principal, id)
	if err != nil {
		return nil, nil, err
	}
	return unit, booking, nil
}

func (h *AdminBookingHandler) persist(ctx context.Context, unit uow.UnitOfWork, booking *domainbooking.Booking) error {
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return support.StoreErr(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return support.StoreErr(err)
	}
	return nil
}

func (h *AdminBookingHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)
