package booking

import (
	"context"

	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/queries"
	"glampstay/internal/app/uow"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingDTO, error) {
	principal, err := support.Caller(ctx)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	booking, err := support.BookingForCaller(execCtx, unit.Bookings(), principal, q.BookingID)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	return dto.MapBooking(booking), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingDTO] = (*GetBookingHandler)(nil)
