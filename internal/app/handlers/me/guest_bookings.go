package me

import (
	"context"
	"log/slog"
	"sort"

	"glampstay/internal/app/dto"
	handlersupport "glampstay/internal/app/handlers/support"
	"glampstay/internal/app/queries"
	"glampstay/internal/app/uow"
)

const listGuestBookingsKey = "me.bookings.list"

// ListGuestBookingsQuery returns the caller's bookings, newest stay first.
type ListGuestBookingsQuery struct{}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, _ ListGuestBookingsQuery) (dto.BookingCollection, error) {
	principal, err := handlersupport.Caller(ctx)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().ListByUser(execCtx, string(principal.UserID))
	if err != nil {
		return dto.BookingCollection{}, handlersupport.StoreErr(err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Range.CheckIn.After(items[j].Range.CheckIn) })
	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "user_id", principal.UserID, "count", len(items))
	}
	return dto.MapBookings(items), nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
