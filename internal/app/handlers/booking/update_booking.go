package booking

import (
	"context"
	"log/slog"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	domainbooking "glampstay/internal/domain/booking"
)

const updateBookingKey = "booking.update"

// UpdateBookingCommand edits guest-facing details. Nil fields are left alone.
type UpdateBookingCommand struct {
	BookingID       string `validate:"required"`
	Contact         *ContactPatch
	SpecialRequests *string `validate:"omitempty,max=2000"`
}

type ContactPatch struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

func (c UpdateBookingCommand) Key() string { return updateBookingKey }

type UpdateBookingHandler struct {
	Logger *slog.Logger
	Clock  support.Clock
}

func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (dto.BookingDTO, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	principal, err := support.Caller(ctx)
	if err != nil {
		return dto.BookingDTO{}, err
	}
	booking, err := support.BookingForCaller(ctx, unit.Bookings(), principal, cmd.BookingID)
	if err != nil {
		return dto.BookingDTO{}, err
	}

	update := domainbooking.DetailsUpdate{SpecialRequests: cmd.SpecialRequests, Now: h.Clock.Now()}
	if cmd.Contact != nil {
		update.Contact = &domainbooking.Contact{Name: cmd.Contact.Name, Email: cmd.Contact.Email, Phone: cmd.Contact.Phone}
	}
	if err := booking.UpdateDetails(update); err != nil {
		return dto.BookingDTO{}, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return dto.BookingDTO{}, support.StoreErr(err)
	}
	if h.Logger != nil {
		h.Logger.Info("booking details updated", "booking_id", booking.ID, "user_id", principal.UserID)
	}
	return dto.MapBooking(booking), nil
}

var _ commands.Handler[UpdateBookingCommand, dto.BookingDTO] = (*UpdateBookingHandler)(nil)
