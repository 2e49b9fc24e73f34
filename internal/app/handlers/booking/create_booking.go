package booking

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/middleware"
	"glampstay/internal/app/outbox"
	domainavailability "glampstay/internal/domain/availability"
	domainbooking "glampstay/internal/domain/booking"
	domainpricing "glampstay/internal/domain/pricing"
	domainproperty "glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

type GuestsInput struct {
	Adults   int `json:"adults" validate:"gte=1"`
	Children int `json:"children" validate:"gte=0"`
	Infants  int `json:"infants" validate:"gte=0"`
	Pets     int `json:"pets" validate:"gte=0"`
}

func (g GuestsInput) toDomain() domainbooking.GuestCount {
	return domainbooking.GuestCount{Adults: g.Adults, Children: g.Children, Infants: g.Infants, Pets: g.Pets}
}

type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

func (c ContactInput) toDomain() domainbooking.Contact {
	return domainbooking.Contact{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// CreateBookingCommand places a pending booking for the caller. Dates are YYYY-MM-DD.
type CreateBookingCommand struct {
	PropertyID      string `validate:"required"`
	CheckIn         string `validate:"required"`
	CheckOut        string `validate:"required"`
	Guests          GuestsInput
	Contact         ContactInput
	SpecialRequests string `validate:"max=2000"`
	Policy          string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID string `json:"bookingId"`
}

type CreateBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   support.Clock
	NewID   func() string
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, err
	}
	principal, err := support.Caller(ctx)
	if err != nil {
		return nil, err
	}

	dr, err := daterange.Parse(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}
	guests := cmd.Guests.toDomain()
	if err := guests.Validate(); err != nil {
		return nil, err
	}
	contact := cmd.Contact.toDomain().Normalize()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	policy, err := domainbooking.ParsePolicy(cmd.Policy)
	if err != nil {
		return nil, err
	}

	property, err := unit.Properties().ByID(ctx, domainproperty.ID(strings.TrimSpace(cmd.PropertyID)))
	if err != nil {
		return nil, support.StoreErr(err)
	}
	if !property.Active {
		return nil, domainproperty.ErrNotFound
	}
	if err := guests.CheckFits(property.Capacity, property.PetsAllowed); err != nil {
		return nil, err
	}

	checker := domainavailability.Checker{Bookings: unit.Bookings()}
	if err := checker.Ensure(ctx, property.ID, dr); err != nil {
		return nil, err
	}

	price, err := domainpricing.Quote(property.Rates, dr.Nights(), policy.ModifierBps())
	if err != nil {
		return nil, err
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(h.newID()),
		PropertyID:      property.ID,
		UserID:          string(principal.UserID),
		Range:           dr,
		Guests:          guests,
		Contact:         contact,
		SpecialRequests: cmd.SpecialRequests,
		Policy:          policy,
		Price:           price,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	// Narrow the window between the first check and the write.
	if err := checker.Ensure(ctx, property.ID, dr); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, support.StoreErr(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, support.StoreErr(err)
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested",
			"booking_id", booking.ID,
			"property_id", property.ID,
			"user_id", principal.UserID,
			"range", dr.String(),
			"policy", policy,
			"total", booking.Price.Total.Amount,
		)
	}
	return &CreateBookingResult{BookingID: string(booking.ID)}, nil
}

func (h *CreateBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
