package properties

import (
	"context"
	"log/slog"
	"strings"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/queries"
	"glampstay/internal/app/uow"
	domainavailability "glampstay/internal/domain/availability"
	domainbooking "glampstay/internal/domain/booking"
	domainpricing "glampstay/internal/domain/pricing"
	domainproperty "glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
)

const (
	quoteKey        = "properties.quote"
	availabilityKey = "properties.availability"

	maxAvailabilityWindowDays = 366
)

// QuoteQuery prices a stay without booking it.
type QuoteQuery struct {
	PropertyID string `validate:"required"`
	CheckIn    string `validate:"required"`
	CheckOut   string `validate:"required"`
	Policy     string
	Adults     int `validate:"gte=1"`
	Children   int `validate:"gte=0"`
	Infants    int `validate:"gte=0"`
	Pets       int `validate:"gte=0"`
}

func (QuoteQuery) Key() string { return quoteKey }

func (QuoteQuery) AllowAnonymous() bool { return true }

type AvailabilityQuery struct {
	PropertyID string `validate:"required"`
	From       string `validate:"required"`
	To         string `validate:"required"`
}

func (AvailabilityQuery) Key() string { return availabilityKey }

func (AvailabilityQuery) AllowAnonymous() bool { return true }

type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Clock      support.Clock
}

func (h *QuoteHandler) Quote(ctx context.Context, q QuoteQuery) (dto.QuoteDTO, error) {
	dr, err := daterange.Parse(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	if err := domainbooking.ValidateDateRange(dr, h.Clock.Now()); err != nil {
		return dto.QuoteDTO{}, err
	}
	policy, err := domainbooking.ParsePolicy(q.Policy)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	guests := domainbooking.GuestCount{Adults: q.Adults, Children: q.Children, Infants: q.Infants, Pets: q.Pets}
	if err := guests.Validate(); err != nil {
		return dto.QuoteDTO{}, err
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := h.activeProperty(execCtx, unit, q.PropertyID)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	if err := guests.CheckFits(property.Capacity, property.PetsAllowed); err != nil {
		return dto.QuoteDTO{}, err
	}
	price, err := domainpricing.Quote(property.Rates, dr.Nights(), policy.ModifierBps())
	if err != nil {
		return dto.QuoteDTO{}, err
	}

	checker := domainavailability.Checker{Bookings: unit.Bookings()}
	available, err := checker.IsRangeAvailable(execCtx, property.ID, dr)
	if err != nil && h.Logger != nil {
		// available is already false: the quote still shows the price.
		h.Logger.Warn("availability unknown for quote", "property_id", property.ID, "error", err)
	}

	return dto.QuoteDTO{
		PropertyID: string(property.ID),
		CheckIn:    dr.CheckIn.Format(daterange.DayLayout),
		CheckOut:   dr.CheckOut.Format(daterange.DayLayout),
		Policy:     string(policy),
		Available:  available,
		Price:      dto.MapPriceBreakdown(price),
	}, nil
}

func (h *QuoteHandler) Availability(ctx context.Context, q AvailabilityQuery) (dto.AvailabilityDTO, error) {
	window, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	if window.Nights() > maxAvailabilityWindowDays {
		return dto.AvailabilityDTO{}, apperr.Validation("availability window is limited to one year")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := h.activeProperty(execCtx, unit, q.PropertyID)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	checker := domainavailability.Checker{Bookings: unit.Bookings()}
	days, err := checker.BookedDays(execCtx, property.ID, window)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	out := dto.AvailabilityDTO{
		PropertyID: string(property.ID),
		From:       window.CheckIn.Format(daterange.DayLayout),
		To:         window.CheckOut.Format(daterange.DayLayout),
		BookedDays: make([]string, 0, len(days)),
	}
	for _, d := range days {
		out.BookedDays = append(out.BookedDays, d.Format(daterange.DayLayout))
	}
	return out, nil
}

func (h *QuoteHandler) activeProperty(ctx context.Context, unit uow.UnitOfWork, rawID string) (*domainproperty.Property, error) {
	property, err := unit.Properties().ByID(ctx, domainproperty.ID(strings.TrimSpace(rawID)))
	if err != nil {
		return nil, support.StoreErr(err)
	}
	if !property.Active {
		return nil, domainproperty.ErrNotFound
	}
	return property, nil
}

var _ queries.Handler[QuoteQuery, dto.QuoteDTO] = queries.HandlerFunc[QuoteQuery, dto.QuoteDTO]((&QuoteHandler{}).Quote)
