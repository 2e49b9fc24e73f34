package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"glampstay/internal/domain/pricing"
	"glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
	"glampstay/internal/domain/shared/events"
	"glampstay/internal/domain/shared/money"
)

var (
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrInvalidState      = errors.New("booking: invalid state transition")
	ErrUserRequired      = errors.New("booking: user id is required")
	ErrIDRequired        = errors.New("booking: id is required")
	ErrCheckInInPast     = errors.New("booking: check-in date is in the past")
	ErrPaymentTransition = errors.New("booking: invalid payment status transition")
	ErrAlreadyReminded   = errors.New("booking: reminder already sent")
	ErrNothingToUpdate   = errors.New("booking: nothing to update")
)

type BookingID string

type Booking struct {
	ID               BookingID
	PropertyID       property.ID
	UserID           string
	Range            daterange.DateRange
	Guests           GuestCount
	Contact          Contact
	SpecialRequests  string
	Policy           Policy
	Price            pricing.PriceBreakdown
	Status           Status
	PaymentStatus    PaymentStatus
	PaymentReference string
	RefundAmount     money.Money
	CancelReason     string
	CanceledBy       string
	CanceledAt       time.Time
	ConfirmedAt      time.Time
	CompletedAt      time.Time
	ReminderSentAt   time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type ListFilter struct {
	PropertyID property.ID
	UserID     string
	Statuses   []Status
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// ListByProperty returns the property's bookings in the given statuses (all when empty).
	ListByProperty(ctx context.Context, propertyID property.ID, statuses ...Status) ([]*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
	// ListDueReminders returns confirmed, not yet reminded bookings checking in within [from, to).
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID              BookingID
	PropertyID      property.ID
	UserID          string
	Range           daterange.DateRange
	Guests          GuestCount
	Contact         Contact
	SpecialRequests string
	Policy          Policy
	Price           pricing.PriceBreakdown
	CreatedAt       time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if err := params.Guests.Validate(); err != nil {
		return nil, err
	}
	contact := params.Contact.Normalize()
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	requests, err := normalizeRequests(params.SpecialRequests)
	if err != nil {
		return nil, err
	}
	if params.Price.Nights < 1 {
		return nil, pricing.ErrInvalidNights
	}
	if _, err := ParsePolicy(string(params.Policy)); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:              params.ID,
		PropertyID:      params.PropertyID,
		UserID:          params.UserID,
		Range:           params.Range,
		Guests:          params.Guests,
		Contact:         contact,
		SpecialRequests: requests,
		Policy:          params.Policy,
		Price:           params.Price,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		RefundAmount:    money.Zero(params.Price.Total.Currency),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		GuestName:  b.Contact.Name,
		GuestEmail: b.Contact.Email,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Guests:     b.Guests.Counted(),
		Total:      b.Price.Total,
		At:         now,
	})
	return b, nil
}

// ValidateDateRange rejects stays whose check-in day is before today (UTC).
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkIn := dr.CheckIn.UTC()
	checkInDay := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	if checkInDay.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}

// OwnedBy reports whether userID placed the booking.
func (b *Booking) OwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

func (b *Booking) Confirm(paymentReference string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	now = now.UTC()
	if ref := strings.TrimSpace(paymentReference); ref != "" {
		if b.PaymentStatus != PaymentProcessed {
			if !b.PaymentStatus.canMoveTo(PaymentProcessed) {
				return ErrPaymentTransition
			}
			b.PaymentStatus = PaymentProcessed
		}
		b.PaymentReference = ref
	}
	b.Status = StatusConfirmed
	b.ConfirmedAt = now
	b.UpdatedAt = now
	b.Record(BookingConfirmed{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		GuestName:  b.Contact.Name,
		GuestEmail: b.Contact.Email,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Total:      b.Price.Total,
		At:         now,
	})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	now = now.UTC()
	b.Status = StatusCompleted
	b.CompletedAt = now
	b.UpdatedAt = now
	b.Record(BookingCompleted{BookingID: b.ID, PropertyID: b.PropertyID, UserID: b.UserID, GuestName: b.Contact.Name, GuestEmail: b.Contact.Email, At: now})
	return nil
}

type CancelParams struct {
	RequestedBy string
	Reason      string
	Decision    RefundDecision
	Now         time.Time
}

// Cancel moves a pending or confirmed booking to canceled and records the refund owed.
// The refund is computed against the stored total, never a fresh quote.
func (b *Booking) Cancel(params CancelParams) (money.Money, error) {
	if !b.Status.Active() {
		return money.Money{}, ErrInvalidState
	}
	now := params.Now.UTC()
	refund, err := RefundFor(b.Policy, b.Price.Total, b.Range.CheckIn, now, params.Decision)
	if err != nil {
		return money.Money{}, err
	}
	b.Status = StatusCanceled
	b.RefundAmount = refund
	b.CancelReason = strings.TrimSpace(params.Reason)
	b.CanceledBy = params.RequestedBy
	b.CanceledAt = now
	b.UpdatedAt = now
	b.Record(BookingCanceled{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		GuestName:  b.Contact.Name,
		GuestEmail: b.Contact.Email,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Refund:     refund,
		Reason:     b.CancelReason,
		CanceledBy: params.RequestedBy,
		At:         now,
	})
	return refund, nil
}

// RefundRequired reports whether money has to be returned through the payment provider.
func (b *Booking) RefundRequired() bool {
	return b.Status == StatusCanceled && b.RefundAmount.Amount > 0 && b.PaymentStatus == PaymentProcessed
}

type DetailsUpdate struct {
	Contact         *Contact
	SpecialRequests *string
	Now             time.Time
}

// UpdateDetails changes guest-facing details only; dates, party and price stay frozen.
func (b *Booking) UpdateDetails(update DetailsUpdate) error {
	if b.Status.Terminal() {
		return ErrInvalidState
	}
	if update.Contact == nil && update.SpecialRequests == nil {
		return ErrNothingToUpdate
	}
	if update.Contact != nil {
		merged := b.Contact
		if v := strings.TrimSpace(update.Contact.Name); v != "" {
			merged.Name = v
		}
		if v := strings.TrimSpace(update.Contact.Email); v != "" {
			merged.Email = v
		}
		if v := strings.TrimSpace(update.Contact.Phone); v != "" {
			merged.Phone = v
		}
		merged = merged.Normalize()
		if err := merged.Validate(); err != nil {
			return err
		}
		b.Contact = merged
	}
	if update.SpecialRequests != nil {
		requests, err := normalizeRequests(*update.SpecialRequests)
		if err != nil {
			return err
		}
		b.SpecialRequests = requests
	}
	b.UpdatedAt = update.Now.UTC()
	return nil
}

func (b *Booking) RecordPayment(status PaymentStatus, reference string, now time.Time) error {
	if b.PaymentStatus == status && status != PaymentFailed {
		return nil
	}
	if !b.PaymentStatus.canMoveTo(status) {
		return ErrPaymentTransition
	}
	b.PaymentStatus = status
	if ref := strings.TrimSpace(reference); ref != "" {
		b.PaymentReference = ref
	}
	b.UpdatedAt = now.UTC()
	return nil
}

// MarkReminded stamps the reminder and records the event that triggers it.
func (b *Booking) MarkReminded(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !b.ReminderSentAt.IsZero() {
		return ErrAlreadyReminded
	}
	now = now.UTC()
	b.ReminderSentAt = now
	b.UpdatedAt = now
	b.Record(BookingReminderDue{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		GuestName:  b.Contact.Name,
		GuestEmail: b.Contact.Email,
		CheckIn:    b.Range.CheckIn,
		At:         now,
	})
	return nil
}

// Clone returns a deep copy without pending events.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.EventRecorder = events.EventRecorder{}
	return &c
}
