package dto

import (
	"time"

	domainbooking "glampstay/internal/domain/booking"
	"glampstay/internal/domain/shared/daterange"
)

type GuestsDTO struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`
}

type ContactDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type BookingDTO struct {
	ID               string            `json:"id"`
	PropertyID       string            `json:"propertyId"`
	UserID           string            `json:"userId"`
	CheckIn          string            `json:"checkIn"`
	CheckOut         string            `json:"checkOut"`
	Guests           GuestsDTO         `json:"guests"`
	Contact          ContactDTO        `json:"contactInformation"`
	SpecialRequests  string            `json:"specialRequests,omitempty"`
	Policy           string            `json:"cancellationPolicy"`
	Price            PriceBreakdownDTO `json:"price"`
	Status           string            `json:"status"`
	PaymentStatus    string            `json:"paymentStatus"`
	PaymentReference string            `json:"paymentReference,omitempty"`
	RefundAmount     MoneyDTO          `json:"refundAmount"`
	CancelReason     string            `json:"cancelReason,omitempty"`
	CanceledAt       *time.Time        `json:"canceledAt,omitempty"`
	ConfirmedAt      *time.Time        `json:"confirmedAt,omitempty"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	ReminderSentAt   *time.Time        `json:"reminderSentAt,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type BookingCollection struct {
	Items []BookingDTO `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingDTO {
	return BookingDTO{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		UserID:     b.UserID,
		CheckIn:    b.Range.CheckIn.Format(daterange.DayLayout),
		CheckOut:   b.Range.CheckOut.Format(daterange.DayLayout),
		Guests: GuestsDTO{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Infants:  b.Guests.Infants,
			Pets:     b.Guests.Pets,
		},
		Contact: ContactDTO{
			Name:  b.Contact.Name,
			Email: b.Contact.Email,
			Phone: b.Contact.Phone,
		},
		SpecialRequests:  b.SpecialRequests,
		Policy:           string(b.Policy),
		Price:            MapPriceBreakdown(b.Price),
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		PaymentReference: b.PaymentReference,
		RefundAmount:     MapMoney(b.RefundAmount),
		CancelReason:     b.CancelReason,
		CanceledAt:       optionalTime(b.CanceledAt),
		ConfirmedAt:      optionalTime(b.ConfirmedAt),
		CompletedAt:      optionalTime(b.CompletedAt),
		ReminderSentAt:   optionalTime(b.ReminderSentAt),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]BookingDTO, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
