package booking

import (
	"time"

	"glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID   `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	CheckIn    time.Time   `json:"checkIn"`
	CheckOut   time.Time   `json:"checkOut"`
	Guests     int         `json:"guests"`
	Total      money.Money `json:"total"`
	At         time.Time   `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID   `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	CheckIn    time.Time   `json:"checkIn"`
	CheckOut   time.Time   `json:"checkOut"`
	Total      money.Money `json:"total"`
	At         time.Time   `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCanceled struct {
	BookingID  BookingID   `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	CheckIn    time.Time   `json:"checkIn"`
	CheckOut   time.Time   `json:"checkOut"`
	Refund     money.Money `json:"refund"`
	Reason     string      `json:"reason"`
	CanceledBy string      `json:"canceledBy"`
	At         time.Time   `json:"at"`
}

func (e BookingCanceled) EventName() string     { return "booking.canceled" }
func (e BookingCanceled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCanceled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID  BookingID   `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	At         time.Time   `json:"at"`
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingReminderDue struct {
	BookingID  BookingID   `json:"bookingId"`
	PropertyID property.ID `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	CheckIn    time.Time   `json:"checkIn"`
	At         time.Time   `json:"at"`
}

func (e BookingReminderDue) EventName() string     { return "booking.reminder_due" }
func (e BookingReminderDue) AggregateID() string   { return string(e.BookingID) }
func (e BookingReminderDue) OccurredAt() time.Time { return e.At }
