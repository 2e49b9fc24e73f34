package booking

import (
	"errors"
	"strings"
)

var (
	ErrUnknownStatus        = errors.New("booking: unknown status")
	ErrUnknownPaymentStatus = errors.New("booking: unknown payment status")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// ActiveStatuses are the statuses that hold dates on a property calendar.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled:
		return s, nil
	case "cancelled":
		return StatusCanceled, nil
	default:
		return "", ErrUnknownStatus
	}
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentProcessed PaymentStatus = "processed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
)

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentPending, PaymentProcessed, PaymentRefunded, PaymentFailed:
		return s, nil
	default:
		return "", ErrUnknownPaymentStatus
	}
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentProcessed, PaymentFailed},
	PaymentFailed:    {PaymentProcessed, PaymentFailed},
	PaymentProcessed: {PaymentRefunded},
}

func (s PaymentStatus) canMoveTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
