package notify

import (
	"errors"
	"strings"
)

var ErrUnknownKind = errors.New("notify: unknown notification kind")

// Kind is the closed set of events that produce guest or staff notifications.
type Kind string

const (
	KindBookingRequested Kind = "booking.requested"
	KindBookingConfirmed Kind = "booking.confirmed"
	KindBookingCanceled  Kind = "booking.canceled"
	KindBookingCompleted Kind = "booking.completed"
	KindReminderDue      Kind = "booking.reminder_due"
	KindContactSubmitted Kind = "contact.submitted"
)

var kinds = map[Kind]struct{}{
	KindBookingRequested: {},
	KindBookingConfirmed: {},
	KindBookingCanceled:  {},
	KindBookingCompleted: {},
	KindReminderDue:      {},
	KindContactSubmitted: {},
}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := kinds[k]; !ok {
		return "", ErrUnknownKind
	}
	return k, nil
}
