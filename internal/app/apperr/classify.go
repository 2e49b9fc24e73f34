package apperr

import (
	"context"
	"errors"

	"glampstay/internal/domain/auth"
	"glampstay/internal/domain/availability"
	"glampstay/internal/domain/booking"
	"glampstay/internal/domain/contact"
	"glampstay/internal/domain/pricing"
	"glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
	"glampstay/internal/domain/shared/money"
	"glampstay/internal/domain/user"
)

var sentinelKinds = []struct {
	kind Kind
	errs []error
}{
	{KindInvalidDateRange, []error{daterange.ErrInvalidRange, booking.ErrCheckInInPast}},
	{KindConflict, []error{availability.ErrUnavailable}},
	{KindStore, []error{availability.ErrStoreUnavailable}},
	{KindNotFound, []error{booking.ErrBookingNotFound, property.ErrNotFound, user.ErrNotFound}},
	{KindUnauthorized, []error{auth.ErrUnauthenticated, auth.ErrInvalidToken}},
	{KindForbidden, []error{auth.ErrForbidden}},
	{KindValidation, []error{
		daterange.ErrInvalidDay,
		pricing.ErrInvalidNights, pricing.ErrCurrencyUnset, pricing.ErrNegativeRate,
		pricing.ErrInvalidPercent, pricing.ErrInvalidModifier,
		money.ErrInvalidCurrency, money.ErrCurrencyMismatch,
		booking.ErrInvalidGuests, booking.ErrCapacityExceeded, booking.ErrPetsNotAllowed,
		booking.ErrContactName, booking.ErrContactEmail, booking.ErrSpecialRequestLen,
		booking.ErrInvalidState, booking.ErrPaymentTransition, booking.ErrAlreadyReminded,
		booking.ErrNothingToUpdate, booking.ErrUnknownPolicy, booking.ErrInvalidRefund,
		booking.ErrUnknownStatus, booking.ErrUnknownPaymentStatus, booking.ErrUserRequired,
		property.ErrIDRequired, property.ErrNameRequired, property.ErrCapacity,
		property.ErrInvalidKind, property.ErrInvalidSlug, property.ErrAlreadyExists,
		property.ErrPhotoURLMissing,
		contact.ErrNameRequired, contact.ErrInvalidEmail, contact.ErrMessageRequired,
		contact.ErrMessageTooLong,
		user.ErrDeviceToken, user.ErrInvalidRole,
	}},
}

// Classify turns any error into an *Error, mapping known domain sentinels to their kind.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnavailable, Message: "request timed out", Err: err}
	}
	for _, group := range sentinelKinds {
		for _, sentinel := range group.errs {
			if errors.Is(err, sentinel) {
				if group.kind == KindStore {
					return Store(err)
				}
				return &Error{Kind: group.kind, Err: err}
			}
		}
	}
	return &Error{Kind: KindInternal, Err: err}
}
