package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"glampstay/internal/app/apperr"
	domainauth "glampstay/internal/domain/auth"
	domainbooking "glampstay/internal/domain/booking"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
)

// StoreErr passes known domain errors through and marks everything else as a store failure.
func StoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainproperty.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainproperty.ErrAlreadyExists),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Store(err)
}

// Caller returns the authenticated principal or ErrUnauthenticated.
func Caller(ctx context.Context) (domainauth.Principal, error) {
	principal, ok := domainauth.PrincipalFromContext(ctx)
	if !ok {
		return domainauth.Principal{}, apperr.Wrap(apperr.KindUnauthorized, domainauth.ErrUnauthenticated, "authentication required")
	}
	return principal, nil
}

// BookingForCaller loads a booking the caller may act on. Callers who are neither the
// owner nor an administrator get Forbidden whether or not the booking exists, so ids
// cannot be discovered.
func BookingForCaller(ctx context.Context, repo domainbooking.Repository, principal domainauth.Principal, id string) (*domainbooking.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation("booking id is required")
	}
	b, err := repo.ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) && !principal.IsAdmin() {
			return nil, forbidden()
		}
		return nil, StoreErr(err)
	}
	if !principal.IsAdmin() && !b.OwnedBy(string(principal.UserID)) {
		return nil, forbidden()
	}
	return b, nil
}

func forbidden() error {
	return apperr.Wrap(apperr.KindForbidden, domainauth.ErrForbidden, "you do not have access to this booking")
}

// Clock is injected into handlers so tests can pin time.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c != nil {
		return c().UTC()
	}
	return time.Now().UTC()
}
