package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"glampstay/internal/domain/availability"
	"glampstay/internal/domain/booking"
	"glampstay/internal/domain/shared/daterange"
)

func TestClassifyDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
	}{
		{daterange.ErrInvalidRange, KindInvalidDateRange, http.StatusBadRequest},
		{fmt.Errorf("create: %w", availability.ErrUnavailable), KindConflict, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", availability.ErrStoreUnavailable, errors.New("dial tcp")), KindStore, http.StatusInternalServerError},
		{booking.ErrBookingNotFound, KindNotFound, http.StatusNotFound},
		{booking.ErrCapacityExceeded, KindValidation, http.StatusBadRequest},
		{Forbidden("not yours"), KindForbidden, http.StatusForbidden},
		{errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := Classify(tc.err)
		if got.Kind != tc.kind {
			t.Errorf("Classify(%v) = %s, want %s", tc.err, got.Kind, tc.kind)
		}
		if status := HTTPStatus(got.Kind); status != tc.status {
			t.Errorf("HTTPStatus(%s) = %d, want %d", got.Kind, status, tc.status)
		}
	}
}

func TestPublicMessageHidesStoreDetails(t *testing.T) {
	err := Classify(fmt.Errorf("%w: %w", availability.ErrStoreUnavailable, errors.New("mongo: 10.0.0.4 refused")))
	if msg := PublicMessage(err); msg != "storage temporarily unavailable" {
		t.Fatalf("store message leaked: %q", msg)
	}
	if msg := PublicMessage(Classify(errors.New("nil pointer somewhere"))); msg != "internal error" {
		t.Fatalf("internal message leaked: %q", msg)
	}
	if msg := PublicMessage(Classify(booking.ErrPetsNotAllowed)); msg != booking.ErrPetsNotAllowed.Error() {
		t.Fatalf("validation message = %q", msg)
	}
}
