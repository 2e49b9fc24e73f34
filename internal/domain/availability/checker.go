package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"glampstay/internal/domain/booking"
	"glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
)

var (
	ErrUnavailable      = errors.New("availability: requested dates overlap an existing booking")
	ErrStoreUnavailable = errors.New("availability: booking store unavailable")
)

// BookingSource is the read side the checker needs; booking.Repository satisfies it.
type BookingSource interface {
	ListByProperty(ctx context.Context, propertyID property.ID, statuses ...booking.Status) ([]*booking.Booking, error)
}

// Checker answers whether a property is free for a date range. It fails closed: when the
// store cannot be read the range is reported unavailable together with the error.
type Checker struct {
	Bookings BookingSource
}

func (c Checker) IsRangeAvailable(ctx context.Context, propertyID property.ID, candidate daterange.DateRange) (bool, error) {
	conflicts, err := c.conflicts(ctx, propertyID, candidate, true)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Ensure returns ErrUnavailable when the range is taken and ErrStoreUnavailable when it cannot tell.
func (c Checker) Ensure(ctx context.Context, propertyID property.ID, candidate daterange.DateRange) error {
	ok, err := c.IsRangeAvailable(ctx, propertyID, candidate)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnavailable
	}
	return nil
}

// Conflicts lists every active booking overlapping the candidate range.
func (c Checker) Conflicts(ctx context.Context, propertyID property.ID, candidate daterange.DateRange) ([]*booking.Booking, error) {
	return c.conflicts(ctx, propertyID, candidate, false)
}

func (c Checker) conflicts(ctx context.Context, propertyID property.ID, candidate daterange.DateRange, firstOnly bool) ([]*booking.Booking, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if c.Bookings == nil {
		return nil, ErrStoreUnavailable
	}
	existing, err := c.Bookings.ListByProperty(ctx, propertyID, booking.ActiveStatuses...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	var out []*booking.Booking
	for _, b := range existing {
		if b == nil || !b.Status.Active() {
			continue
		}
		if daterange.Overlaps(candidate, b.Range) {
			out = append(out, b)
			if firstOnly {
				break
			}
		}
	}
	return out, nil
}

// BookedDays lists the occupied calendar days of a property inside window, ascending.
func (c Checker) BookedDays(ctx context.Context, propertyID property.ID, window daterange.DateRange) ([]time.Time, error) {
	conflicts, err := c.Conflicts(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}
	seen := make(map[time.Time]struct{})
	days := make([]time.Time, 0)
	for _, b := range conflicts {
		for _, d := range b.Range.Days() {
			if !window.ContainsDate(d) {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
