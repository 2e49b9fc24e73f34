package availability

import (
	"context"
	"errors"
	"testing"

	"glampstay/internal/domain/booking"
	"glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/daterange"
)

type stubSource struct {
	items []*booking.Booking
	err   error
}

func (s stubSource) ListByProperty(_ context.Context, _ property.ID, statuses ...booking.Status) ([]*booking.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*booking.Booking
	for _, b := range s.items {
		for _, st := range statuses {
			if b.Status == st {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func stay(t *testing.T, in, out string, status booking.Status) *booking.Booking {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return &booking.Booking{ID: booking.BookingID(in), Range: dr, Status: status}
}

func rng(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func TestIsRangeAvailable(t *testing.T) {
	checker := Checker{Bookings: stubSource{items: []*booking.Booking{
		stay(t, "2024-06-01", "2024-06-05", booking.StatusConfirmed),
		stay(t, "2024-06-10", "2024-06-12", booking.StatusPending),
		stay(t, "2024-06-20", "2024-06-25", booking.StatusCanceled),
	}}}
	cases := []struct {
		in, out string
		want    bool
	}{
		{"2024-06-05", "2024-06-08", true},
		{"2024-05-28", "2024-06-01", true},
		{"2024-06-04", "2024-06-06", false},
		{"2024-06-11", "2024-06-13", false},
		{"2024-06-21", "2024-06-23", true},
		{"2024-05-01", "2024-07-01", false},
	}
	for _, tc := range cases {
		got, err := checker.IsRangeAvailable(context.Background(), "p1", rng(t, tc.in, tc.out))
		if err != nil {
			t.Fatalf("%s..%s: %v", tc.in, tc.out, err)
		}
		if got != tc.want {
			t.Errorf("%s..%s available = %v, want %v", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestCheckerFailsClosed(t *testing.T) {
	checker := Checker{Bookings: stubSource{err: errors.New("connection refused")}}
	ok, err := checker.IsRangeAvailable(context.Background(), "p1", rng(t, "2024-06-01", "2024-06-02"))
	if ok {
		t.Fatal("store failure must not report availability")
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := (Checker{}).Ensure(context.Background(), "p1", rng(t, "2024-06-01", "2024-06-02")); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("nil source: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestEnsureReportsConflict(t *testing.T) {
	checker := Checker{Bookings: stubSource{items: []*booking.Booking{stay(t, "2024-06-01", "2024-06-05", booking.StatusPending)}}}
	if err := checker.Ensure(context.Background(), "p1", rng(t, "2024-06-03", "2024-06-04")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestBookedDaysClipsToWindow(t *testing.T) {
	checker := Checker{Bookings: stubSource{items: []*booking.Booking{
		stay(t, "2024-06-01", "2024-06-04", booking.StatusConfirmed),
		stay(t, "2024-06-04", "2024-06-06", booking.StatusPending),
	}}}
	days, err := checker.BookedDays(context.Background(), "p1", rng(t, "2024-06-02", "2024-06-05"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-06-02", "2024-06-03", "2024-06-04"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Format(daterange.DayLayout) != want[i] {
			t.Errorf("day %d = %s, want %s", i, d.Format(daterange.DayLayout), want[i])
		}
	}
}
