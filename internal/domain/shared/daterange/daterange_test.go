package daterange

import (
	"errors"
	"testing"
	"time"
)

func mustDay(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := ParseDay(v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return d
}

func TestNightCount(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
	}{
		{"2024-06-01", "2024-06-02", 1},
		{"2024-06-01", "2024-06-04", 3},
		{"2024-02-28", "2024-03-01", 2},
		{"2024-12-30", "2025-01-02", 3},
	}
	for _, tc := range cases {
		got, err := NightCount(mustDay(t, tc.in), mustDay(t, tc.out))
		if err != nil {
			t.Fatalf("%s..%s: %v", tc.in, tc.out, err)
		}
		if got != tc.want {
			t.Errorf("%s..%s = %d, want %d", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestNightCountRoundsPartialDaysUp(t *testing.T) {
	in := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)
	got, err := NightCount(in, out)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("got %d nights, want 2", got)
	}
	short, err := NightCount(in, in.Add(time.Hour))
	if err != nil || short != 1 {
		t.Fatalf("short stay = %d, %v; want 1", short, err)
	}
}

func TestNightCountRejectsEqualAndReversedDates(t *testing.T) {
	d := mustDay(t, "2024-06-01")
	if _, err := NightCount(d, d); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("equal dates: expected ErrInvalidRange, got %v", err)
	}
	if _, err := NightCount(d, d.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("reversed dates: expected ErrInvalidRange, got %v", err)
	}
	if _, err := Parse("2024-06-01", "2024-06-01"); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Parse equal dates: expected ErrInvalidRange, got %v", err)
	}
}

func TestExpandToDaysExcludesCheckout(t *testing.T) {
	days := ExpandToDays(mustDay(t, "2024-06-01"), mustDay(t, "2024-06-04"))
	want := []string{"2024-06-01", "2024-06-02", "2024-06-03"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Format(DayLayout) != want[i] {
			t.Errorf("day %d = %s, want %s", i, d.Format(DayLayout), want[i])
		}
	}
	if got := ExpandToDays(mustDay(t, "2024-06-04"), mustDay(t, "2024-06-01")); len(got) != 0 {
		t.Fatalf("reversed range should expand to nothing, got %v", got)
	}
}

func TestOverlapsBoundary(t *testing.T) {
	existing, _ := Parse("2024-06-01", "2024-06-05")
	backToBack, _ := Parse("2024-06-05", "2024-06-08")
	if Overlaps(existing, backToBack) || Overlaps(backToBack, existing) {
		t.Fatal("checkout day must stay free for a new check-in")
	}
	inside, _ := Parse("2024-06-04", "2024-06-06")
	if !Overlaps(existing, inside) {
		t.Fatal("expected overlap")
	}
	covering, _ := Parse("2024-05-30", "2024-06-10")
	if !existing.Overlaps(covering) {
		t.Fatal("expected overlap for covering range")
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, err := ParseDay("06/01/2024"); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}
