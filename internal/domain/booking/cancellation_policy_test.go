package booking

import (
	"errors"
	"testing"
	"time"

	"glampstay/internal/domain/shared/money"
)

func TestScheduledRefundTiers(t *testing.T) {
	checkIn := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	total := money.Must(77613, "USD")
	cases := []struct {
		name       string
		policy     Policy
		daysBefore int
		want       int64
	}{
		{"standard 10 days", PolicyStandard, 10, 77613},
		{"standard exactly 7 days", PolicyStandard, 7, 77613},
		{"standard 5 days", PolicyStandard, 5, 38807},
		{"standard 3 days", PolicyStandard, 3, 38807},
		{"standard 1 day", PolicyStandard, 1, 0},
		{"flexible 1 day", PolicyFlexible, 1, 77613},
		{"flexible same day", PolicyFlexible, 0, 38807},
		{"non-refundable 30 days", PolicyNonRefundable, 30, 0},
		{"non-refundable 1 day", PolicyNonRefundable, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := checkIn.AddDate(0, 0, -tc.daysBefore)
			got, err := RefundFor(tc.policy, total, checkIn, now, RefundDecision{})
			if err != nil {
				t.Fatal(err)
			}
			if got.Amount != tc.want {
				t.Fatalf("refund = %d, want %d", got.Amount, tc.want)
			}
		})
	}
}

func TestDaysBeforeCheckInFloors(t *testing.T) {
	checkIn := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	if got := DaysBeforeCheckIn(checkIn, checkIn.Add(-(6*24*time.Hour + 23*time.Hour))); got != 6 {
		t.Fatalf("6d23h before = %d days, want 6", got)
	}
	if got := DaysBeforeCheckIn(checkIn, checkIn.Add(2*time.Hour)); got != -1 {
		t.Fatalf("after check-in = %d days, want -1", got)
	}
}

func TestAdminOverride(t *testing.T) {
	checkIn := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	now := checkIn.AddDate(0, 0, -1)
	total := money.Must(10000, "USD")

	amount := int64(2500)
	got, err := RefundFor(PolicyNonRefundable, total, checkIn, now, RefundDecision{Admin: true, Override: &amount})
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 2500 {
		t.Fatalf("override refund = %d, want 2500", got.Amount)
	}

	zero := int64(0)
	got, err = RefundFor(PolicyStandard, total, checkIn, checkIn.AddDate(0, 0, -30), RefundDecision{Admin: true, Override: &zero})
	if err != nil || got.Amount != 0 {
		t.Fatalf("zero override = %d, %v", got.Amount, err)
	}

	tooMuch := int64(10001)
	if _, err := RefundFor(PolicyStandard, total, checkIn, now, RefundDecision{Admin: true, Override: &tooMuch}); !errors.Is(err, ErrInvalidRefund) {
		t.Fatalf("expected ErrInvalidRefund, got %v", err)
	}

	got, err = RefundFor(PolicyNonRefundable, total, checkIn, now, RefundDecision{Admin: false, Override: &amount})
	if err != nil || got.Amount != 0 {
		t.Fatalf("guest-supplied amount must be ignored, got %d, %v", got.Amount, err)
	}
}

func TestParsePolicy(t *testing.T) {
	for raw, want := range map[string]Policy{
		"":               PolicyStandard,
		"Flexible":       PolicyFlexible,
		"non-refundable": PolicyNonRefundable,
		"non_refundable": PolicyNonRefundable,
	} {
		got, err := ParsePolicy(raw)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParsePolicy("super-flex"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}
