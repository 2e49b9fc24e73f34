package money

import (
	"errors"
	"testing"
)

func TestRoundDiv(t *testing.T) {
	cases := []struct {
		num, den, want int64
	}{
		{574912, 10000, 57},
		{5749, 100, 57},
		{5750, 100, 58},
		{-5750, 100, -58},
		{-5749, 100, -57},
		{0, 7, 0},
	}
	for _, tc := range cases {
		if got := RoundDiv(tc.num, tc.den); got != tc.want {
			t.Errorf("RoundDiv(%d, %d) = %d, want %d", tc.num, tc.den, got, tc.want)
		}
	}
}

func TestApplyBasisPoints(t *testing.T) {
	got := Must(59700, "usd").ApplyBasisPoints(1200)
	if got.Amount != 7164 || got.Currency != "USD" {
		t.Fatalf("unexpected service fee %+v", got)
	}
	taxes := Must(71864, "USD").ApplyBasisPoints(800)
	if taxes.Amount != 5749 {
		t.Fatalf("unexpected taxes %d", taxes.Amount)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	_, err := Must(100, "USD").Add(Must(100, "EUR"))
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}
}

func TestString(t *testing.T) {
	if s := Must(77613, "USD").String(); s != "776.13 USD" {
		t.Fatalf("unexpected %q", s)
	}
	if s := Must(-5, "USD").String(); s != "-0.05 USD" {
		t.Fatalf("unexpected %q", s)
	}
}
