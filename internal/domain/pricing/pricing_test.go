package pricing

import (
	"errors"
	"testing"

	"glampstay/internal/domain/shared/money"
)

func referenceCard() RateCard {
	return RateCard{
		NightlyRate:   money.Must(19900, "USD"),
		CleaningFee:   money.Must(5000, "USD"),
		ServiceFeeBps: 1200,
		TaxRateBps:    800,
	}
}

func TestQuoteReferenceValues(t *testing.T) {
	got, err := Quote(referenceCard(), 3, 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	checks := []struct {
		name string
		have money.Money
		want int64
	}{
		{"subtotal", got.Subtotal, 59700},
		{"service fee", got.ServiceFee, 7164},
		{"taxable base", got.TaxableBase, 71864},
		{"taxes", got.Taxes, 5749},
		{"total", got.Total, 77613},
	}
	for _, c := range checks {
		if c.have.Amount != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.have.Amount, c.want)
		}
	}
}

func TestQuoteIsDeterministic(t *testing.T) {
	first, err := Quote(referenceCard(), 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		again, err := Quote(referenceCard(), 3, 0)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestQuoteAppliesPolicyModifier(t *testing.T) {
	cases := []struct {
		name        string
		modifier    int64
		subtotal    int64
		adjustedRat int64
	}{
		{"flexible +10%", 1000, 65670, 21890},
		{"non-refundable -15%", -1500, 50745, 16915},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Quote(referenceCard(), 3, tc.modifier)
			if err != nil {
				t.Fatal(err)
			}
			if got.Subtotal.Amount != tc.subtotal {
				t.Errorf("subtotal = %d, want %d", got.Subtotal.Amount, tc.subtotal)
			}
			if got.AdjustedNightlyRate.Amount != tc.adjustedRat {
				t.Errorf("adjusted nightly = %d, want %d", got.AdjustedNightlyRate.Amount, tc.adjustedRat)
			}
			sum := got.Subtotal.Amount + got.CleaningFee.Amount + got.ServiceFee.Amount + got.Taxes.Amount
			if got.Total.Amount != sum {
				t.Errorf("total %d does not add up to %d", got.Total.Amount, sum)
			}
		})
	}
}

func TestQuoteRejectsZeroNights(t *testing.T) {
	if _, err := Quote(referenceCard(), 0, 0); !errors.Is(err, ErrInvalidNights) {
		t.Fatalf("expected ErrInvalidNights, got %v", err)
	}
}

func TestQuoteRejectsBadRateCard(t *testing.T) {
	card := referenceCard()
	card.TaxRateBps = 20000
	if _, err := Quote(card, 2, 0); !errors.Is(err, ErrInvalidPercent) {
		t.Fatalf("expected ErrInvalidPercent, got %v", err)
	}
	card = referenceCard()
	card.CleaningFee = money.Must(100, "EUR")
	if _, err := Quote(card, 2, 0); !errors.Is(err, money.ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}
	if _, err := Quote(referenceCard(), 2, -10000); !errors.Is(err, ErrInvalidModifier) {
		t.Fatalf("expected ErrInvalidModifier, got %v", err)
	}
}
