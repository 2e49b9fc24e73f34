package booking

import (
	"errors"
	"testing"
	"time"

	"glampstay/internal/domain/pricing"
	"glampstay/internal/domain/shared/daterange"
	"glampstay/internal/domain/shared/money"
)

func newTestBooking(t *testing.T, policy Policy) *Booking {
	t.Helper()
	dr, err := daterange.Parse("2024-07-20", "2024-07-23")
	if err != nil {
		t.Fatal(err)
	}
	price, err := pricing.Quote(pricing.RateCard{
		NightlyRate:   money.Must(19900, "USD"),
		CleaningFee:   money.Must(5000, "USD"),
		ServiceFeeBps: 1200,
		TaxRateBps:    800,
	}, dr.Nights(), policy.ModifierBps())
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		PropertyID: "aurora-dome",
		UserID:     "user-1",
		Range:      dr,
		Guests:     GuestCount{Adults: 2, Children: 1},
		Contact:    Contact{Name: "Sam Rivera", Email: "Sam@Example.com"},
		Policy:     policy,
		Price:      price,
		CreatedAt:  time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNewBookingStartsPending(t *testing.T) {
	b := newTestBooking(t, PolicyStandard)
	if b.Status != StatusPending || b.PaymentStatus != PaymentPending {
		t.Fatalf("status = %s/%s", b.Status, b.PaymentStatus)
	}
	if b.Contact.Email != "sam@example.com" {
		t.Fatalf("email not normalized: %q", b.Contact.Email)
	}
	evs := b.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "booking.requested" {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestNewBookingRejectsBadParty(t *testing.T) {
	dr, _ := daterange.Parse("2024-07-20", "2024-07-21")
	_, err := NewBooking(CreateParams{
		ID: "bk", UserID: "u", Range: dr,
		Guests:  GuestCount{Adults: 0, Children: 2},
		Contact: Contact{Name: "A", Email: "a@example.com"},
		Policy:  PolicyStandard,
		Price:   pricing.PriceBreakdown{Nights: 1},
	})
	if !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
}

func TestGuestCountCheckFits(t *testing.T) {
	if err := (GuestCount{Adults: 2, Children: 1, Infants: 1}).CheckFits(4, false); err != nil {
		t.Fatalf("a party of exactly four should fit: %v", err)
	}
	if err := (GuestCount{Adults: 2, Children: 2, Infants: 1}).CheckFits(4, false); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("infants count toward capacity, got %v", err)
	}
	if err := (GuestCount{Adults: 4, Pets: 2}).CheckFits(4, true); err != nil {
		t.Fatalf("pets do not use capacity: %v", err)
	}
	if err := (GuestCount{Adults: 3, Children: 2}).CheckFits(4, false); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if err := (GuestCount{Adults: 1, Pets: 1}).CheckFits(4, false); !errors.Is(err, ErrPetsNotAllowed) {
		t.Fatalf("expected ErrPetsNotAllowed, got %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	b := newTestBooking(t, PolicyStandard)
	now := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	if err := b.Complete(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pending booking cannot complete, got %v", err)
	}
	if err := b.Confirm("pi_123", now); err != nil {
		t.Fatal(err)
	}
	if b.PaymentStatus != PaymentProcessed || b.PaymentReference != "pi_123" {
		t.Fatalf("payment = %s %q", b.PaymentStatus, b.PaymentReference)
	}
	if err := b.Confirm("", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double confirm should fail, got %v", err)
	}
	if err := b.Complete(now.AddDate(0, 0, 22)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Cancel(CancelParams{RequestedBy: "user-1", Now: now}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("completed booking cannot be canceled, got %v", err)
	}
}

func TestCancelUsesStoredTotal(t *testing.T) {
	b := newTestBooking(t, PolicyStandard)
	if err := b.Confirm("pi_1", time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	b.ClearEvents()
	refund, err := b.Cancel(CancelParams{
		RequestedBy: "user-1",
		Reason:      "change of plans",
		Now:         time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if refund.Amount != halfOf(b.Price.Total.Amount) {
		t.Fatalf("refund = %d, want half of %d", refund.Amount, b.Price.Total.Amount)
	}
	if b.Status != StatusCanceled || b.RefundAmount != refund || !b.RefundRequired() {
		t.Fatalf("unexpected state after cancel: %+v", b)
	}
	evs := b.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "booking.canceled" {
		t.Fatalf("unexpected events: %+v", evs)
	}
	if err := b.RecordPayment(PaymentRefunded, "re_1", time.Now()); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateDetailsKeepsPrice(t *testing.T) {
	b := newTestBooking(t, PolicyFlexible)
	before := b.Price
	note := "  late arrival  "
	err := b.UpdateDetails(DetailsUpdate{
		Contact:         &Contact{Phone: "+1 555 0100"},
		SpecialRequests: &note,
		Now:             time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Price != before {
		t.Fatal("price snapshot must not change")
	}
	if b.SpecialRequests != "late arrival" || b.Contact.Phone != "+1 555 0100" || b.Contact.Name != "Sam Rivera" {
		t.Fatalf("unexpected details: %+v %q", b.Contact, b.SpecialRequests)
	}
	if err := b.UpdateDetails(DetailsUpdate{Now: time.Now()}); !errors.Is(err, ErrNothingToUpdate) {
		t.Fatalf("expected ErrNothingToUpdate, got %v", err)
	}
}

func TestMarkReminded(t *testing.T) {
	b := newTestBooking(t, PolicyStandard)
	now := time.Date(2024, 7, 19, 0, 0, 0, 0, time.UTC)
	if err := b.MarkReminded(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pending booking should not be reminded, got %v", err)
	}
	_ = b.Confirm("", now)
	if err := b.MarkReminded(now); err != nil {
		t.Fatal(err)
	}
	if err := b.MarkReminded(now); !errors.Is(err, ErrAlreadyReminded) {
		t.Fatalf("expected ErrAlreadyReminded, got %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	now := time.Date(2024, 7, 10, 18, 0, 0, 0, time.UTC)
	today, _ := daterange.Parse("2024-07-10", "2024-07-11")
	if err := ValidateDateRange(today, now); err != nil {
		t.Fatalf("same-day check-in should be allowed: %v", err)
	}
	past, _ := daterange.Parse("2024-07-09", "2024-07-11")
	if err := ValidateDateRange(past, now); !errors.Is(err, ErrCheckInInPast) {
		t.Fatalf("expected ErrCheckInInPast, got %v", err)
	}
}

func halfOf(v int64) int64 {
	return money.RoundDiv(v, 2)
}
