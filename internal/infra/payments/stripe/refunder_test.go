package stripe

import (
	"context"
	"errors"
	"testing"

	"glampstay/internal/domain/shared/money"
)

func TestRefundKeyChangesWithAmount(t *testing.T) {
	full := refundKey("bk-1", money.Must(77613, "USD"))
	if again := refundKey("bk-1", money.Must(77613, "USD")); again != full {
		t.Fatalf("same refund gave keys %q and %q", full, again)
	}
	if partial := refundKey("bk-1", money.Must(1000, "USD")); partial == full {
		t.Fatalf("different amounts share key %q", full)
	}
	if other := refundKey("bk-2", money.Must(77613, "USD")); other == full {
		t.Fatalf("different bookings share key %q", full)
	}
}

func TestRefundRequiresReference(t *testing.T) {
	r, err := NewRefunder("sk_test_123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Refund(context.Background(), "bk-1", "  ", money.Must(100, "USD")); !errors.Is(err, ErrMissingReference) {
		t.Fatalf("err = %v, want ErrMissingReference", err)
	}
	if _, err := NewRefunder(""); err == nil {
		t.Fatal("empty secret key accepted")
	}
}
