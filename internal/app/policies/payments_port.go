package policies

import (
	"context"

	"glampstay/internal/domain/shared/money"
)

// PaymentsPort returns captured money to the guest. It yields the provider's refund id.
type PaymentsPort interface {
	Refund(ctx context.Context, bookingID, paymentReference string, amount money.Money) (string, error)
}
