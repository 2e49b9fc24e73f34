package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"

	"glampstay/internal/app/policies"
	"glampstay/internal/domain/shared/money"
)

var ErrMissingReference = errors.New("stripe: payment reference is required for a refund")

// Refunder returns captured payments through the Stripe Refunds API.
type Refunder struct {
	client refund.Client
}

func NewRefunder(secretKey string) (*Refunder, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	return &Refunder{client: refund.Client{B: stripego.GetBackend(stripego.APIBackend), Key: secretKey}}, nil
}

// Refund accepts either a charge id (ch_...) or a payment intent id as reference.
// The booking id and amount key the request, so a retried cancellation never refunds
// twice and a retry at a different amount is not answered with the earlier refund.
func (r *Refunder) Refund(ctx context.Context, bookingID, paymentReference string, amount money.Money) (string, error) {
	paymentReference = strings.TrimSpace(paymentReference)
	if paymentReference == "" {
		return "", ErrMissingReference
	}
	params := &stripego.RefundParams{
		Amount:   stripego.Int64(amount.Amount),
		Currency: stripego.String(strings.ToLower(amount.Currency)),
		Reason:   stripego.String(string(stripego.RefundReasonRequestedByCustomer)),
	}
	if strings.HasPrefix(paymentReference, "ch_") {
		params.Charge = stripego.String(paymentReference)
	} else {
		params.PaymentIntent = stripego.String(paymentReference)
	}
	params.Context = ctx
	params.SetIdempotencyKey(refundKey(bookingID, amount))
	params.AddMetadata("booking_id", bookingID)

	re, err := r.client.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create refund: %w", err)
	}
	return re.ID, nil
}

func refundKey(bookingID string, amount money.Money) string {
	return fmt.Sprintf("refund-%s-%d-%s", bookingID, amount.Amount, strings.ToLower(amount.Currency))
}

// Unconfigured fails every refund. Bookings needing a refund cannot be canceled without a provider.
type Unconfigured struct{}

func (Unconfigured) Refund(context.Context, string, string, money.Money) (string, error) {
	return "", errors.New("stripe: payments provider is not configured")
}

var (
	_ policies.PaymentsPort = (*Refunder)(nil)
	_ policies.PaymentsPort = Unconfigured{}
)
