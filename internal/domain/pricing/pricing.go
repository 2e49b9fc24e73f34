package pricing

import (
	"errors"

	"glampstay/internal/domain/shared/money"
)

var (
	ErrInvalidNights   = errors.New("pricing: nights must be at least 1")
	ErrCurrencyUnset   = errors.New("pricing: currency must be defined")
	ErrNegativeRate    = errors.New("pricing: rates and fees cannot be negative")
	ErrInvalidPercent  = errors.New("pricing: percentage must be between 0 and 100")
	ErrInvalidModifier = errors.New("pricing: policy modifier must be greater than -100%")
)

// RateCard is the pricing part of a property. Percentages are basis points (12% = 1200).
type RateCard struct {
	NightlyRate   money.Money
	CleaningFee   money.Money
	ServiceFeeBps int64
	TaxRateBps    int64
}

func (r RateCard) Validate() error {
	if r.NightlyRate.Currency == "" {
		return ErrCurrencyUnset
	}
	if r.CleaningFee.Currency == "" {
		r.CleaningFee = money.Zero(r.NightlyRate.Currency)
	}
	if r.CleaningFee.Currency != r.NightlyRate.Currency {
		return money.ErrCurrencyMismatch
	}
	if r.NightlyRate.Amount < 0 || r.CleaningFee.Amount < 0 {
		return ErrNegativeRate
	}
	if r.ServiceFeeBps < 0 || r.ServiceFeeBps > money.BasisPoints {
		return ErrInvalidPercent
	}
	if r.TaxRateBps < 0 || r.TaxRateBps > money.BasisPoints {
		return ErrInvalidPercent
	}
	return nil
}

// PriceBreakdown is the frozen pricing snapshot stored with a booking.
type PriceBreakdown struct {
	NightlyRate         money.Money
	AdjustedNightlyRate money.Money
	ModifierBps         int64
	Nights              int
	Subtotal            money.Money
	CleaningFee         money.Money
	ServiceFee          money.Money
	TaxableBase         money.Money
	Taxes               money.Money
	Total               money.Money
}

// Quote computes the breakdown in integer minor units. Every step rounds half away from
// zero before the next one reads it, so the same inputs always produce the same total.
func Quote(card RateCard, nights int, modifierBps int64) (PriceBreakdown, error) {
	if nights < 1 {
		return PriceBreakdown{}, ErrInvalidNights
	}
	if card.CleaningFee.Currency == "" {
		card.CleaningFee = money.Zero(card.NightlyRate.Currency)
	}
	if err := card.Validate(); err != nil {
		return PriceBreakdown{}, err
	}
	if modifierBps <= -money.BasisPoints {
		return PriceBreakdown{}, ErrInvalidModifier
	}
	currency := card.NightlyRate.Currency
	factor := money.BasisPoints + modifierBps

	adjusted := money.Money{Amount: money.RoundDiv(card.NightlyRate.Amount*factor, money.BasisPoints), Currency: currency}
	subtotal := money.Money{Amount: money.RoundDiv(card.NightlyRate.Amount*factor*int64(nights), money.BasisPoints), Currency: currency}
	serviceFee := subtotal.ApplyBasisPoints(card.ServiceFeeBps)
	taxable := money.Money{Amount: subtotal.Amount + card.CleaningFee.Amount + serviceFee.Amount, Currency: currency}
	taxes := taxable.ApplyBasisPoints(card.TaxRateBps)
	total := money.Money{Amount: taxable.Amount + taxes.Amount, Currency: currency}

	return PriceBreakdown{
		NightlyRate:         card.NightlyRate,
		AdjustedNightlyRate: adjusted,
		ModifierBps:         modifierBps,
		Nights:              nights,
		Subtotal:            subtotal,
		CleaningFee:         card.CleaningFee,
		ServiceFee:          serviceFee,
		TaxableBase:         taxable,
		Taxes:               taxes,
		Total:               total,
	}, nil
}
