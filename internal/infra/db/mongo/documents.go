package mongo

import (
	"time"

	"glampstay/internal/domain/pricing"
	"glampstay/internal/domain/shared/money"
)

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type rateCardDocument struct {
	NightlyRate   moneyDocument `bson:"nightly_rate"`
	CleaningFee   moneyDocument `bson:"cleaning_fee"`
	ServiceFeeBps int64         `bson:"service_fee_bps"`
	TaxRateBps    int64         `bson:"tax_rate_bps"`
}

func newRateCardDocument(r pricing.RateCard) rateCardDocument {
	return rateCardDocument{
		NightlyRate:   newMoneyDocument(r.NightlyRate),
		CleaningFee:   newMoneyDocument(r.CleaningFee),
		ServiceFeeBps: r.ServiceFeeBps,
		TaxRateBps:    r.TaxRateBps,
	}
}

func (d rateCardDocument) toRateCard() pricing.RateCard {
	return pricing.RateCard{
		NightlyRate:   d.NightlyRate.toMoney(),
		CleaningFee:   d.CleaningFee.toMoney(),
		ServiceFeeBps: d.ServiceFeeBps,
		TaxRateBps:    d.TaxRateBps,
	}
}

type priceDocument struct {
	NightlyRate         moneyDocument `bson:"nightly_rate"`
	AdjustedNightlyRate moneyDocument `bson:"adjusted_nightly_rate"`
	ModifierBps         int64         `bson:"modifier_bps"`
	Nights              int           `bson:"nights"`
	Subtotal            moneyDocument `bson:"subtotal"`
	CleaningFee         moneyDocument `bson:"cleaning_fee"`
	ServiceFee          moneyDocument `bson:"service_fee"`
	TaxableBase         moneyDocument `bson:"taxable_base"`
	Taxes               moneyDocument `bson:"taxes"`
	Total               moneyDocument `bson:"total"`
}

func newPriceDocument(p pricing.PriceBreakdown) priceDocument {
	return priceDocument{
		NightlyRate:         newMoneyDocument(p.NightlyRate),
		AdjustedNightlyRate: newMoneyDocument(p.AdjustedNightlyRate),
		ModifierBps:         p.ModifierBps,
		Nights:              p.Nights,
		Subtotal:            newMoneyDocument(p.Subtotal),
		CleaningFee:         newMoneyDocument(p.CleaningFee),
		ServiceFee:          newMoneyDocument(p.ServiceFee),
		TaxableBase:         newMoneyDocument(p.TaxableBase),
		Taxes:               newMoneyDocument(p.Taxes),
		Total:               newMoneyDocument(p.Total),
	}
}

func (d priceDocument) toBreakdown() pricing.PriceBreakdown {
	return pricing.PriceBreakdown{
		NightlyRate:         d.NightlyRate.toMoney(),
		AdjustedNightlyRate: d.AdjustedNightlyRate.toMoney(),
		ModifierBps:         d.ModifierBps,
		Nights:              d.Nights,
		Subtotal:            d.Subtotal.toMoney(),
		CleaningFee:         d.CleaningFee.toMoney(),
		ServiceFee:          d.ServiceFee.toMoney(),
		TaxableBase:         d.TaxableBase.toMoney(),
		Taxes:               d.Taxes.toMoney(),
		Total:               d.Total.toMoney(),
	}
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

// Timestamps are stored as unix millis; zero means unset.
func timeToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
