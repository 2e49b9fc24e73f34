package dto

import (
	domainbooking "glampstay/internal/domain/booking"
	domainpricing "glampstay/internal/domain/pricing"
)

type PriceBreakdownDTO struct {
	NightlyRate         MoneyDTO `json:"nightlyRate"`
	AdjustedNightlyRate MoneyDTO `json:"adjustedNightlyRate"`
	ModifierBps         int64    `json:"modifierBps"`
	Nights              int      `json:"nights"`
	Subtotal            MoneyDTO `json:"subtotal"`
	CleaningFee         MoneyDTO `json:"cleaningFee"`
	ServiceFee          MoneyDTO `json:"serviceFee"`
	TaxableBase         MoneyDTO `json:"taxableBase"`
	Taxes               MoneyDTO `json:"taxes"`
	Total               MoneyDTO `json:"total"`
}

func MapPriceBreakdown(p domainpricing.PriceBreakdown) PriceBreakdownDTO {
	return PriceBreakdownDTO{
		NightlyRate:         MapMoney(p.NightlyRate),
		AdjustedNightlyRate: MapMoney(p.AdjustedNightlyRate),
		ModifierBps:         p.ModifierBps,
		Nights:              p.Nights,
		Subtotal:            MapMoney(p.Subtotal),
		CleaningFee:         MapMoney(p.CleaningFee),
		ServiceFee:          MapMoney(p.ServiceFee),
		TaxableBase:         MapMoney(p.TaxableBase),
		Taxes:               MapMoney(p.Taxes),
		Total:               MapMoney(p.Total),
	}
}

// QuoteDTO answers the pre-booking quote step.
type QuoteDTO struct {
	PropertyID string            `json:"propertyId"`
	CheckIn    string            `json:"checkIn"`
	CheckOut   string            `json:"checkOut"`
	Policy     string            `json:"policy"`
	Available  bool              `json:"available"`
	Price      PriceBreakdownDTO `json:"price"`
}

type PolicyDTO struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	ModifierBps          int64  `json:"modifierBps"`
	FullRefundDays       *int   `json:"fullRefundDays"`
	PartialRefundDays    *int   `json:"partialRefundDays"`
	PartialRefundPercent int    `json:"partialRefundPercent"`
	ChangeFeeCents       int64  `json:"changeFeeCents"`
}

// MapPolicy renders disabled refund tiers as null.
func MapPolicy(t domainbooking.PolicyTerms) PolicyDTO {
	out := PolicyDTO{
		ID:                   string(t.Policy),
		Label:                t.Label,
		ModifierBps:          t.ModifierBps,
		PartialRefundPercent: t.PartialRefundPercent,
		ChangeFeeCents:       t.ChangeFeeCents,
	}
	if t.FullRefundDays >= 0 {
		v := t.FullRefundDays
		out.FullRefundDays = &v
	}
	if t.PartialRefundDays >= 0 {
		v := t.PartialRefundDays
		out.PartialRefundDays = &v
	}
	return out
}
