package property

import (
	"time"

	"glampstay/internal/domain/pricing"
)

type PropertyCreated struct {
	PropertyID ID
	Name       string
	At         time.Time
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type RatesChanged struct {
	PropertyID ID
	Previous   pricing.RateCard
	Current    pricing.RateCard
	At         time.Time
}

func (e RatesChanged) EventName() string     { return "property.rates_changed" }
func (e RatesChanged) AggregateID() string   { return string(e.PropertyID) }
func (e RatesChanged) OccurredAt() time.Time { return e.At }
