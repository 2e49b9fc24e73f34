package dto

import (
	"time"

	domainproperty "glampstay/internal/domain/property"
)

type RateCardDTO struct {
	NightlyRate   MoneyDTO `json:"nightlyRate"`
	CleaningFee   MoneyDTO `json:"cleaningFee"`
	ServiceFeeBps int64    `json:"serviceFeeBps"`
	TaxRateBps    int64    `json:"taxRateBps"`
}

type PropertyDTO struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Description string      `json:"description,omitempty"`
	Capacity    int         `json:"capacity"`
	PetsAllowed bool        `json:"petsAllowed"`
	Amenities   []string    `json:"amenities"`
	Rates       RateCardDTO `json:"rates"`
	Photos      []string    `json:"photos"`
	Active      bool        `json:"active"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type PropertyCollection struct {
	Items []PropertyDTO `json:"items"`
}

// AvailabilityDTO lists the nights already taken inside the requested window.
type AvailabilityDTO struct {
	PropertyID string   `json:"propertyId"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	BookedDays []string `json:"bookedDays"`
}

func MapProperty(p *domainproperty.Property) PropertyDTO {
	amenities := append([]string{}, p.Amenities...)
	photos := append([]string{}, p.Photos...)
	return PropertyDTO{
		ID:          string(p.ID),
		Slug:        p.Slug,
		Name:        p.Name,
		Kind:        string(p.Kind),
		Description: p.Description,
		Capacity:    p.Capacity,
		PetsAllowed: p.PetsAllowed,
		Amenities:   amenities,
		Rates: RateCardDTO{
			NightlyRate:   MapMoney(p.Rates.NightlyRate),
			CleaningFee:   MapMoney(p.Rates.CleaningFee),
			ServiceFeeBps: p.Rates.ServiceFeeBps,
			TaxRateBps:    p.Rates.TaxRateBps,
		},
		Photos:    photos,
		Active:    p.Active,
		UpdatedAt: p.UpdatedAt,
	}
}

func MapProperties(items []*domainproperty.Property) PropertyCollection {
	out := PropertyCollection{Items: make([]PropertyDTO, 0, len(items))}
	for _, p := range items {
		out.Items = append(out.Items, MapProperty(p))
	}
	return out
}
