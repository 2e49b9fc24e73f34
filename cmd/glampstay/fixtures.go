package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	domainpricing "glampstay/internal/domain/pricing"
	domainproperty "glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/money"
)

// loadPropertyFixtures seeds the catalogue. Properties that already exist are left alone,
// so restarting against a persistent store never overwrites admin edits.
func loadPropertyFixtures(ctx context.Context, repo domainproperty.Repository, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("property fixtures file empty", "path", path)
		return nil
	}

	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	for _, fx := range fixtures {
		id := domainproperty.ID(fx.ID)
		if _, err := repo.ByID(ctx, id); err == nil {
			logger.Debug("property fixture already present", "property_id", fx.ID)
			continue
		} else if !errors.Is(err, domainproperty.ErrNotFound) {
			return fmt.Errorf("lookup %s: %w", fx.ID, err)
		}

		currency := strings.ToUpper(strings.TrimSpace(fx.Currency))
		if currency == "" {
			currency = "USD"
		}
		nightly, err := money.New(fx.NightlyRateCents, currency)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		cleaning, err := money.New(fx.CleaningFeeCents, currency)
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		property, err := domainproperty.New(domainproperty.CreateParams{
			ID:          id,
			Slug:        fx.Slug,
			Name:        fx.Name,
			Kind:        fx.Kind,
			Description: fx.Description,
			Capacity:    fx.Capacity,
			PetsAllowed: fx.PetsAllowed,
			Amenities:   append([]string(nil), fx.Amenities...),
			Rates: domainpricing.RateCard{
				NightlyRate:   nightly,
				CleaningFee:   cleaning,
				ServiceFeeBps: fx.ServiceFeeBps,
				TaxRateBps:    fx.TaxRateBps,
			},
			Photos: append([]string(nil), fx.Photos...),
			Active: fx.Active == nil || *fx.Active,
			Now:    now,
		})
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, property); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		logger.Info("property fixture imported", "property_id", property.ID)
	}
	return nil
}

type propertyFixture struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	Description      string   `json:"description"`
	Capacity         int      `json:"capacity"`
	PetsAllowed      bool     `json:"pets_allowed"`
	Amenities        []string `json:"amenities"`
	Currency         string   `json:"currency"`
	NightlyRateCents int64    `json:"nightly_rate_cents"`
	CleaningFeeCents int64    `json:"cleaning_fee_cents"`
	ServiceFeeBps    int64    `json:"service_fee_bps"`
	TaxRateBps       int64    `json:"tax_rate_bps"`
	Photos           []string `json:"photos"`
	Active           *bool    `json:"active"`
}
