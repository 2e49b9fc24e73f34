package properties

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/policies"
	"glampstay/internal/app/uow"
	domainbooking "glampstay/internal/domain/booking"
	domainproperty "glampstay/internal/domain/property"
)

const (
	listPropertiesKey = "properties.list"
	getPropertyKey    = "properties.get"
	listPoliciesKey   = "properties.policies"

	propertyCacheTTL = 5 * time.Minute
)

func propertyCacheKey(id domainproperty.ID) string {
	return "property:" + string(id)
}

type ListPropertiesQuery struct{}

func (ListPropertiesQuery) Key() string { return listPropertiesKey }

func (ListPropertiesQuery) AllowAnonymous() bool { return true }

type GetPropertyQuery struct {
	PropertyID string
}

func (GetPropertyQuery) Key() string { return getPropertyKey }

func (GetPropertyQuery) AllowAnonymous() bool { return true }

type ListPoliciesQuery struct{}

func (ListPoliciesQuery) Key() string { return listPoliciesKey }

func (ListPoliciesQuery) AllowAnonymous() bool { return true }

// CatalogHandler serves the public property pages. Single properties are read through the cache.
type CatalogHandler struct {
	UoWFactory uow.UoWFactory
	Cache      policies.Cache
	Logger     *slog.Logger
}

func (h *CatalogHandler) List(ctx context.Context, _ ListPropertiesQuery) (dto.PropertyCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Properties().List(execCtx, domainproperty.ListFilter{ActiveOnly: true})
	if err != nil {
		return dto.PropertyCollection{}, support.StoreErr(err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return dto.MapProperties(items), nil
}

func (h *CatalogHandler) Get(ctx context.Context, q GetPropertyQuery) (dto.PropertyDTO, error) {
	id := domainproperty.ID(strings.TrimSpace(q.PropertyID))
	if id == "" {
		return dto.PropertyDTO{}, domainproperty.ErrIDRequired
	}
	if h.Cache != nil {
		var cached dto.PropertyDTO
		err := h.Cache.Get(ctx, propertyCacheKey(id), &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, policies.ErrCacheMiss) && h.Logger != nil {
			h.Logger.Warn("property cache read failed", "property_id", id, "error", err)
		}
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	property, err := unit.Properties().ByID(execCtx, id)
	if err != nil {
		return dto.PropertyDTO{}, support.StoreErr(err)
	}
	if !property.Active {
		return dto.PropertyDTO{}, domainproperty.ErrNotFound
	}
	out := dto.MapProperty(property)
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, propertyCacheKey(id), out, propertyCacheTTL); err != nil && h.Logger != nil {
			h.Logger.Warn("property cache write failed", "property_id", id, "error", err)
		}
	}
	return out, nil
}

func (h *CatalogHandler) Policies(context.Context, ListPoliciesQuery) ([]dto.PolicyDTO, error) {
	terms := domainbooking.Policies()
	out := make([]dto.PolicyDTO, 0, len(terms))
	for _, t := range terms {
		out = append(out, dto.MapPolicy(t))
	}
	return out, nil
}

