package properties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	domainpricing "glampstay/internal/domain/pricing"
	domainproperty "glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/money"
	domainuser "glampstay/internal/domain/user"
)

const (
	createPropertyKey   = "admin.properties.create"
	updateRatesKey      = "admin.properties.rates"
	uploadPhotoKey      = "admin.properties.photos"
	setPropertyStateKey = "admin.properties.state"
)

// RateCardInput takes amounts in minor units.
type RateCardInput struct {
	Currency      string `json:"currency" validate:"required,len=3"`
	NightlyRate   int64  `json:"nightlyRate" validate:"gte=0"`
	CleaningFee   int64  `json:"cleaningFee" validate:"gte=0"`
	ServiceFeeBps int64  `json:"serviceFeeBps" validate:"gte=0,lte=10000"`
	TaxRateBps    int64  `json:"taxRateBps" validate:"gte=0,lte=10000"`
}

func (r RateCardInput) toDomain() domainpricing.RateCard {
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	return domainpricing.RateCard{
		NightlyRate:   money.Money{Amount: r.NightlyRate, Currency: currency},
		CleaningFee:   money.Money{Amount: r.CleaningFee, Currency: currency},
		ServiceFeeBps: r.ServiceFeeBps,
		TaxRateBps:    r.TaxRateBps,
	}
}

type CreatePropertyCommand struct {
	ID          string `validate:"omitempty,max=64"`
	Slug        string `validate:"omitempty,max=64"`
	Name        string `validate:"required,max=120"`
	Kind        string `validate:"required"`
	Description string `validate:"max=4000"`
	Capacity    int    `validate:"gte=1"`
	PetsAllowed bool
	Amenities   []string
	Rates       RateCardInput
	Active      bool
}

func (CreatePropertyCommand) Key() string { return createPropertyKey }

func (CreatePropertyCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type UpdateRatesCommand struct {
	PropertyID string `validate:"required"`
	Rates      RateCardInput
}

func (UpdateRatesCommand) Key() string { return updateRatesKey }

func (UpdateRatesCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type UploadPhotoCommand struct {
	PropertyID  string `validate:"required"`
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (UploadPhotoCommand) Key() string { return uploadPhotoKey }

func (UploadPhotoCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type SetPropertyStateCommand struct {
	PropertyID string `validate:"required"`
	Active     bool
}

func (SetPropertyStateCommand) Key() string { return setPropertyStateKey }

func (SetPropertyStateCommand) RequiredRole() domainuser.Role { return domainuser.RoleAdmin }

type AdminHandler struct {
	Photos  policies.PhotoStore
	Cache   policies.Cache
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   support.Clock
}

func (h *AdminHandler) Create(ctx context.Context, cmd CreatePropertyCommand) (dto.PropertyDTO, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = strings.TrimSpace(cmd.Slug)
	}
	if id == "" {
		id = uuid.NewString()
	}
	_, err = unit.Properties().ByID(ctx, domainproperty.ID(id))
	switch {
	case err == nil:
		return dto.PropertyDTO{}, domainproperty.ErrAlreadyExists
	case !errors.Is(err, domainproperty.ErrNotFound):
		return dto.PropertyDTO{}, support.StoreErr(err)
	}
	property, err := domainproperty.New(domainproperty.CreateParams{
		ID:          domainproperty.ID(id),
		Slug:        cmd.Slug,
		Name:        cmd.Name,
		Kind:        cmd.Kind,
		Description: cmd.Description,
		Capacity:    cmd.Capacity,
		PetsAllowed: cmd.PetsAllowed,
		Amenities:   cmd.Amenities,
		Rates:       cmd.Rates.toDomain(),
		Active:      cmd.Active,
		Now:         h.Clock.Now(),
	})
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	if err := h.persist(ctx, property); err != nil {
		return dto.PropertyDTO{}, err
	}
	h.log().Info("property created", "property_id", property.ID, "kind", property.Kind, "capacity", property.Capacity)
	return dto.MapProperty(property), nil
}

// UpdateRates changes future quotes only. Stored bookings keep their price snapshot.
func (h *AdminHandler) UpdateRates(ctx context.Context, cmd UpdateRatesCommand) (dto.PropertyDTO, error) {
	property, err := h.load(ctx, cmd.PropertyID)
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	if err := property.UpdateRates(cmd.Rates.toDomain(), h.Clock.Now()); err != nil {
		return dto.PropertyDTO{}, err
	}
	if err := h.persist(ctx, property); err != nil {
		return dto.PropertyDTO{}, err
	}
	h.log().Info("property rates updated", "property_id", property.ID, "nightly", property.Rates.NightlyRate.Amount)
	return dto.MapProperty(property), nil
}

func (h *AdminHandler) UploadPhoto(ctx context.Context, cmd UploadPhotoCommand) (dto.PropertyDTO, error) {
	if h.Photos == nil {
		return dto.PropertyDTO{}, apperr.New(apperr.KindUnavailable, "photo storage is not configured")
	}
	if cmd.Reader == nil {
		return dto.PropertyDTO{}, apperr.Validation("photo file is required")
	}
	if !strings.HasPrefix(strings.ToLower(cmd.ContentType), "image/") {
		return dto.PropertyDTO{}, apperr.Validation("photo must be an image")
	}
	property, err := h.load(ctx, cmd.PropertyID)
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	objectName := fmt.Sprintf("properties/%s/%s%s", property.ID, uuid.NewString(), strings.ToLower(path.Ext(cmd.FileName)))
	url, err := h.Photos.Upload(ctx, objectName, cmd.Reader, cmd.Size, cmd.ContentType)
	if err != nil {
		return dto.PropertyDTO{}, apperr.Wrap(apperr.KindUnavailable, err, "photo upload failed")
	}
	if err := property.AddPhoto(url, h.Clock.Now()); err != nil {
		return dto.PropertyDTO{}, err
	}
	if err := h.persist(ctx, property); err != nil {
		return dto.PropertyDTO{}, err
	}
	h.log().Info("property photo added", "property_id", property.ID, "object", objectName)
	return dto.MapProperty(property), nil
}

func (h *AdminHandler) SetState(ctx context.Context, cmd SetPropertyStateCommand) (dto.PropertyDTO, error) {
	property, err := h.load(ctx, cmd.PropertyID)
	if err != nil {
		return dto.PropertyDTO{}, err
	}
	property.SetActive(cmd.Active, h.Clock.Now())
	if err := h.persist(ctx, property); err != nil {
		return dto.PropertyDTO{}, err
	}
	h.log().Info("property state changed", "property_id", property.ID, "active", property.Active)
	return dto.MapProperty(property), nil
}

func (h *AdminHandler) load(ctx context.Context, rawID string) (*domainproperty.Property, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, err
	}
	property, err := unit.Properties().ByID(ctx, domainproperty.ID(strings.TrimSpace(rawID)))
	if err != nil {
		return nil, support.StoreErr(err)
	}
	return property, nil
}

func (h *AdminHandler) persist(ctx context.Context, property *domainproperty.Property) error {
	unit, err := support.Unit(ctx)
	if err != nil {
		return err
	}
	if err := unit.Properties().Save(ctx, property); err != nil {
		return support.StoreErr(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, property); err != nil {
		return support.StoreErr(err)
	}
	if h.Cache != nil {
		if err := h.Cache.Delete(ctx, propertyCacheKey(property.ID)); err != nil {
			h.log().Warn("property cache invalidation failed", "property_id", property.ID, "error", err)
		}
	}
	return nil
}

func (h *AdminHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ commands.Handler[UpdateRatesCommand, dto.PropertyDTO] = commands.HandlerFunc[UpdateRatesCommand, dto.PropertyDTO]((&AdminHandler{}).UpdateRates)
