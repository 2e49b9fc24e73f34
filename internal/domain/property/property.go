package property

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"glampstay/internal/domain/pricing"
	"glampstay/internal/domain/shared/events"
)

var (
	ErrNotFound        = errors.New("property: not found")
	ErrIDRequired      = errors.New("property: id is required")
	ErrNameRequired    = errors.New("property: name is required")
	ErrCapacity        = errors.New("property: capacity must be at least 1")
	ErrInvalidKind     = errors.New("property: unknown kind")
	ErrInvalidSlug     = errors.New("property: slug must be lowercase letters, digits and dashes")
	ErrAlreadyExists   = errors.New("property: already exists")
	ErrPhotoURLMissing = errors.New("property: photo url is required")
)

type ID string

type Kind string

const (
	KindDome      Kind = "dome"
	KindYurt      Kind = "yurt"
	KindTreehouse Kind = "treehouse"
	KindCabin     Kind = "cabin"
	KindTent      Kind = "tent"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindDome, KindYurt, KindTreehouse, KindCabin, KindTent:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Property is a bookable unit. Its RateCard is read when quoting; bookings keep their own copy.
type Property struct {
	ID          ID
	Slug        string
	Name        string
	Kind        Kind
	Description string
	Capacity    int
	PetsAllowed bool
	Amenities   []string
	Rates       pricing.RateCard
	Photos      []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type ListFilter struct {
	ActiveOnly bool
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Save(ctx context.Context, p *Property) error
	List(ctx context.Context, filter ListFilter) ([]*Property, error)
}

type CreateParams struct {
	ID          ID
	Slug        string
	Name        string
	Kind        string
	Description string
	Capacity    int
	PetsAllowed bool
	Amenities   []string
	Rates       pricing.RateCard
	Photos      []string
	Active      bool
	Now         time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	kind, err := ParseKind(params.Kind)
	if err != nil {
		return nil, err
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	slug := strings.TrimSpace(params.Slug)
	if slug == "" {
		slug = string(params.ID)
	}
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}
	rates, err := normalizeRates(params.Rates)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	p := &Property{
		ID:          ID(strings.TrimSpace(string(params.ID))),
		Slug:        slug,
		Name:        name,
		Kind:        kind,
		Description: strings.TrimSpace(params.Description),
		Capacity:    params.Capacity,
		PetsAllowed: params.PetsAllowed,
		Amenities:   append([]string(nil), params.Amenities...),
		Rates:       rates,
		Photos:      append([]string(nil), params.Photos...),
		Active:      params.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Record(PropertyCreated{PropertyID: p.ID, Name: p.Name, At: now})
	return p, nil
}

// UpdateRates replaces the rate card. Existing bookings are untouched.
func (p *Property) UpdateRates(rates pricing.RateCard, now time.Time) error {
	normalized, err := normalizeRates(rates)
	if err != nil {
		return err
	}
	previous := p.Rates
	p.Rates = normalized
	p.UpdatedAt = now.UTC()
	p.Record(RatesChanged{PropertyID: p.ID, Previous: previous, Current: normalized, At: p.UpdatedAt})
	return nil
}

func (p *Property) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrPhotoURLMissing
	}
	p.Photos = append(p.Photos, url)
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Property) SetActive(active bool, now time.Time) {
	if p.Active == active {
		return
	}
	p.Active = active
	p.UpdatedAt = now.UTC()
}

// GuestFits reports whether the number of counted guests fits the capacity.
func (p *Property) GuestFits(counted int) bool {
	return counted >= 1 && counted <= p.Capacity
}

// Clone returns a deep copy without pending events.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	c.EventRecorder = events.EventRecorder{}
	c.Amenities = append([]string(nil), p.Amenities...)
	c.Photos = append([]string(nil), p.Photos...)
	return &c
}

func normalizeRates(r pricing.RateCard) (pricing.RateCard, error) {
	if r.CleaningFee.Currency == "" {
		r.CleaningFee.Currency = r.NightlyRate.Currency
	}
	r.NightlyRate.Currency = strings.ToUpper(r.NightlyRate.Currency)
	r.CleaningFee.Currency = strings.ToUpper(r.CleaningFee.Currency)
	if err := r.Validate(); err != nil {
		return pricing.RateCard{}, err
	}
	return r, nil
}
