package booking

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrInvalidGuests     = errors.New("booking: at least one adult is required and guest counts cannot be negative")
	ErrCapacityExceeded  = errors.New("booking: guest count exceeds property capacity")
	ErrPetsNotAllowed    = errors.New("booking: pets are not allowed at this property")
	ErrContactName       = errors.New("booking: contact name is required")
	ErrContactEmail      = errors.New("booking: contact email is invalid")
	ErrSpecialRequestLen = errors.New("booking: special requests are too long")
)

const maxSpecialRequests = 2000

type GuestCount struct {
	Adults   int
	Children int
	Infants  int
	Pets     int
}

func (g GuestCount) Validate() error {
	if g.Adults < 1 || g.Children < 0 || g.Infants < 0 || g.Pets < 0 {
		return ErrInvalidGuests
	}
	return nil
}

// Counted is the number of people that use capacity. Pets are not people.
func (g GuestCount) Counted() int {
	return g.Adults + g.Children + g.Infants
}

// CheckFits validates the party against a property's capacity and pet rule.
func (g GuestCount) CheckFits(capacity int, petsAllowed bool) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.Counted() > capacity {
		return ErrCapacityExceeded
	}
	if g.Pets > 0 && !petsAllowed {
		return ErrPetsNotAllowed
	}
	return nil
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Contact) Validate() error {
	c = c.Normalize()
	if c.Name == "" {
		return ErrContactName
	}
	if c.Email == "" {
		return ErrContactEmail
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrContactEmail
	}
	return nil
}

func normalizeRequests(v string) (string, error) {
	v = strings.TrimSpace(v)
	if len(v) > maxSpecialRequests {
		return "", ErrSpecialRequestLen
	}
	return v, nil
}
