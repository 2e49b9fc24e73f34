package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired  = errors.New("user: id is required")
	ErrInvalidRole = errors.New("user: invalid role")
	ErrNotFound    = errors.New("user: not found")
	ErrDeviceToken = errors.New("user: device token is required")
)

const maxDeviceTokens = 5

type ID string

type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// User is the local profile of an identity-provider account: role grants and push devices.
type User struct {
	ID           ID
	Email        string
	Name         string
	Roles        []Role
	DeviceTokens []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	Email     string
	Name      string
	Roles     []Role
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	roles, err := NormalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleGuest}
	}
	return &User{
		ID:        ID(id),
		Email:     normalizeEmail(params.Email),
		Name:      strings.TrimSpace(params.Name),
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SyncProfile refreshes email and name from the identity provider. It reports whether anything changed.
func (u *User) SyncProfile(email, name string, now time.Time) bool {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	changed := false
	if email != "" && email != u.Email {
		u.Email = email
		changed = true
	}
	if name != "" && name != u.Name {
		u.Name = name
		changed = true
	}
	if changed {
		u.touch(now)
	}
	return changed
}

func (u *User) EnsureRole(role Role, now time.Time) error {
	role = normalizeRole(role)
	if role == "" {
		return ErrInvalidRole
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	u.touch(now)
	return nil
}

func (u *User) HasRole(role Role) bool {
	role = normalizeRole(role)
	if role == "" {
		return false
	}
	for _, current := range u.Roles {
		if normalizeRole(current) == role {
			return true
		}
	}
	return false
}

// AddDeviceToken registers a push token, keeping the most recent few.
func (u *User) AddDeviceToken(token string, now time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrDeviceToken
	}
	for _, existing := range u.DeviceTokens {
		if existing == token {
			return nil
		}
	}
	u.DeviceTokens = append(u.DeviceTokens, token)
	if len(u.DeviceTokens) > maxDeviceTokens {
		u.DeviceTokens = u.DeviceTokens[len(u.DeviceTokens)-maxDeviceTokens:]
	}
	u.touch(now)
	return nil
}

func (u *User) RemoveDeviceToken(token string, now time.Time) {
	kept := u.DeviceTokens[:0]
	for _, existing := range u.DeviceTokens {
		if existing != token {
			kept = append(kept, existing)
		}
	}
	if len(kept) != len(u.DeviceTokens) {
		u.DeviceTokens = kept
		u.touch(now)
	}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]Role(nil), u.Roles...)
	c.DeviceTokens = append([]string(nil), u.DeviceTokens...)
	return &c
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func NormalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		normalizedRole := normalizeRole(role)
		if normalizedRole == "" {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[normalizedRole]; ok {
			continue
		}
		seen[normalizedRole] = struct{}{}
		normalized = append(normalized, normalizedRole)
	}
	return normalized, nil
}

func normalizeRole(role Role) Role {
	switch strings.ToLower(strings.TrimSpace(string(role))) {
	case "guest", "user":
		return RoleGuest
	case "admin", "administrator":
		return RoleAdmin
	default:
		return ""
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
