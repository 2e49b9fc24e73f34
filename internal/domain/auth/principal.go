package auth

import (
	"context"
	"errors"

	"glampstay/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrForbidden       = errors.New("auth: insufficient permissions")
	ErrInvalidToken    = errors.New("auth: invalid token")
)

// Principal is the caller resolved from the identity provider for one request.
type Principal struct {
	UserID user.ID
	Email  string
	Name   string
	Roles  []user.Role
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

func (p Principal) HasRole(role user.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(user.RoleAdmin)
}

type ctxKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	if !ok || !p.Authenticated() {
		return Principal{}, false
	}
	return p, true
}
