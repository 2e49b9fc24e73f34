package middleware

import (
	"context"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/queries"
	domainauth "glampstay/internal/domain/auth"
	domainuser "glampstay/internal/domain/user"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// RoleRequirement is implemented by messages only certain roles may send.
type RoleRequirement interface {
	RequiredRole() domainuser.Role
}

// Anonymous marks messages that may be sent without a principal.
type Anonymous interface {
	AllowAnonymous() bool
}

// RoleAuthorizer requires an authenticated principal unless the message allows anonymous
// callers, and checks the role demanded by RoleRequirement messages.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	if anon, ok := message.(Anonymous); ok && anon.AllowAnonymous() {
		return nil
	}
	principal, ok := domainauth.PrincipalFromContext(ctx)
	if !ok || !principal.Authenticated() {
		return apperr.Wrap(apperr.KindUnauthorized, domainauth.ErrUnauthenticated, "authentication required")
	}
	req, ok := message.(RoleRequirement)
	if !ok {
		return nil
	}
	role := req.RequiredRole()
	if role == "" || principal.HasRole(role) {
		return nil
	}
	return apperr.Wrap(apperr.KindForbidden, domainauth.ErrForbidden, "insufficient permissions")
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
