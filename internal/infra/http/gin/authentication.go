package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/services/identity"
	domainauth "glampstay/internal/domain/auth"
)

// IdentityResolver turns a bearer token into the calling principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (domainauth.Principal, error)
}

// AuthMiddleware resolves an optional bearer token. Requests without one continue
// anonymously and the command bus decides whether that is allowed. A token that
// fails verification is rejected outright.
type AuthMiddleware struct {
	Identity IdentityResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Identity == nil {
		c.Next()
		return
	}
	p, err := m.Identity.Resolve(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, identity.ErrNotConfigured) {
			c.Next()
			return
		}
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		if apperr.Classify(err).Kind == apperr.KindInternal {
			err = apperr.Wrap(apperr.KindUnauthorized, err, "invalid token")
		}
		respondError(c, m.Logger, err)
		return
	}
	c.Request = c.Request.WithContext(domainauth.ContextWithPrincipal(c.Request.Context(), p))
	c.Next()
}

func currentPrincipal(c *gin.Context) (domainauth.Principal, bool) {
	if c.Request == nil {
		return domainauth.Principal{}, false
	}
	p, ok := domainauth.PrincipalFromContext(c.Request.Context())
	if !ok || !p.Authenticated() {
		return domainauth.Principal{}, false
	}
	return p, true
}

func requirePrincipal(c *gin.Context, logger *slog.Logger) (domainauth.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, logger, domainauth.ErrUnauthenticated)
		return domainauth.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
