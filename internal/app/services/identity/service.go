package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"glampstay/internal/app/apperr"
	domainauth "glampstay/internal/domain/auth"
	domainuser "glampstay/internal/domain/user"
)

// Claims are the verified facts an identity provider token carries.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Roles   []domainuser.Role
}

// TokenVerifier checks a bearer token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Service maps provider identities to local users. Tokens are verified here, never issued.
type Service struct {
	Verifier TokenVerifier
	Users    domainuser.Repository
	Logger   *slog.Logger
	Now      func() time.Time
}

var ErrNotConfigured = errors.New("identity: service not configured")

// Resolve verifies token and returns the caller with the union of token and stored roles.
// A first-time subject gets a local profile.
func (s *Service) Resolve(ctx context.Context, token string) (domainauth.Principal, error) {
	if s == nil || s.Verifier == nil || s.Users == nil {
		return domainauth.Principal{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Principal{}, domainauth.ErrUnauthenticated
	}
	claims, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %v", domainauth.ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domainauth.Principal{}, domainauth.ErrInvalidToken
	}
	user, err := s.sync(ctx, claims)
	if err != nil {
		return domainauth.Principal{}, err
	}
	return domainauth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Roles:  append([]domainuser.Role(nil), user.Roles...),
	}, nil
}

func (s *Service) sync(ctx context.Context, claims Claims) (*domainuser.User, error) {
	now := s.now()
	id := domainuser.ID(strings.TrimSpace(claims.Subject))
	user, err := s.Users.ByID(ctx, id)
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		user, err = domainuser.NewUser(domainuser.CreateParams{
			ID:        id,
			Email:     claims.Email,
			Name:      claims.Name,
			Roles:     knownRoles(claims.Roles),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Users.Save(ctx, user); err != nil {
			return nil, apperr.Store(err)
		}
		s.log().Info("user profile created", "user_id", user.ID, "roles", user.Roles)
		return user, nil
	case err != nil:
		return nil, apperr.Store(err)
	}

	changed := user.SyncProfile(claims.Email, claims.Name, now)
	before := len(user.Roles)
	for _, role := range knownRoles(claims.Roles) {
		if err := user.EnsureRole(role, now); err != nil {
			return nil, err
		}
	}
	if changed || len(user.Roles) != before {
		if err := s.Users.Save(ctx, user); err != nil {
			return nil, apperr.Store(err)
		}
	}
	return user, nil
}

// RegisterDevice stores a push token for the caller.
func (s *Service) RegisterDevice(ctx context.Context, principal domainauth.Principal, token string) error {
	user, err := s.load(ctx, principal)
	if err != nil {
		return err
	}
	if err := user.AddDeviceToken(token, s.now()); err != nil {
		return err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return apperr.Store(err)
	}
	s.log().Debug("device registered", "user_id", user.ID, "devices", len(user.DeviceTokens))
	return nil
}

func (s *Service) RemoveDevice(ctx context.Context, principal domainauth.Principal, token string) error {
	user, err := s.load(ctx, principal)
	if err != nil {
		return err
	}
	user.RemoveDeviceToken(strings.TrimSpace(token), s.now())
	if err := s.Users.Save(ctx, user); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, principal domainauth.Principal) (*domainuser.User, error) {
	if !principal.Authenticated() {
		return nil, domainauth.ErrUnauthenticated
	}
	user, err := s.Users.ByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Store(err)
	}
	return user, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// knownRoles drops provider roles this service does not grant.
func knownRoles(roles []domainuser.Role) []domainuser.Role {
	out := make([]domainuser.Role, 0, len(roles))
	for _, r := range roles {
		if normalized, err := domainuser.NormalizeRoles([]domainuser.Role{r}); err == nil {
			out = append(out, normalized...)
		}
	}
	return out
}
