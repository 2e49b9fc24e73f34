package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"glampstay/internal/app/services/identity"
	domainauth "glampstay/internal/domain/auth"
	domainuser "glampstay/internal/domain/user"
)

// providerClaims is the token body the identity provider signs.
type providerClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTIdentity verifies HS256 tokens issued by the identity provider.
type JWTIdentity struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

func (j JWTIdentity) Verify(ctx context.Context, token string) (identity.Claims, error) {
	if len(j.Secret) == 0 {
		return identity.Claims{}, fmt.Errorf("%w: verifier has no secret", domainauth.ErrInvalidToken)
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	if j.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(j.Leeway))
	}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &providerClaims{}, func(t *jwt.Token) (any, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return identity.Claims{}, errors.Join(domainauth.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*providerClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return identity.Claims{}, domainauth.ErrInvalidToken
	}
	roles := make([]domainuser.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domainuser.Role(strings.ToLower(strings.TrimSpace(r))))
	}
	return identity.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Roles:   roles,
	}, nil
}

// IssueTestToken signs a token the way the provider does. Local tooling and tests use it.
func (j JWTIdentity) IssueTestToken(subject, email, name string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := providerClaims{
		Email: email,
		Name:  name,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

var _ identity.TokenVerifier = JWTIdentity{}
