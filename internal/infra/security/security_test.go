package security

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "glampstay/internal/domain/auth"
	domainuser "glampstay/internal/domain/user"
)

func TestJWTIdentityVerifiesProviderToken(t *testing.T) {
	j := JWTIdentity{Secret: []byte("s3cret"), Issuer: "https://id.example.com"}
	token, err := j.IssueTestToken("user-1", "ada@example.com", "Ada", []string{"Admin"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := j.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != domainuser.RoleAdmin {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestJWTIdentityRejectsBadTokens(t *testing.T) {
	j := JWTIdentity{Secret: []byte("s3cret"), Issuer: "https://id.example.com"}
	other := JWTIdentity{Secret: []byte("other"), Issuer: "https://id.example.com"}
	forged, _ := other.IssueTestToken("user-1", "", "", nil, time.Hour)
	expired, _ := j.IssueTestToken("user-1", "", "", nil, -time.Minute)
	wrongIssuer, _ := JWTIdentity{Secret: []byte("s3cret"), Issuer: "evil"}.IssueTestToken("user-1", "", "", nil, time.Hour)

	for name, token := range map[string]string{"forged": forged, "expired": expired, "issuer": wrongIssuer, "garbage": "abc"} {
		if _, err := j.Verify(context.Background(), token); !errors.Is(err, domainauth.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestOpsKeyVerifier(t *testing.T) {
	hash, err := HashOpsKey("ops-key", 4)
	if err != nil {
		t.Fatal(err)
	}
	v := OpsKeyVerifier{Hash: hash}
	if err := v.Verify("ops-key"); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if err := v.Verify("nope"); err == nil {
		t.Fatal("wrong key accepted")
	}
	if err := (OpsKeyVerifier{}).Verify("ops-key"); !errors.Is(err, ErrOpsKeyNotConfigured) {
		t.Fatalf("expected ErrOpsKeyNotConfigured, got %v", err)
	}
}
