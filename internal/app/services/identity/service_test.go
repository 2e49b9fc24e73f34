package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"glampstay/internal/app/apperr"
	domainauth "glampstay/internal/domain/auth"
	domainuser "glampstay/internal/domain/user"
)

type stubVerifier map[string]Claims

func (v stubVerifier) Verify(_ context.Context, token string) (Claims, error) {
	c, ok := v[token]
	if !ok {
		return Claims{}, errors.New("signature mismatch")
	}
	return c, nil
}

type mapUsers struct {
	items map[domainuser.ID]*domainuser.User
	saves int
	fail  error
}

func newMapUsers() *mapUsers {
	return &mapUsers{items: map[domainuser.ID]*domainuser.User{}}
}

func (m *mapUsers) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	u, ok := m.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return u.Clone(), nil
}

func (m *mapUsers) Save(_ context.Context, u *domainuser.User) error {
	m.saves++
	m.items[u.ID] = u.Clone()
	return nil
}

func newService(users *mapUsers, claims stubVerifier) *Service {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &Service{Verifier: claims, Users: users, Now: func() time.Time { return now }}
}

func TestResolveCreatesProfileOnFirstSight(t *testing.T) {
	users := newMapUsers()
	svc := newService(users, stubVerifier{"t1": {Subject: "sub-1", Email: "Ana@Example.com", Name: "Ana"}})

	p, err := svc.Resolve(context.Background(), "t1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.UserID != "sub-1" || !p.Authenticated() {
		t.Fatalf("principal = %+v", p)
	}
	if p.IsAdmin() {
		t.Fatal("a fresh profile must not be an administrator")
	}
	if _, ok := users.items["sub-1"]; !ok {
		t.Fatal("profile was not stored")
	}

	if _, err := svc.Resolve(context.Background(), "t1"); err != nil {
		t.Fatal(err)
	}
	if users.saves != 1 {
		t.Fatalf("unchanged profile saved %d times, want 1", users.saves)
	}
}

func TestResolveMergesProviderRoles(t *testing.T) {
	users := newMapUsers()
	claims := stubVerifier{"guest": {Subject: "sub-1", Email: "ana@example.com"}}
	svc := newService(users, claims)
	if _, err := svc.Resolve(context.Background(), "guest"); err != nil {
		t.Fatal(err)
	}

	claims["staff"] = Claims{Subject: "sub-1", Email: "ana@example.com", Roles: []domainuser.Role{domainuser.RoleAdmin, "wizard"}}
	p, err := svc.Resolve(context.Background(), "staff")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsAdmin() {
		t.Fatalf("expected admin role, got %v", p.Roles)
	}
	for _, r := range p.Roles {
		if r == "wizard" {
			t.Fatal("unknown provider roles must be dropped")
		}
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc := newService(newMapUsers(), stubVerifier{"blank": {Subject: " "}})
	if _, err := svc.Resolve(context.Background(), "nope"); !errors.Is(err, domainauth.ErrInvalidToken) {
		t.Fatalf("unknown token: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "blank"); !errors.Is(err, domainauth.ErrInvalidToken) {
		t.Fatalf("blank subject: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "  "); !errors.Is(err, domainauth.ErrUnauthenticated) {
		t.Fatalf("empty token: %v", err)
	}
	var nilSvc *Service
	if _, err := nilSvc.Resolve(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("nil service: %v", err)
	}
}

func TestResolveReportsStoreFailures(t *testing.T) {
	users := newMapUsers()
	users.fail = errors.New("connection reset")
	svc := newService(users, stubVerifier{"t": {Subject: "sub-1", Email: "ana@example.com"}})
	_, err := svc.Resolve(context.Background(), "t")
	if apperr.KindOf(err) != apperr.KindStore {
		t.Fatalf("kind = %s, want store (%v)", apperr.KindOf(err), err)
	}
}

func TestDeviceRegistration(t *testing.T) {
	users := newMapUsers()
	svc := newService(users, stubVerifier{"t": {Subject: "sub-1", Email: "ana@example.com"}})
	p, err := svc.Resolve(context.Background(), "t")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.RegisterDevice(context.Background(), p, "fcm-token-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := users.items["sub-1"].DeviceTokens; len(got) != 1 || got[0] != "fcm-token-1" {
		t.Fatalf("device tokens = %v", got)
	}
	if err := svc.RemoveDevice(context.Background(), p, "fcm-token-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := users.items["sub-1"].DeviceTokens; len(got) != 0 {
		t.Fatalf("device tokens after remove = %v", got)
	}
	if err := svc.RegisterDevice(context.Background(), domainauth.Principal{}, "x"); !errors.Is(err, domainauth.ErrUnauthenticated) {
		t.Fatalf("anonymous register: %v", err)
	}
}
