package account

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/config"
)

type memStore struct {
	byID       map[string]Account
	byUsername map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		byID:       make(map[string]Account),
		byUsername: make(map[string]string),
	}
}

func (m *memStore) Create(ctx context.Context, a *Account) error {
	if _, ok := m.byUsername[a.Username]; ok {
		return fmt.Errorf("duplicate username %s", a.Username)
	}
	m.byID[a.ID] = *a
	m.byUsername[a.Username] = a.ID
	return nil
}

func (m *memStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	id, ok := m.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("account %s not found", username)
	}
	a := m.byID[id]
	return &a, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s not found", id)
	}
	return &a, nil
}

func newTestService() *Service {
	return NewService(newMemStore(), config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "towlinkdrive",
	}, nil)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	a, err := s.Register(ctx, RegisterInput{
		Username: " driver01 ",
		Password: "p@ssw0rd",
		Roles:    []string{RoleDriver},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if a.Username != "driver01" {
		t.Fatalf("username = %q, want trimmed", a.Username)
	}
	if a.PasswordHash == "" || a.PasswordSalt == "" {
		t.Fatal("password hash/salt not set")
	}
	if a.PasswordHash == "p@ssw0rd" {
		t.Fatal("password stored in clear")
	}

	got, tok, err := s.Authenticate(ctx, "driver01", "p@ssw0rd")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("account id = %s, want %s", got.ID, a.ID)
	}
	if tok == nil || tok.Token == "" {
		t.Fatal("no token issued")
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Fatalf("token already expired: %v", tok.ExpiresAt)
	}
}

func TestRegisterDefaultsToCustomerRole(t *testing.T) {
	s := newTestService()
	a, err := s.Register(context.Background(), RegisterInput{Username: "u1", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !a.HasRole(RoleCustomer) {
		t.Fatalf("roles = %q, want customer default", a.Roles)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Register(ctx, RegisterInput{Username: "driver01", Password: "p@ssw0rd"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := s.Authenticate(ctx, "driver01", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := s.Authenticate(ctx, "nobody", "p@ssw0rd"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := s.Authenticate(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials err = %v, want ErrInvalidCredentials", err)
	}
}
