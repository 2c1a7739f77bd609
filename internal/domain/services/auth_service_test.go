package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entities.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s not found", email)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", id)
}

type fakeSessionRepo struct {
	sessions map[string]*entities.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entities.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entities.Session) error {
	r.sessions[session.Token] = session
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, token string) (*entities.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return session, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	return NewAuthService(users, sessions, nil, time.Hour), users, sessions
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@Example.COM ", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}

	token, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if _, ok := sessions.sessions[token]; !ok {
		t.Fatal("session not stored")
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "bob@example.com", "another123")
	if _, ok := err.(*errors.ConflictError); !ok {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterClaimsMembershipPlaceholder(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	// Row created by folder membership before the user ever signed up.
	users.users["carol@example.com"] = &entities.User{
		ID:    "placeholder-id",
		Email: "carol@example.com",
	}

	user, err := svc.Register(ctx, "carol@example.com", "secret123")
	if err != nil {
		t.Fatalf("register over placeholder: %v", err)
	}
	if user.Password == "" {
		t.Fatal("claimed account has no password")
	}
}

func TestValidateTokenExpiry(t *testing.T) {
	svc, users, sessions := newTestAuthService()
	ctx := context.Background()

	users.users["dave@example.com"] = &entities.User{ID: "u1", Email: "dave@example.com", Password: "x"}
	sessions.sessions["tok"] = &entities.Session{
		ID:        "s1",
		UserEmail: "dave@example.com",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Minute),
	}

	user, err := svc.ValidateToken(ctx, "tok")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Email != "dave@example.com" {
		t.Fatalf("wrong user: %s", user.Email)
	}

	sessions.sessions["expired"] = &entities.Session{
		ID:        "s2",
		UserEmail: "dave@example.com",
		Token:     "expired",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if _, err := svc.ValidateToken(ctx, "expired"); err == nil {
		t.Fatal("expected error for expired token")
	}
	if _, ok := sessions.sessions["expired"]; ok {
		t.Fatal("expired session not deleted")
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()

	sessions.sessions["tok"] = &entities.Session{ID: "s1", UserEmail: "eve@example.com", Token: "tok"}
	if err := svc.Logout(ctx, "tok"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions["tok"]; ok {
		t.Fatal("session still present after logout")
	}
}
