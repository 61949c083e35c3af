package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/metrics"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// memUserStore is an in-memory UserStore mirroring the repository's
// uniqueness semantics.
type memUserStore struct {
	users  map[string]*model.User // by username
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (s *memUserStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUsernameExists
	}

	s.nextID++
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

func (s *memUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newTestUserService(store UserStore) (*UserService, *auth.TokenService, *metrics.InMemoryRecorder) {
	tokens := auth.NewTokenService("unit-test-secret", time.Hour)
	recorder := metrics.NewInMemory()
	return NewUserService(store, tokens, recorder), tokens, recorder
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	svc, _, recorder := newTestUserService(newMemUserStore())

	user, err := svc.Register(context.Background(), "alice", "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected assigned user ID")
	}
	if user.Username != "alice" || user.Email != "a@x.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "pw123" {
		t.Error("password must be hashed before storage")
	}
	if match, _ := auth.VerifyPassword("pw123", user.PasswordHash); !match {
		t.Error("stored hash should verify against the original password")
	}

	if got := recorder.Snapshot().UsersRegistered; got != 1 {
		t.Errorf("expected 1 registration recorded, got %d", got)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestUserService(newMemUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(ctx, "bob", "a@x.com", "other")
	if !errors.Is(err, ErrEmailRegistered) {
		t.Errorf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestUserService(newMemUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(ctx, "alice", "b@x.com", "other")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	svc, tokens, recorder := newTestUserService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, err := svc.Authenticate(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("token should resolve to alice, got %s", claims.Subject)
	}

	if got := recorder.Snapshot().TokensIssued; got != 1 {
		t.Errorf("expected 1 token recorded, got %d", got)
	}
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, recorder := newTestUserService(newMemUserStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Authenticate(ctx, "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if got := recorder.Snapshot().AuthFailures; got != 1 {
		t.Errorf("expected 1 auth failure recorded, got %d", got)
	}
}

func TestUserService_Authenticate_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestUserService(newMemUserStore())

	_, err := svc.Authenticate(context.Background(), "nobody", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Authenticate_MalformedStoredHash(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	store.users["mallory"] = &model.User{
		ID:           1,
		Username:     "mallory",
		Email:        "m@x.com",
		PasswordHash: "not-a-valid-hash",
	}
	svc, _, _ := newTestUserService(store)

	_, err := svc.Authenticate(context.Background(), "mallory", "anything")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("malformed stored hash should fail as bad credentials, got %v", err)
	}
}
