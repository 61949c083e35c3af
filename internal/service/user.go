// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/metrics"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// Service errors for account operations.
var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// UserStore defines the persistence operations UserService needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// UserService handles registration and credential-based login.
type UserService struct {
	store   UserStore
	tokens  *auth.TokenService
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, tokens *auth.TokenService, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		tokens:  tokens,
		metrics: recorder,
	}
}

// Register creates a new account. The password is hashed before it ever
// reaches the store; the returned user carries the hash only in the field
// that is never serialized.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	// Pre-check keeps the common duplicate-email case off the error path.
	// The unique constraint still backstops races.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailRegistered
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Authenticate verifies the credentials and issues a bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncAuthFailure()
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	// A malformed stored hash counts as a failed match, not a server error.
	match, _ := auth.VerifyPassword(password, user.PasswordHash)
	if !match {
		s.metrics.IncAuthFailure()
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return token, nil
}
