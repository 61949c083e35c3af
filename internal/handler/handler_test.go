package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/middleware"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
	"github.com/shelfmark/shelfmark/internal/service"
)

// ----------------------------------------------------------------------------
// In-memory stores backing the full router under test. They mirror the
// repository's semantics: uniqueness on users, author filter on every book
// query.
// ----------------------------------------------------------------------------

type memStore struct {
	users      map[string]*model.User
	books      []*model.Book
	nextUserID int64
	nextBookID int64
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.User)}
}

func (s *memStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) CreateBook(_ context.Context, book *model.Book) error {
	s.nextBookID++
	book.ID = s.nextBookID
	book.CreatedAt = time.Now().UTC()
	copied := *book
	s.books = append(s.books, &copied)
	return nil
}

func (s *memStore) ListBooksByAuthor(_ context.Context, authorID int64, skip, limit int) ([]*model.Book, error) {
	var owned []*model.Book
	for _, b := range s.books {
		if b.AuthorID == authorID {
			copied := *b
			owned = append(owned, &copied)
		}
	}
	if skip >= len(owned) {
		return nil, nil
	}
	owned = owned[skip:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *memStore) GetBook(_ context.Context, id, authorID int64) (*model.Book, error) {
	for _, b := range s.books {
		if b.ID == id && b.AuthorID == authorID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrBookNotFound
}

func (s *memStore) DeleteBook(_ context.Context, id, authorID int64) (*model.Book, error) {
	for i, b := range s.books {
		if b.ID == id && b.AuthorID == authorID {
			copied := *b
			s.books = append(s.books[:i], s.books[i+1:]...)
			return &copied, nil
		}
	}
	return nil, repository.ErrBookNotFound
}

func (s *memStore) UpdateBook(_ context.Context, book *model.Book) error {
	for i, b := range s.books {
		if b.ID == book.ID && b.AuthorID == book.AuthorID {
			copied := *book
			s.books[i] = &copied
			return nil
		}
	}
	return repository.ErrBookNotFound
}

// newTestRouter wires the real services and middleware over the in-memory
// store, mirroring the production route table.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	tokens := auth.NewTokenService("handler-test-secret", time.Hour)

	userService := service.NewUserService(store, tokens, nil)
	bookService := service.NewBookService(store, nil)

	h := New()
	userHandler := NewUserHandler(userService, logger)
	bookHandler := NewBookHandler(bookService, logger)

	r := chi.NewRouter()
	r.Get("/", h.Hello)
	r.Route("/users", func(r chi.Router) {
		r.Post("/users/", userHandler.Register)
		r.Post("/token", userHandler.Token)
	})
	r.Route("/books", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger: logger,
			Tokens: tokens,
			Users:  store,
		}))
		r.Post("/", bookHandler.Create)
		r.Get("/", bookHandler.List)
		r.Get("/{id}", bookHandler.Get)
		r.Put("/{id}", bookHandler.Update)
		r.Delete("/{id}", bookHandler.Delete)
	})
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

func decodeJSON(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// ----------------------------------------------------------------------------
// Static handlers
// ----------------------------------------------------------------------------

func TestHandler_Hello(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	decodeJSON(t, rec.Body, &response)

	if response["message"] != "Hello from Shelfmark!" {
		t.Errorf("unexpected message: %s", response["message"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}
