package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfmark/shelfmark/internal/metrics"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// Service errors for book operations.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrInvalidStatus = errors.New("status must be read or to_read")
	ErrMissingTitle  = errors.New("title is required")
)

// Default pagination bounds for listing.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// BookStore defines the persistence operations BookService needs.
// *repository.Repository satisfies it. Every operation is scoped by the
// author's ID at the query boundary.
type BookStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	ListBooksByAuthor(ctx context.Context, authorID int64, skip, limit int) ([]*model.Book, error)
	GetBook(ctx context.Context, id, authorID int64) (*model.Book, error)
	DeleteBook(ctx context.Context, id, authorID int64) (*model.Book, error)
	UpdateBook(ctx context.Context, book *model.Book) error
}

// BookService handles ownership-scoped book operations. The acting user's ID
// comes from the resolved identity, never from client input.
type BookService struct {
	store   BookStore
	metrics metrics.Recorder
}

// NewBookService creates a new BookService.
func NewBookService(store BookStore, recorder metrics.Recorder) *BookService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BookService{
		store:   store,
		metrics: recorder,
	}
}

// Create adds a book to the acting user's list.
func (s *BookService) Create(ctx context.Context, authorID int64, title string, status model.BookStatus) (*model.Book, error) {
	if title == "" {
		return nil, ErrMissingTitle
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	book := &model.Book{
		Title:    title,
		Status:   status,
		AuthorID: authorID,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.metrics.IncBookCreated()

	return book, nil
}

// List returns the acting user's books in insertion order.
// Negative skip is treated as zero; limit is defaulted and capped.
func (s *BookService) List(ctx context.Context, authorID int64, skip, limit int) ([]*model.Book, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	books, err := s.store.ListBooksByAuthor(ctx, authorID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return books, nil
}

// Get returns a single book owned by the acting user. A book owned by
// someone else is ErrBookNotFound, same as true absence.
func (s *BookService) Get(ctx context.Context, id, authorID int64) (*model.Book, error) {
	book, err := s.store.GetBook(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

// Delete removes a book owned by the acting user and returns the deleted
// snapshot.
func (s *BookService) Delete(ctx context.Context, id, authorID int64) (*model.Book, error) {
	book, err := s.store.DeleteBook(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}

	s.metrics.IncBookDeleted()

	return book, nil
}

// Update overwrites a book's status and, when a non-empty title is supplied,
// its title. The book must belong to the acting user.
func (s *BookService) Update(ctx context.Context, id, authorID int64, title string, status model.BookStatus) (*model.Book, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	book, err := s.store.GetBook(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if title != "" {
		book.Title = title
	}
	book.Status = status

	if err := s.store.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			// Deleted between the read and the write; surface as absence.
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	s.metrics.IncBookUpdated()

	return book, nil
}
