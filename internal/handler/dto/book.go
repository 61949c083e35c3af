package dto

import (
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
)

// CreateBookRequest represents the request body for creating a book.
type CreateBookRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// UpdateBookRequest represents the request body for updating a book.
// Title is optional; an empty title leaves the stored one untouched.
type UpdateBookRequest struct {
	Title  string `json:"title,omitempty"`
	Status string `json:"status"`
}

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ToBookResponse converts a Book model to BookResponse DTO.
func ToBookResponse(book *model.Book) *BookResponse {
	return &BookResponse{
		ID:        book.ID,
		Title:     book.Title,
		Status:    string(book.Status),
		AuthorID:  book.AuthorID,
		CreatedAt: book.CreatedAt,
	}
}

// ToBookListResponse converts a slice of Book models to response DTOs.
// The list endpoint returns a bare array, so an empty slice (not null)
// stands in for "no books".
func ToBookListResponse(books []*model.Book) []BookResponse {
	responses := make([]BookResponse, len(books))
	for i, book := range books {
		responses[i] = *ToBookResponse(book)
	}
	return responses
}
