package model

import "time"

// BookStatus represents the reading status of a book.
type BookStatus string

const (
	StatusRead   BookStatus = "read"
	StatusToRead BookStatus = "to_read"
)

// IsValid checks if the status is one of the known values.
func (s BookStatus) IsValid() bool {
	return s == StatusRead || s == StatusToRead
}

// Book represents a tracked book. A book belongs to exactly one user and is
// only reachable through queries scoped to its author.
type Book struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Status    BookStatus `json:"status"`
	AuthorID  int64      `json:"author_id"`
	CreatedAt time.Time  `json:"created_at"`
}
