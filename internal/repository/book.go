package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shelfmark/shelfmark/internal/model"
)

// ErrBookNotFound is returned when a book does not exist or belongs to a
// different author. The two cases are deliberately indistinguishable.
var ErrBookNotFound = errors.New("book not found")

// CreateBook inserts a new book and assigns its ID.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (title, author_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		book.Title,
		book.AuthorID,
		book.Status,
	).Scan(&book.ID, &book.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// ListBooksByAuthor retrieves the author's books in insertion order with
// offset/limit pagination. No total count is computed.
func (r *Repository) ListBooksByAuthor(ctx context.Context, authorID int64, skip, limit int) ([]*model.Book, error) {
	query := `
		SELECT id, title, author_id, status, created_at
		FROM books
		WHERE author_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, authorID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*model.Book
	for rows.Next() {
		var book model.Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.AuthorID,
			&book.Status,
			&book.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// GetBook retrieves a book by ID scoped to its author. A book owned by a
// different user yields ErrBookNotFound, same as true absence.
func (r *Repository) GetBook(ctx context.Context, id, authorID int64) (*model.Book, error) {
	query := `
		SELECT id, title, author_id, status, created_at
		FROM books
		WHERE id = $1 AND author_id = $2
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id, authorID).Scan(
		&book.ID,
		&book.Title,
		&book.AuthorID,
		&book.Status,
		&book.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

// DeleteBook removes a book scoped to its author and returns the pre-deletion
// snapshot.
func (r *Repository) DeleteBook(ctx context.Context, id, authorID int64) (*model.Book, error) {
	query := `
		DELETE FROM books
		WHERE id = $1 AND author_id = $2
		RETURNING id, title, author_id, status, created_at
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id, authorID).Scan(
		&book.ID,
		&book.Title,
		&book.AuthorID,
		&book.Status,
		&book.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to delete book: %w", err)
	}

	return &book, nil
}

// UpdateBook overwrites a book's title and status, scoped to its author.
// The update is a single atomic statement; the filter doubles as the
// ownership check.
func (r *Repository) UpdateBook(ctx context.Context, book *model.Book) error {
	query := `
		UPDATE books
		SET title = $3, status = $4
		WHERE id = $1 AND author_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		book.ID,
		book.AuthorID,
		book.Title,
		book.Status,
	)

	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}
