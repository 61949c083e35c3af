// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties the users and books tables and resets the ID
// sequences. The schema must already be applied.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE books, users RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults. The password hash
// is a placeholder; use auth.HashPassword when the test needs to log in.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	return &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$placeholder$placeholder",
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestBook creates a test book owned by the given author.
func NewTestBook(t testing.TB, authorID int64, title string) *model.Book {
	t.Helper()
	return &model.Book{
		Title:    title,
		Status:   model.StatusToRead,
		AuthorID: authorID,
	}
}

// UniqueName generates a unique name for tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
