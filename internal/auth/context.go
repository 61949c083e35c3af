package auth

import (
	"context"

	"github.com/shelfmark/shelfmark/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityContextKey is the context key for storing the resolved Identity.
const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the resolved Identity to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only behind the auth middleware).
func MustIdentityFromContext(ctx context.Context) *model.Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("identity not found in context - ensure auth middleware is applied")
	}
	return id
}

// UserIDFromContext is a convenience function to get the acting user's ID.
// Returns zero if not authenticated.
func UserIDFromContext(ctx context.Context) int64 {
	id := IdentityFromContext(ctx)
	if id == nil {
		return 0
	}
	return id.UserID
}
