package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved identities.
	identityCachePrefix = "identity:"
	// identityCacheTTL bounds how long a resolved identity is reused.
	// Must stay well under the token TTL so a cached entry never outlives
	// the token that produced it.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity is the Redis representation of a resolved identity.
type cachedIdentity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GetIdentity retrieves a cached identity by cache key (a hash of the raw
// token, never the token itself). Returns nil on a miss.
func (c *Cache) GetIdentity(ctx context.Context, cacheKey string) (*model.Identity, error) {
	key := identityCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{
		UserID:   cached.UserID,
		Username: cached.Username,
		Email:    cached.Email,
	}, nil
}

// SetIdentity caches a resolved identity.
func (c *Cache) SetIdentity(ctx context.Context, cacheKey string, id *model.Identity) error {
	key := identityCachePrefix + cacheKey

	data, err := json.Marshal(cachedIdentity{
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, key, data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, cacheKey string) error {
	key := identityCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
