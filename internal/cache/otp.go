// Package cache wraps Redis as the ephemeral store for in-flight
// verification codes.  Entries are keyed by the contact field being
// verified (phone number or email) and expire on their own; a repeated
// request for the same key overwrites the previous code, so at most one
// code is pending per key at any time.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound is returned when no code is pending for a key, whether
// because none was ever set or because its TTL elapsed.  The two cases are
// indistinguishable on purpose.
var ErrCodeNotFound = errors.New("code not found")

const keyPrefix = "otp:"

// CodeCache stores short verification codes with a bounded TTL.
type CodeCache struct {
	rdb *redis.Client
}

// NewCodeCache wraps an existing Redis client.
func NewCodeCache(rdb *redis.Client) *CodeCache {
	return &CodeCache{rdb: rdb}
}

// Set writes a code for a key, replacing any pending code and restarting
// the TTL window.
func (c *CodeCache) Set(ctx context.Context, key, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, keyPrefix+key, code, ttl).Err()
}

// Get returns the pending code for a key or ErrCodeNotFound when the entry
// is absent or expired.
func (c *CodeCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Del removes a pending code.  Deleting an absent key is not an error;
// confirmation flows call this after a successful match and a concurrent
// expiry amounts to the same outcome.
func (c *CodeCache) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, keyPrefix+key).Err()
}
