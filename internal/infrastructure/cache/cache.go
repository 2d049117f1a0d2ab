package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a key/value store with per-key expiry
type Cache interface {
	// Get returns the value of key and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl; a zero ttl never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only when key is absent. It reports whether the key was set.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// GetJSON decodes the JSON value stored under key into dst
func GetJSON(ctx context.Context, c Cache, key string, dst any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value encoded as JSON
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	return c.Set(ctx, key, raw, ttl)
}
