// Package cache stores raw indexer responses so repeated analyses of the
// same wallet skip the network.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key/value store with per-entry TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key joins key parts with ':' in the usual redis style
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
