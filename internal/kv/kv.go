// Package kv defines the key-value store abstraction used for caching.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound reports a missing key.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is the key-value facade.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close()
}
