// Package storage provides the injectable key-value abstraction that holds
// per-client state: guest carts, session identifiers, and bearer credentials.
// It is the server-side analogue of browser local/session storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when no value exists for the key
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is a process-wide key-value store with optional per-key expiry.
// A ttl of zero means the value does not expire.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
