package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storefront/internal/infrastructure/storage"
)

const (
	tokenKeyPrefix = "auth:token:"
	userKeyPrefix  = "auth:user:"
)

// Credentials manages the stored bearer token and cached user record for
// each client. The two are always cleared together: on logout and on any
// 401 response from the upstream.
type Credentials struct {
	store storage.Store
	ttl   time.Duration
}

// NewCredentials creates a credential store over the client-state store.
// A zero ttl keeps credentials until explicitly purged.
func NewCredentials(store storage.Store, ttl time.Duration) *Credentials {
	return &Credentials{store: store, ttl: ttl}
}

// Token returns the stored bearer token for clientKey, or empty when absent
func (c *Credentials) Token(ctx context.Context, clientKey string) (string, error) {
	token, err := c.store.Get(ctx, tokenKeyPrefix+clientKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Save stores the bearer token and serialized user record for clientKey
func (c *Credentials) Save(ctx context.Context, clientKey, token, userJSON string) error {
	if err := c.store.Set(ctx, tokenKeyPrefix+clientKey, token, c.ttl); err != nil {
		return err
	}
	return c.store.Set(ctx, userKeyPrefix+clientKey, userJSON, c.ttl)
}

// User returns the cached serialized user record for clientKey, or empty
// when absent
func (c *Credentials) User(ctx context.Context, clientKey string) (string, error) {
	userJSON, err := c.store.Get(ctx, userKeyPrefix+clientKey)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return userJSON, nil
}

// Purge removes the bearer token and cached user record together
func (c *Credentials) Purge(ctx context.Context, clientKey string) error {
	tokenErr := c.store.Delete(ctx, tokenKeyPrefix+clientKey)
	userErr := c.store.Delete(ctx, userKeyPrefix+clientKey)
	if tokenErr != nil {
		return tokenErr
	}
	return userErr
}
