// Package session issues and caches the opaque per-browsing-session
// identifier used to attribute anonymous analytics events.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/storefront/internal/infrastructure/storage"
)

const keyPrefix = "session:"

// Manager generates a session identifier on first need and caches it in the
// client-state store for the configured TTL.
type Manager struct {
	store  storage.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a session Manager
func NewManager(store storage.Store, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// SessionID returns the cached session identifier for clientKey, generating
// and caching a new one when absent. Storage failures degrade to an uncached
// throwaway identifier; they are logged, never surfaced.
func (m *Manager) SessionID(ctx context.Context, clientKey string) string {
	key := keyPrefix + clientKey

	id, err := m.store.Get(ctx, key)
	if err == nil && id != "" {
		return id
	}
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		m.logger.Warn("Failed to read session identifier", zap.Error(err))
	}

	id = newSessionID()
	if err := m.store.Set(ctx, key, id, m.ttl); err != nil {
		m.logger.Warn("Failed to cache session identifier", zap.Error(err))
	}
	return id
}

// newSessionID builds an identifier of the form session_<unix-ms>_<suffix>
func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
