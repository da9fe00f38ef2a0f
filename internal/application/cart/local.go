package cart

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	domaincart "github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/infrastructure/storage"
)

const localCartKeyPrefix = "cart:local:"

// localCart reads and writes the guest cart held in client state.
// Storage failures and corrupt payloads degrade to an empty cart; they are
// logged, never surfaced to callers.
type localCart struct {
	store  storage.Store
	logger *zap.Logger
}

// items loads the stored guest-cart sequence. Absence and corruption both
// yield an empty sequence.
func (l *localCart) items(ctx context.Context, clientKey string) []domaincart.LocalItem {
	raw, err := l.store.Get(ctx, localCartKeyPrefix+clientKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			l.logger.Warn("Failed to load local cart", zap.Error(err))
		}
		return []domaincart.LocalItem{}
	}

	var items []domaincart.LocalItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.logger.Warn("Discarding corrupt local cart", zap.Error(err))
		return []domaincart.LocalItem{}
	}
	if items == nil {
		return []domaincart.LocalItem{}
	}
	return items
}

// save persists the guest-cart sequence under the client's key
func (l *localCart) save(ctx context.Context, clientKey string, items []domaincart.LocalItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		l.logger.Warn("Failed to encode local cart", zap.Error(err))
		return
	}
	if err := l.store.Set(ctx, localCartKeyPrefix+clientKey, string(payload), 0); err != nil {
		l.logger.Warn("Failed to save local cart", zap.Error(err))
	}
}

// clear deletes the stored guest-cart sequence entirely
func (l *localCart) clear(ctx context.Context, clientKey string) {
	if err := l.store.Delete(ctx, localCartKeyPrefix+clientKey); err != nil {
		l.logger.Warn("Failed to clear local cart", zap.Error(err))
	}
}
