// Package cart implements the hybrid cart: a guest cart held in client
// state, the backend-persisted customer cart, and the one-shot merge that
// reconciles the former into the latter at login.
package cart

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domaincart "github.com/erp/storefront/internal/domain/cart"
	"github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/domain/shared"
	"github.com/erp/storefront/internal/infrastructure/gateway"
	"github.com/erp/storefront/internal/infrastructure/storage"
)

// Gateway is the subset of the upstream client the cart service uses
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// addItemRequest is the persisted-cart add payload
type addItemRequest struct {
	ProductID        int64                    `json:"productId"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants []catalog.ProductVariant `json:"selectedVariants,omitempty"`
}

// updateItemRequest is the persisted-cart quantity update payload
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Service maintains the guest cart and reconciles it into the
// backend-persisted cart exactly once when a customer authenticates
type Service struct {
	gw     Gateway
	local  localCart
	logger *zap.Logger

	// mergeLocks serializes merges per customer. A double-login race
	// would otherwise issue duplicate adds for the same local items.
	mu         sync.Mutex
	mergeLocks map[int64]*sync.Mutex
}

// NewService creates a cart Service
func NewService(gw Gateway, store storage.Store, logger *zap.Logger) *Service {
	return &Service{
		gw:         gw,
		local:      localCart{store: store, logger: logger},
		logger:     logger,
		mergeLocks: make(map[int64]*sync.Mutex),
	}
}

// ---------------------------------------------------------------------------
// Guest cart
// ---------------------------------------------------------------------------

// LocalItems returns the guest-cart sequence. Never fails: absent or
// corrupt storage yields an empty sequence.
func (s *Service) LocalItems(ctx context.Context, clientKey string) []domaincart.LocalItem {
	return s.local.items(ctx, clientKey)
}

// AddLocalItem adds quantity of product to the guest cart. An entry with
// the same uniqueness key has its quantity incremented; otherwise a new
// entry is appended with the product's effective price captured.
func (s *Service) AddLocalItem(ctx context.Context, clientKey string, product *catalog.Product, quantity int, variants []catalog.ProductVariant) []domaincart.LocalItem {
	items := s.local.items(ctx, clientKey)
	key := domaincart.ItemKey(product.ID, variants)

	found := false
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, domaincart.LocalItem{
			ProductID:        product.ID,
			Quantity:         quantity,
			SelectedVariants: variants,
			Price:            product.EffectivePrice(),
		})
	}

	s.local.save(ctx, clientKey, items)
	return items
}

// UpdateLocalItem sets the quantity of the matching guest-cart entry,
// removing it when quantity drops to zero or below. No-op when no entry
// matches.
func (s *Service) UpdateLocalItem(ctx context.Context, clientKey string, productID int64, quantity int, variants []catalog.ProductVariant) []domaincart.LocalItem {
	items := s.local.items(ctx, clientKey)
	key := domaincart.ItemKey(productID, variants)

	for i := range items {
		if items[i].Key() != key {
			continue
		}
		if quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = quantity
		}
		s.local.save(ctx, clientKey, items)
		break
	}
	return items
}

// RemoveLocalItem removes the matching guest-cart entry if present
func (s *Service) RemoveLocalItem(ctx context.Context, clientKey string, productID int64, variants []catalog.ProductVariant) []domaincart.LocalItem {
	items := s.local.items(ctx, clientKey)
	key := domaincart.ItemKey(productID, variants)

	filtered := items[:0]
	for _, item := range items {
		if item.Key() != key {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) != len(items) {
		s.local.save(ctx, clientKey, filtered)
	}
	return filtered
}

// ClearLocal deletes the guest cart entirely
func (s *Service) ClearLocal(ctx context.Context, clientKey string) {
	s.local.clear(ctx, clientKey)
}

// LocalItemCount returns the summed quantity across guest-cart entries
func (s *Service) LocalItemCount(ctx context.Context, clientKey string) int {
	count := 0
	for _, item := range s.local.items(ctx, clientKey) {
		count += item.Quantity
	}
	return count
}

// LocalTotal returns the guest-cart total from captured unit prices
func (s *Service) LocalTotal(ctx context.Context, clientKey string) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.local.items(ctx, clientKey) {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ---------------------------------------------------------------------------
// Persisted cart
// ---------------------------------------------------------------------------

// PersistedCart fetches the customer's backend cart. A lookup miss returns
// (nil, nil): having no persisted cart yet is a valid state.
func (s *Service) PersistedCart(ctx context.Context, customerID int64) (*domaincart.Cart, error) {
	var c domaincart.Cart
	err := s.gw.Get(ctx, fmt.Sprintf("/carts/user/%d", customerID), nil, &c)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, nil
		}
		return nil, upstreamError(err, "Failed to fetch cart")
	}
	return &c, nil
}

// AddPersistedItem adds an item to the customer's backend cart and returns
// the updated cart
func (s *Service) AddPersistedItem(ctx context.Context, customerID, productID int64, quantity int, variants []catalog.ProductVariant) (*domaincart.Cart, error) {
	var c domaincart.Cart
	req := addItemRequest{ProductID: productID, Quantity: quantity, SelectedVariants: variants}
	if err := s.gw.Post(ctx, fmt.Sprintf("/carts/user/%d/items", customerID), req, &c); err != nil {
		return nil, upstreamError(err, "Failed to add item to cart")
	}
	return &c, nil
}

// UpdatePersistedItem updates the quantity of a backend cart line
func (s *Service) UpdatePersistedItem(ctx context.Context, itemID int64, quantity int) (*domaincart.Cart, error) {
	var c domaincart.Cart
	if err := s.gw.Patch(ctx, fmt.Sprintf("/carts/items/%d", itemID), updateItemRequest{Quantity: quantity}, &c); err != nil {
		return nil, upstreamError(err, "Failed to update cart item")
	}
	return &c, nil
}

// RemovePersistedItem removes a backend cart line
func (s *Service) RemovePersistedItem(ctx context.Context, itemID int64) error {
	if err := s.gw.Delete(ctx, fmt.Sprintf("/carts/items/%d", itemID)); err != nil {
		return upstreamError(err, "Failed to remove item from cart")
	}
	return nil
}

// ClearPersisted clears the customer's backend cart
func (s *Service) ClearPersisted(ctx context.Context, customerID int64) error {
	if err := s.gw.Delete(ctx, fmt.Sprintf("/carts/user/%d", customerID)); err != nil {
		return upstreamError(err, "Failed to clear cart")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reconciliation
// ---------------------------------------------------------------------------

// MergeLocalIntoPersisted reconciles the guest cart into the customer's
// backend cart. The guest items are added one at a time in stored order;
// duplicate detection against existing backend lines is the backend's
// responsibility. On the first failed add the merge aborts before clearing
// the guest cart, so items already added upstream remain there (no
// compensating rollback). After all adds succeed the guest cart is cleared
// and a fresh read of the backend cart is returned, making an immediate
// second merge a no-op.
func (s *Service) MergeLocalIntoPersisted(ctx context.Context, clientKey string, customerID int64) (*domaincart.Cart, error) {
	lock := s.mergeLock(customerID)
	lock.Lock()
	defer lock.Unlock()

	items := s.local.items(ctx, clientKey)
	if len(items) == 0 {
		return s.currentPersisted(ctx, customerID)
	}

	for _, item := range items {
		if _, err := s.AddPersistedItem(ctx, customerID, item.ProductID, item.Quantity, item.SelectedVariants); err != nil {
			s.logger.Warn("Cart merge aborted",
				zap.Int64("customer_id", customerID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.local.clear(ctx, clientKey)

	return s.currentPersisted(ctx, customerID)
}

// currentPersisted reads the backend cart, substituting a synthetic empty
// cart when none exists
func (s *Service) currentPersisted(ctx context.Context, customerID int64) (*domaincart.Cart, error) {
	c, err := s.PersistedCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return domaincart.Empty(customerID), nil
	}
	return c, nil
}

// mergeLock returns the per-customer merge mutex, creating it on first use
func (s *Service) mergeLock(customerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.mergeLocks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.mergeLocks[customerID] = lock
	}
	return lock
}

// upstreamError converts a gateway failure into a domain error carrying
// the backend's message when present, else the per-operation fallback
func upstreamError(err error, fallback string) error {
	return shared.NewDomainError(shared.ErrUpstream.Code, gateway.Message(err, fallback))
}
