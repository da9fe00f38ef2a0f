package cart

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/storefront/internal/domain/catalog"
)

// LocalItem is a guest-cart entry held in client state before authentication.
// Price is the unit price captured at the time the item was added.
type LocalItem struct {
	ProductID        int64                    `json:"productId"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants []catalog.ProductVariant `json:"selectedVariants,omitempty"`
	Price            decimal.Decimal          `json:"price"`
}

// Key returns the uniqueness key for a local cart entry: the product ID plus
// a canonical serialization of the variant selection. Two entries with the
// same key are the same line and must be merged by quantity increment.
func (i *LocalItem) Key() string {
	return ItemKey(i.ProductID, i.SelectedVariants)
}

// ItemKey builds the uniqueness key for a (product, variant selection) pair.
// Variants are sorted by name/value so selection order does not matter.
func ItemKey(productID int64, variants []catalog.ProductVariant) string {
	if len(variants) == 0 {
		return fmt.Sprintf("%d", productID)
	}
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, v.Name+"="+v.Value)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%d|%s", productID, strings.Join(parts, ","))
}

// LineTotal returns quantity times captured unit price.
func (i *LocalItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Item is a line in the backend-persisted cart
type Item struct {
	ID               int64                    `json:"id"`
	Product          catalog.Product          `json:"product"`
	Quantity         int                      `json:"quantity"`
	SelectedVariants []catalog.ProductVariant `json:"selectedVariants,omitempty"`
	Price            decimal.Decimal          `json:"price"`
}

// Cart is the backend-owned cart tied to a customer
type Cart struct {
	ID          int64           `json:"id"`
	CustomerID  int64           `json:"customerId"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Empty returns a synthetic empty cart for a customer that has no persisted
// cart yet. Lookup misses are a valid state, not an error.
func Empty(customerID int64) *Cart {
	now := time.Now().UTC()
	return &Cart{
		CustomerID:  customerID,
		Items:       []Item{},
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
