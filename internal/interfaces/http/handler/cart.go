package handler

import (
	"github.com/gin-gonic/gin"

	cartapp "github.com/erp/storefront/internal/application/cart"
	catalogapp "github.com/erp/storefront/internal/application/catalog"
	identityapp "github.com/erp/storefront/internal/application/identity"
	domaincatalog "github.com/erp/storefront/internal/domain/catalog"
	domainidentity "github.com/erp/storefront/internal/domain/identity"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// CartHandler handles local (guest) and persisted cart endpoints
type CartHandler struct {
	BaseHandler
	cart     *cartapp.Service
	catalog  *catalogapp.Service
	identity *identityapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart *cartapp.Service, catalog *catalogapp.Service, identity *identityapp.Service) *CartHandler {
	return &CartHandler{
		cart:     cart,
		catalog:  catalog,
		identity: identity,
	}
}

// LocalCartItemRequest identifies a local cart line by product and
// selected variants
type LocalCartItemRequest struct {
	ProductID        int64                          `json:"productId" binding:"required"`
	Quantity         int                            `json:"quantity"`
	SelectedVariants []domaincatalog.ProductVariant `json:"selectedVariants"`
}

// PersistedCartItemRequest represents an add-to-cart request for an
// authenticated customer
type PersistedCartItemRequest struct {
	ProductID        int64                          `json:"productId" binding:"required"`
	Quantity         int                            `json:"quantity" binding:"required,min=1"`
	SelectedVariants []domaincatalog.ProductVariant `json:"selectedVariants"`
}

// UpdateCartItemRequest represents a quantity change for a persisted
// cart item
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// RegisterRoutes registers cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")

	local := cart.Group("/local")
	local.GET("", h.LocalCart)
	local.POST("/items", h.AddLocalItem)
	local.PATCH("/items", h.UpdateLocalItem)
	local.DELETE("/items", h.RemoveLocalItem)
	local.DELETE("", h.ClearLocal)

	cart.GET("", h.PersistedCart)
	cart.POST("/items", h.AddItem)
	cart.PATCH("/items/:itemId", h.UpdateItem)
	cart.DELETE("/items/:itemId", h.RemoveItem)
	cart.DELETE("", h.Clear)
	cart.POST("/merge", h.Merge)
}

// LocalCart returns the guest cart with its derived count and total
func (h *CartHandler) LocalCart(c *gin.Context) {
	ctx := c.Request.Context()
	clientKey := middleware.GetClientKey(c)

	items := h.cart.LocalItems(ctx, clientKey)
	h.Success(c, gin.H{
		"items": items,
		"count": h.cart.LocalItemCount(ctx, clientKey),
		"total": h.cart.LocalTotal(ctx, clientKey),
	})
}

// AddLocalItem adds a product to the guest cart. The product is fetched
// from the catalog so the captured price is authoritative.
func (h *CartHandler) AddLocalItem(c *gin.Context) {
	var req LocalCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	clientKey := middleware.GetClientKey(c)
	items := h.cart.AddLocalItem(ctx, clientKey, product, req.Quantity, req.SelectedVariants)
	h.Success(c, gin.H{
		"items": items,
		"count": h.cart.LocalItemCount(ctx, clientKey),
		"total": h.cart.LocalTotal(ctx, clientKey),
	})
}

// UpdateLocalItem changes the quantity of a guest cart line. A quantity
// of zero or below removes the line.
func (h *CartHandler) UpdateLocalItem(c *gin.Context) {
	var req LocalCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	clientKey := middleware.GetClientKey(c)
	items := h.cart.UpdateLocalItem(ctx, clientKey, req.ProductID, req.Quantity, req.SelectedVariants)
	h.Success(c, gin.H{
		"items": items,
		"count": h.cart.LocalItemCount(ctx, clientKey),
		"total": h.cart.LocalTotal(ctx, clientKey),
	})
}

// RemoveLocalItem removes a guest cart line
func (h *CartHandler) RemoveLocalItem(c *gin.Context) {
	var req LocalCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	clientKey := middleware.GetClientKey(c)
	items := h.cart.RemoveLocalItem(ctx, clientKey, req.ProductID, req.SelectedVariants)
	h.Success(c, gin.H{
		"items": items,
		"count": h.cart.LocalItemCount(ctx, clientKey),
		"total": h.cart.LocalTotal(ctx, clientKey),
	})
}

// ClearLocal empties the guest cart
func (h *CartHandler) ClearLocal(c *gin.Context) {
	h.cart.ClearLocal(c.Request.Context(), middleware.GetClientKey(c))
	h.NoContent(c)
}

// PersistedCart returns the authenticated customer's cart
func (h *CartHandler) PersistedCart(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	cart, err := h.cart.PersistedCart(c.Request.Context(), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem adds a product to the authenticated customer's cart
func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req PersistedCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cart.AddPersistedItem(c.Request.Context(), user.ID, req.ProductID, req.Quantity, req.SelectedVariants)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem changes the quantity of a persisted cart item
func (h *CartHandler) UpdateItem(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	itemID, err := pathID(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cart.UpdatePersistedItem(c.Request.Context(), itemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem removes a persisted cart item
func (h *CartHandler) RemoveItem(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	itemID, err := pathID(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.cart.RemovePersistedItem(c.Request.Context(), itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear empties the authenticated customer's cart
func (h *CartHandler) Clear(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.cart.ClearPersisted(c.Request.Context(), user.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Merge folds the guest cart into the customer's persisted cart
func (h *CartHandler) Merge(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	cart, err := h.cart.MergeLocalIntoPersisted(c.Request.Context(), middleware.GetClientKey(c), user.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// requireUser resolves the cached authenticated user or responds 401
func (h *CartHandler) requireUser(c *gin.Context) (*domainidentity.User, bool) {
	user, found := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !found {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return user, true
}
