package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	identityapp "github.com/erp/storefront/internal/application/identity"
	orderapp "github.com/erp/storefront/internal/application/order"
	domaincatalog "github.com/erp/storefront/internal/domain/catalog"
	domainidentity "github.com/erp/storefront/internal/domain/identity"
	domainorder "github.com/erp/storefront/internal/domain/order"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orders   *orderapp.Service
	identity *identityapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service, identity *identityapp.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		identity: identity,
	}
}

// CreateOrderItemRequest is a line in an order creation request
type CreateOrderItemRequest struct {
	ProductID        int64                          `json:"productId" binding:"required"`
	Quantity         int                            `json:"quantity" binding:"required,min=1"`
	Price            decimal.Decimal                `json:"price"`
	SelectedVariants []domaincatalog.ProductVariant `json:"selectedVariants"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	Items            []CreateOrderItemRequest `json:"items" binding:"required,min=1"`
	ShippingMethodID int64                    `json:"shippingMethodId"`
	ShippingAddress  string                   `json:"shippingAddress" binding:"required"`
	BillingAddress   string                   `json:"billingAddress"`
	PaymentMethod    string                   `json:"paymentMethod" binding:"required"`
}

// OrderListRequest represents order listing query parameters
type OrderListRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("/mine", h.Mine)
	orders.GET("/:id", h.GetByID)
	orders.POST("/:id/cancel", h.Cancel)
}

// Create places an order for the authenticated customer
func (h *OrderHandler) Create(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid order payload")
		return
	}

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}
	data := domainorder.CreateData{
		CustomerID:       user.ID,
		ShippingMethodID: req.ShippingMethodID,
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   billing,
		PaymentMethod:    domainorder.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		data.Items = append(data.Items, domainorder.CreateItem{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			Price:            item.Price,
			SelectedVariants: item.SelectedVariants,
		})
	}

	order, err := h.orders.Create(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Mine lists the authenticated customer's orders
func (h *OrderHandler) Mine(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.orders.UserOrders(c.Request.Context(), user.ID, &domainorder.Filters{
		Status: domainorder.Status(req.Status),
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Data, page.Total, page.Page, page.Limit)
}

// GetByID returns a single order
func (h *OrderHandler) GetByID(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Order(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) requireUser(c *gin.Context) (*domainidentity.User, bool) {
	user, found := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !found {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}
	return user, true
}
