package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/erp/storefront/internal/application/analytics"
	catalogapp "github.com/erp/storefront/internal/application/catalog"
	identityapp "github.com/erp/storefront/internal/application/identity"
	domaincatalog "github.com/erp/storefront/internal/domain/catalog"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// ProductHandler handles product and category browsing endpoints
type ProductHandler struct {
	BaseHandler
	catalog   *catalogapp.Service
	analytics *analyticsapp.Service
	identity  *identityapp.Service
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog *catalogapp.Service, analytics *analyticsapp.Service, identity *identityapp.Service) *ProductHandler {
	return &ProductHandler{
		catalog:   catalog,
		analytics: analytics,
		identity:  identity,
	}
}

// ProductListRequest represents product listing query parameters
type ProductListRequest struct {
	Search     string `form:"search"`
	CategoryID int64  `form:"categoryId"`
	MinPrice   string `form:"minPrice"`
	MaxPrice   string `form:"maxPrice"`
	InStock    bool   `form:"inStock"`
	SortBy     string `form:"sortBy"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (r *ProductListRequest) filters() *domaincatalog.ProductFilters {
	return &domaincatalog.ProductFilters{
		Search:     r.Search,
		CategoryID: r.CategoryID,
		MinPrice:   r.MinPrice,
		MaxPrice:   r.MaxPrice,
		InStock:    r.InStock,
		SortBy:     r.SortBy,
		Page:       r.Page,
		Limit:      r.Limit,
	}
}

// RegisterRoutes registers product and category routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.List)
	products.GET("/featured", h.Featured)
	products.GET("/search", h.Search)
	products.GET("/:id", h.GetByID)

	categories := rg.Group("/categories")
	categories.GET("", h.Categories)
	categories.GET("/:id", h.Category)
	categories.GET("/:id/products", h.ProductsByCategory)
}

// List returns a paginated product listing
func (h *ProductHandler) List(c *gin.Context) {
	var req ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.catalog.Products(c.Request.Context(), req.filters())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Data, page.Total, page.Page, page.Limit)
}

// Featured returns the featured product selection
func (h *ProductHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit <= 0 || limit > 100 {
		limit = 8
	}

	products, err := h.catalog.FeaturedProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Search performs a free-text product search
func (h *ProductHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.BadRequest(c, "Query parameter 'q' is required")
		return
	}

	var req ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	ctx := c.Request.Context()
	page, err := h.catalog.SearchProducts(ctx, query, req.filters())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	clientKey := middleware.GetClientKey(c)
	h.analytics.TrackSearch(ctx, clientKey, query, h.currentUserID(c), int(page.Total))

	h.SuccessWithMeta(c, page.Data, page.Total, page.Page, page.Limit)
}

// GetByID returns a single product and records the view
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	ctx := c.Request.Context()
	product, err := h.catalog.Product(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	clientKey := middleware.GetClientKey(c)
	h.analytics.RecordProductView(ctx, clientKey, strconv.FormatInt(id, 10), h.currentUserID(c))

	h.Success(c, product)
}

// Categories returns all categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Category returns a single category
func (h *ProductHandler) Category(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.catalog.Category(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// ProductsByCategory lists products within a category and records the view
func (h *ProductHandler) ProductsByCategory(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	var req ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	ctx := c.Request.Context()
	page, err := h.catalog.ProductsByCategory(ctx, id, req.filters())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	clientKey := middleware.GetClientKey(c)
	h.analytics.RecordCategoryView(ctx, clientKey, strconv.FormatInt(id, 10), h.currentUserID(c))

	h.SuccessWithMeta(c, page.Data, page.Total, page.Page, page.Limit)
}

// currentUserID returns the cached authenticated user's ID or ""
func (h *ProductHandler) currentUserID(c *gin.Context) string {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}
