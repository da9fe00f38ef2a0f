package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/erp/storefront/internal/application/analytics"
	identityapp "github.com/erp/storefront/internal/application/identity"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles behavior tracking and popularity endpoints
type AnalyticsHandler struct {
	BaseHandler
	analytics *analyticsapp.Service
	identity  *identityapp.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analytics *analyticsapp.Service, identity *identityapp.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		identity:  identity,
	}
}

// PageViewRequest represents a page-view tracking event
type PageViewRequest struct {
	Page string `json:"page" binding:"required"`
}

// SearchEventRequest represents a search tracking event
type SearchEventRequest struct {
	Query        string `json:"query" binding:"required"`
	ResultsCount int    `json:"resultsCount"`
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	analytics.POST("/page-view", h.PageView)
	analytics.POST("/search", h.Search)
	analytics.GET("/trending", h.Trending)
	analytics.GET("/most-viewed", h.MostViewed)
	analytics.GET("/popular-by-category/:categoryId", h.PopularByCategory)
}

// PageView records a page view. Always returns 202: tracking is
// best-effort and failures are only logged.
func (h *AnalyticsHandler) PageView(c *gin.Context) {
	var req PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Page is required")
		return
	}

	ctx := c.Request.Context()
	h.analytics.TrackPageView(ctx, middleware.GetClientKey(c), req.Page, h.currentUserID(c))
	c.Status(http.StatusAccepted)
}

// Search records a search event, best-effort
func (h *AnalyticsHandler) Search(c *gin.Context) {
	var req SearchEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Query is required")
		return
	}

	ctx := c.Request.Context()
	h.analytics.TrackSearch(ctx, middleware.GetClientKey(c), req.Query, h.currentUserID(c), req.ResultsCount)
	c.Status(http.StatusAccepted)
}

// Trending returns the trending product identifiers
func (h *AnalyticsHandler) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit <= 0 || limit > 100 {
		limit = 8
	}

	ids, err := h.analytics.TrendingProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ids)
}

// MostViewed returns the most viewed products with view counts
func (h *AnalyticsHandler) MostViewed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := h.analytics.MostViewedProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// PopularByCategory returns popular product identifiers within a category
func (h *AnalyticsHandler) PopularByCategory(c *gin.Context) {
	categoryID := c.Param("categoryId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit <= 0 || limit > 100 {
		limit = 8
	}

	ids, err := h.analytics.PopularByCategory(c.Request.Context(), categoryID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ids)
}

func (h *AnalyticsHandler) currentUserID(c *gin.Context) string {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}
