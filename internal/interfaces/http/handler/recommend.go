package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	identityapp "github.com/erp/storefront/internal/application/identity"
	recommendapp "github.com/erp/storefront/internal/application/recommend"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// RecommendHandler handles the recommendation aggregation endpoint
type RecommendHandler struct {
	BaseHandler
	aggregator *recommendapp.Aggregator
	identity   *identityapp.Service
}

// NewRecommendHandler creates a new RecommendHandler
func NewRecommendHandler(aggregator *recommendapp.Aggregator, identity *identityapp.Service) *RecommendHandler {
	return &RecommendHandler{
		aggregator: aggregator,
		identity:   identity,
	}
}

// RegisterRoutes registers recommendation routes
func (h *RecommendHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/recommendations", h.Sections)
}

// Sections aggregates all applicable recommendation sections for the
// client. An optional productId query parameter enables the similar and
// frequently-bought sections; a refresh is simply another GET.
func (h *RecommendHandler) Sections(c *gin.Context) {
	ctx := c.Request.Context()

	req := recommendapp.Request{
		CurrentProductID: c.Query("productId"),
	}
	if user, ok := h.identity.CurrentUser(ctx, middleware.GetClientKey(c)); ok {
		req.UserID = strconv.FormatInt(user.ID, 10)
	}

	sections := h.aggregator.Aggregate(ctx, req)
	h.Success(c, sections)
}
