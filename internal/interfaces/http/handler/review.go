package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/erp/storefront/internal/application/identity"
	reviewapp "github.com/erp/storefront/internal/application/review"
	domainreview "github.com/erp/storefront/internal/domain/review"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	BaseHandler
	reviews  *reviewapp.Service
	identity *identityapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews *reviewapp.Service, identity *identityapp.Service) *ReviewHandler {
	return &ReviewHandler{
		reviews:  reviews,
		identity: identity,
	}
}

// CreateReviewRequest represents a review submission
type CreateReviewRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// RegisterRoutes registers review routes
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	reviews.POST("", h.Create)
	reviews.GET("/mine", h.Mine)
	reviews.GET("/can-review", h.Eligibility)
	reviews.PATCH("/:id", h.Update)
	reviews.DELETE("/:id", h.Remove)
	reviews.GET("/product/:productId", h.ForProduct)
	reviews.GET("/product/:productId/average-rating", h.AverageRating)
	reviews.GET("/product/:productId/summary", h.Summary)
}

// Create submits a review as the authenticated customer
func (h *ReviewHandler) Create(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Product ID and a rating between 1 and 5 are required")
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), domainreview.CreateData{
		ProductID:  req.ProductID,
		CustomerID: user.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// Mine lists the authenticated customer's reviews
func (h *ReviewHandler) Mine(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, limit := listParams(c)
	reviews, err := h.reviews.UserReviews(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reviews.Data, reviews.Total, reviews.Page, reviews.Limit)
}

// Eligibility reports whether the authenticated customer can review a product
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, err := queryID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	eligibility, err := h.reviews.Eligibility(c.Request.Context(), user.ID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, eligibility)
}

// Update patches a review
func (h *ReviewHandler) Update(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Product ID and a rating between 1 and 5 are required")
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), id, domainreview.CreateData{
		ProductID:  req.ProductID,
		CustomerID: user.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Remove deletes a review
func (h *ReviewHandler) Remove(c *gin.Context) {
	if _, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c)); !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID")
		return
	}

	if err := h.reviews.Remove(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ForProduct lists reviews for a product
func (h *ReviewHandler) ForProduct(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	page, limit := listParams(c)
	reviews, err := h.reviews.ProductReviews(c.Request.Context(), productID, page, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reviews.Data, reviews.Total, reviews.Page, reviews.Limit)
}

// AverageRating returns a product's average rating
func (h *ReviewHandler) AverageRating(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	rating, err := h.reviews.AverageRating(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rating)
}

// Summary returns a product's review summary
func (h *ReviewHandler) Summary(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	summary, err := h.reviews.Summary(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
