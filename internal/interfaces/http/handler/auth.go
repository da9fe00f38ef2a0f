package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartapp "github.com/erp/storefront/internal/application/cart"
	identityapp "github.com/erp/storefront/internal/application/identity"
	domainidentity "github.com/erp/storefront/internal/domain/identity"
	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication and profile endpoints
type AuthHandler struct {
	BaseHandler
	identity *identityapp.Service
	cart     *cartapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identity *identityapp.Service, cart *cartapp.Service) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		cart:     cart,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest represents a profile update. Only the provided
// fields are sent upstream.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	ProfilePicture *string `json:"profilePicture"`
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/register", h.Register)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
	auth.GET("/profile", h.Profile)
	auth.PUT("/profile", h.UpdateProfile)
}

// Login authenticates the client and folds its guest cart into the
// customer's persisted cart. A merge failure never fails the login: the
// guest cart stays intact for a later retry.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Email and password are required")
		return
	}

	ctx := c.Request.Context()
	clientKey := middleware.GetClientKey(c)

	auth, err := h.identity.Login(ctx, clientKey, domainidentity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	mergedCart, mergeErr := h.cart.MergeLocalIntoPersisted(ctx, clientKey, auth.User.ID)
	if mergeErr != nil {
		logger.FromGinContext(c).Warn("Cart merge after login failed",
			zap.Int64("customer_id", auth.User.ID),
			zap.Error(mergeErr),
		)
	}

	h.Success(c, gin.H{
		"auth": auth,
		"cart": mergedCart,
	})
}

// Register creates a new customer account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Name, email and a password of at least 6 characters are required")
		return
	}

	auth, err := h.identity.Register(c.Request.Context(), domainidentity.RegisterData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, auth)
}

// Logout discards the client's stored credentials
func (h *AuthHandler) Logout(c *gin.Context) {
	h.identity.Logout(c.Request.Context(), middleware.GetClientKey(c))
	h.NoContent(c)
}

// Me returns the cached authenticated user without an upstream call
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request.Context(), middleware.GetClientKey(c))
	if !ok {
		h.Unauthorized(c, "Not authenticated")
		return
	}
	h.Success(c, user)
}

// Profile fetches the authenticated user's profile from upstream
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.identity.Profile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	data := map[string]any{}
	if req.Name != nil {
		data["name"] = *req.Name
	}
	if req.Email != nil {
		data["email"] = *req.Email
	}
	if req.ProfilePicture != nil {
		data["profilePicture"] = *req.ProfilePicture
	}
	if len(data) == 0 {
		h.BadRequest(c, "No fields to update")
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
