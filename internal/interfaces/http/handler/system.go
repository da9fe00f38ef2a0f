package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erp/storefront/internal/infrastructure/logger"
	"github.com/erp/storefront/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// SystemHandler handles health and info endpoints
type SystemHandler struct {
	BaseHandler
	appName string
	env     string
	store   storage.Store
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(appName, env string, store storage.Store) *SystemHandler {
	return &SystemHandler{
		appName: appName,
		env:     env,
		store:   store,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", h.Ping)
}

// Ping responds with pong
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health verifies the client-state store with a write/read probe.
// Registered at the engine root, outside the versioned API group.
func (h *SystemHandler) Health(c *gin.Context) {
	reqLog := logger.FromGinContext(c)
	ctx := c.Request.Context()

	const probeKey = "health:probe"
	if err := h.store.Set(ctx, probeKey, "ok", time.Minute); err != nil {
		reqLog.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"app":     h.appName,
			"env":     h.env,
			"time":    time.Now().Format(time.RFC3339),
			"storage": "error",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"app":     h.appName,
		"env":     h.env,
		"time":    time.Now().Format(time.RFC3339),
		"storage": "ok",
	})
}
