package public

import (
	"context"
	"time"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/models"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// GetHealth 健康检查
func (h *Handler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	database := "disabled"
	if models.DB != nil {
		database = "ok"
		if sqlDB, err := models.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			database = "down"
			status = "degraded"
		}
	}
	redisState := "disabled"
	if cache.Enabled() {
		redisState = "ok"
		if err := cache.Ping(ctx); err != nil {
			redisState = "down"
			status = "degraded"
		}
	}
	cartDriver := ""
	if h.CartStore != nil {
		cartDriver = h.CartStore.Driver()
	}

	response.Success(c, gin.H{
		"status":        status,
		"database":      database,
		"redis":         redisState,
		"cart_driver":   cartDriver,
		"queue_enabled": h.QueueClient.Enabled(),
	})
}
