package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/SscSPs/finance_bot/internal/middleware"
	"github.com/SscSPs/finance_bot/internal/platform/config"
)

// RegisterRoutes sets up all application routes.
// Webhook routes are only mounted when the bot runs in webhook mode.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	processor UpdateProcessor,
	rateLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if !cfg.UsesWebhook() {
		return
	}

	hooks := r.Group("")
	if rateLimiter != nil {
		hooks.Use(middleware.RateLimit(rateLimiter))
	}
	registerWebhookRoutes(hooks, processor, cfg.WebhookSecret)
}
