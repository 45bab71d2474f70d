package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SscSPs/finance_bot/internal/middleware"
)

// UpdateProcessor consumes Telegram updates. *bot.Bot implements it.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, update tgbotapi.Update)
}

// webhookHandler receives Telegram updates pushed to /webhook/:secret.
type webhookHandler struct {
	processor UpdateProcessor
	secret    string
}

func newWebhookHandler(processor UpdateProcessor, secret string) *webhookHandler {
	return &webhookHandler{
		processor: processor,
		secret:    secret,
	}
}

// registerWebhookRoutes registers the webhook routes on rg.
func registerWebhookRoutes(rg gin.IRoutes, processor UpdateProcessor, secret string) {
	h := newWebhookHandler(processor, secret)

	rg.GET("/webhook/:secret", h.requireSecret, h.liveness)
	rg.POST("/webhook/:secret", h.requireSecret, h.receiveUpdate)
}

// requireSecret answers 404 unless the path carries the configured secret.
func (h *webhookHandler) requireSecret(c *gin.Context) {
	given := c.Param("secret")
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
		middleware.GetLoggerFromContext(c).Warn("Webhook called with wrong secret")
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Next()
}

func (h *webhookHandler) liveness(c *gin.Context) {
	c.String(http.StatusOK, "Bot is live!")
}

func (h *webhookHandler) receiveUpdate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		logger.Warn("Failed to bind webhook update", slog.String("error", err.Error()))
		c.Status(http.StatusBadRequest)
		return
	}

	// Telegram may drop the connection before the reply is sent; the command
	// still runs to completion.
	ctx := context.WithoutCancel(c.Request.Context())
	h.processor.ProcessUpdate(ctx, update)

	c.Status(http.StatusOK)
}
