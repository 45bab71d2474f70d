package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SscSPs/finance_bot/internal/middleware"
)

// WebhookClient is the subset of *tgbotapi.BotAPI used to manage the webhook.
type WebhookClient interface {
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// EnsureWebhook points the bot's webhook at url, replacing a different one.
// It does nothing when url is already registered.
func EnsureWebhook(ctx context.Context, client WebhookClient, url string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	info, err := client.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	if info.URL == url {
		logger.Info("Webhook already registered")
		return nil
	}

	if _, err := client.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := client.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	// The URL carries the secret, so only the host is logged.
	logger.Info("Webhook registered", slog.String("host", wh.URL.Host))
	return nil
}

// PollingClient is the subset of *tgbotapi.BotAPI used for long polling.
type PollingClient interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll receives updates by long polling until ctx is done.
// Any registered webhook is removed first, as Telegram refuses getUpdates otherwise.
func (b *Bot) Poll(ctx context.Context, client PollingClient, timeoutSeconds int) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := client.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook before polling: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeoutSeconds
	updates := client.GetUpdatesChan(cfg)
	logger.Info("Polling for updates", slog.Int("timeout_seconds", timeoutSeconds))

	for {
		select {
		case <-ctx.Done():
			client.StopReceivingUpdates()
			logger.Info("Stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.ProcessUpdate(ctx, update)
		}
	}
}
