package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/finance_bot/internal/bot"
	"github.com/SscSPs/finance_bot/internal/core/commands"
	"github.com/SscSPs/finance_bot/internal/core/services"
	"github.com/SscSPs/finance_bot/internal/events"
	amqpevents "github.com/SscSPs/finance_bot/internal/events/amqp"
	kafkaevents "github.com/SscSPs/finance_bot/internal/events/kafka"
	"github.com/SscSPs/finance_bot/internal/handlers"
	"github.com/SscSPs/finance_bot/internal/middleware"
	"github.com/SscSPs/finance_bot/internal/platform/config"
	"github.com/SscSPs/finance_bot/internal/repositories"
)

const (
	pollTimeoutSeconds = 60
	shutdownTimeout    = 10 * time.Second
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = middleware.WithLogger(ctx, logger)

	repos, err := repositories.NewRepositoryProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := repos.Close(); cerr != nil {
			logger.Error("Failed to close ledger store", slog.String("error", cerr.Error()))
		}
	}()

	publisher := newEventPublisher(cfg, logger)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("Failed to close event publisher", slog.String("error", cerr.Error()))
		}
	}()

	serviceContainer := services.NewServiceContainer(cfg, loc, repos, publisher)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	logger.Info("Authorized with Telegram", slog.String("bot", api.Self.UserName))

	renderer, err := bot.NewRenderer(cfg.Locale, cfg.CurrencySymbol, cfg.CurrencyPrecision, loc)
	if err != nil {
		return err
	}
	messenger := bot.NewTelegramMessenger(api)
	cleaner := bot.NewCleaner(messenger, logger)
	defer cleaner.Stop()

	dispatcher := bot.NewDispatcher(commands.NewParser(loc), serviceContainer.Ledger, renderer,
		bot.WithPerUserLedger(cfg.PerUserLedger),
		bot.WithSavedReplyDeletion(cfg.ReplyDeleteAfter),
	)
	financeBot := bot.NewBot(dispatcher, messenger, cleaner)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}
	handlers.RegisterRoutes(r, cfg, financeBot, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.UsesWebhook() {
		g.Go(func() error {
			return bot.EnsureWebhook(gctx, api, cfg.WebhookURL())
		})
	} else {
		g.Go(func() error {
			return financeBot.Poll(gctx, api, pollTimeoutSeconds)
		})
	}

	return g.Wait()
}

// newEventPublisher connects the configured event backend. A broker that cannot
// be reached is logged and replaced by a no-op publisher, so recording keeps working.
// Broker publishers run behind an AsyncPublisher so replies never wait on them.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	switch cfg.EventsBackend {
	case config.EventsAMQP:
		p, err := amqpevents.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, continuing without events", slog.String("error", err.Error()))
			return events.NopPublisher{}
		}
		logger.Info("Initialized AMQP publisher", slog.String("exchange", cfg.AMQPExchange))
		return events.NewAsyncPublisher(p, 0, 0)
	case config.EventsKafka:
		logger.Info("Initialized Kafka publisher", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
		return events.NewAsyncPublisher(kafkaevents.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), 0, 0)
	default:
		return events.NopPublisher{}
	}
}
