package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"expenses_bot/internal/bot"
	"expenses_bot/internal/config"
	"expenses_bot/internal/db"
	httpServer "expenses_bot/internal/http"
	"expenses_bot/internal/http/handlers"
	"expenses_bot/internal/logger"
	"expenses_bot/internal/ratelimit"
	"expenses_bot/internal/repository"
	"expenses_bot/internal/service"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL, cfg.DBPoolMin, cfg.DBPoolMax)
	defer dbPool.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := db.Migrate(migrateCtx, dbPool); err != nil {
		cancelMigrate()
		logger.Fatal("failed to apply schema", "error", err)
	}
	cancelMigrate()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = ratelimit.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process rate limits", "error", err)
		} else {
			defer redisClient.Close()
		}
	}

	api, err := bot.NewAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("failed to authorize bot", "error", err)
	}
	sender := bot.NewSender(api)

	ledger := service.NewLedgerService(
		repository.NewTransactionRepository(dbPool),
		service.NewFlowService(repository.NewFlowRepository(dbPool), cfg.FlowTTL),
		service.NewSummaryService(repository.NewSummaryRepository(dbPool)),
		service.NewAuditService(repository.NewAuditRepository(dbPool)),
		sender,
	)

	b := bot.New(api, sender, ledger, bot.Options{
		Allowed: cfg.IsAllowed,
		Limiter: newLimiter(redisClient, "user", cfg.UserRateLimit, cfg.UserRateWindow),
	})
	if err := b.RegisterCommands(); err != nil {
		logger.Warn("failed to register bot commands", "error", err)
	}

	deps := httpServer.RouteDeps{DB: dbPool, Version: version, Mode: cfg.BotMode}
	if redisClient != nil {
		deps.Cache = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if cfg.BotMode == config.ModeWebhook {
		deps.Webhook = handlers.NewWebhookHandler(b, cfg.WebhookSecret, cfg.WebhookBackground)
		deps.WebhookLimiter = newLimiter(redisClient, "webhook", cfg.WebhookRateLimit, cfg.WebhookRateWindow)
	} else {
		go b.Start()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "mode", cfg.BotMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	b.Stop()

	logger.Info("server exited")
}

// newLimiter prefers the shared Redis counter and falls back to a per-process bucket.
func newLimiter(client *redis.Client, scope string, max int, window time.Duration) ratelimit.Limiter {
	if client == nil {
		return ratelimit.NewLocalLimiter(scope, max, window)
	}
	return ratelimit.NewRedisLimiter(client, scope, max, window)
}
