package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expenses_bot/internal/http/handlers"
	"expenses_bot/internal/http/middleware"
	"expenses_bot/internal/ratelimit"
)

const DefaultWebhookPath = "/telegram/webhook"

// RouteDeps carries what the HTTP surface needs. Webhook is nil in polling mode and
// Cache is nil when Redis is not configured.
type RouteDeps struct {
	DB             handlers.Pinger
	Cache          handlers.Pinger
	Version        string
	Mode           string
	Webhook        *handlers.WebhookHandler
	WebhookPath    string
	WebhookLimiter ratelimit.Limiter
}

func RegisterRoutes(r *gin.Engine, deps RouteDeps) {
	r.Use(middleware.Metrics())

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache, deps.Version, deps.Mode)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.Webhook == nil {
		return
	}

	path := deps.WebhookPath
	if path == "" {
		path = DefaultWebhookPath
	}
	limiter := deps.WebhookLimiter
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	r.POST(path, middleware.RateLimit(limiter), deps.Webhook.Handle)
}
