package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	readinessTimeout = 5 * time.Second
	healthTimeout    = 3 * time.Second
)

// Pinger is satisfied by *pgxpool.Pool and by PingFunc.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger, e.g. a Redis client whose Ping returns a command.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the probes. The database is required; the rate-limit cache is
// optional because limiters fail open without it.
type HealthHandler struct {
	db        Pinger
	cache     Pinger
	startedAt time.Time
	version   string
	mode      string
}

// NewHealthHandler builds the probes. cache may be nil when Redis is not configured.
func NewHealthHandler(db, cache Pinger, version, mode string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     cache,
		startedAt: time.Now(),
		version:   version,
		mode:      mode,
	}
}

type ReadinessResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Mode      string            `json:"mode,omitempty"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports "ready", "degraded" (cache down, still serving) or "unavailable".
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{}
	status, code := "ready", http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "down: " + err.Error()
		status, code = "unavailable", http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	switch {
	case h.cache == nil:
		checks["rate_limit_cache"] = "disabled"
	case h.cache.Ping(ctx) != nil:
		checks["rate_limit_cache"] = "down"
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		checks["rate_limit_cache"] = "up"
	}

	c.JSON(code, ReadinessResponse{
		Status:    status,
		Version:   h.version,
		Mode:      h.mode,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Health only checks that records can be stored.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
