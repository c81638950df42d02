package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

var (
	ErrMissingToken       = errors.New("BOT_TOKEN (or TELEGRAM_BOT_TOKEN) is not set")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrHTTPDatabaseURL    = errors.New("DATABASE_URL must be a postgres connection string, not an http(s) url")
)

type Config struct {
	AppPort     string
	DatabaseURL string
	BotToken    string
	BotMode     string

	// AllowedUserIDs restricts the bot to these Telegram users. Empty means everyone.
	AllowedUserIDs    []int64
	WebhookSecret     string
	WebhookBackground bool

	LogLevel string
	LogJSON  bool

	DBPoolMin int32
	DBPoolMax int32

	FlowTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UserRateLimit     int
	UserRateWindow    time.Duration
	WebhookRateLimit  int
	WebhookRateWindow time.Duration
}

// Load reads the configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := firstEnv("BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}

	dbURL, err := normalizeDatabaseURL(os.Getenv("DATABASE_URL"))
	if err != nil {
		return nil, err
	}

	allowed, err := parseIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, err
	}

	mode := strings.ToLower(envOr("BOT_MODE", ModePolling))
	if mode != ModePolling && mode != ModeWebhook {
		return nil, fmt.Errorf("BOT_MODE must be %q or %q, got %q", ModePolling, ModeWebhook, mode)
	}

	poolMin := int32(positiveInt("DB_POOL_MIN_SIZE", 1))
	poolMax := int32(positiveInt("DB_POOL_MAX_SIZE", 5))
	if poolMax < poolMin {
		poolMax = poolMin
	}

	return &Config{
		AppPort:           envOr("APP_PORT", "8080"),
		DatabaseURL:       dbURL,
		BotToken:          token,
		BotMode:           mode,
		AllowedUserIDs:    allowed,
		WebhookSecret:     strings.TrimSpace(os.Getenv("TELEGRAM_WEBHOOK_SECRET_TOKEN")),
		WebhookBackground: envBool("WEBHOOK_BACKGROUND"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogJSON:           envBool("LOG_JSON"),
		DBPoolMin:         poolMin,
		DBPoolMax:         poolMax,
		FlowTTL:           time.Duration(positiveInt("FLOW_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           nonNegativeInt("REDIS_DB", 0),
		UserRateLimit:     positiveInt("USER_RATE_LIMIT", 30),
		UserRateWindow:    time.Duration(positiveInt("USER_RATE_WINDOW_SECONDS", 60)) * time.Second,
		WebhookRateLimit:  positiveInt("WEBHOOK_RATE_LIMIT", 120),
		WebhookRateWindow: time.Duration(positiveInt("WEBHOOK_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}, nil
}

// IsAllowed reports whether userID may use the bot.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func normalizeDatabaseURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", ErrMissingDatabaseURL
	}
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return "", ErrHTTPDatabaseURL
	}
	if strings.HasPrefix(u, "postgres://") {
		u = "postgresql://" + strings.TrimPrefix(u, "postgres://")
	}
	return u, nil
}

// parseIDs reads a comma separated id list. Blank entries are skipped.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
