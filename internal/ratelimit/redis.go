package ratelimit

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and pings it. Callers fall back to a local limiter on error.
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisLimiter is a fixed-window counter shared by every process using the same Redis.
// Keys look like rl:<scope>:<window_seconds>:<key>.
type RedisLimiter struct {
	client redis.Cmdable
	scope  string
	max    int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, scope string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, scope: scope, max: max, window: window}
}

func (l *RedisLimiter) key(ident string) string {
	return "rl:" + l.scope + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident
}

func (l *RedisLimiter) Allow(ctx context.Context, ident string) (bool, error) {
	key := l.key(ident)

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		Errors.WithLabelValues(l.scope).Inc()
		return true, err
	}
	if val == 1 {
		// first hit opens the window
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			Errors.WithLabelValues(l.scope).Inc()
		}
	}

	if val > int64(l.max) {
		Blocked.WithLabelValues(l.scope).Inc()
		return false, nil
	}
	Requests.WithLabelValues(l.scope).Inc()
	return true, nil
}
