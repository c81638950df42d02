package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process token bucket per key, used when Redis is not configured.
type LocalLimiter struct {
	scope string
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewLocalLimiter allows max events per window per key, refilling evenly.
func NewLocalLimiter(scope string, max int, window time.Duration) *LocalLimiter {
	if max <= 0 {
		max = 1
	}
	return &LocalLimiter{
		scope:   scope,
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (l *LocalLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	return b
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	if !l.bucket(key).Allow() {
		Blocked.WithLabelValues(l.scope).Inc()
		return false, nil
	}
	Requests.WithLabelValues(l.scope).Inc()
	return true, nil
}
