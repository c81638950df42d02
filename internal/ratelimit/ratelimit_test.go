package ratelimit

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLimiter(client, "user", 2, time.Minute)
	key := "rl:user:60:42"
	ctx := context.Background()

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	ok, err := l.Allow(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLimiter(client, "webhook", 1, time.Second)

	mock.ExpectIncr("rl:webhook:1:10.0.0.1").SetErr(errors.New("connection refused"))

	ok, err := l.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalLimiterPerKey(t *testing.T) {
	l := NewLocalLimiter("user", 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys do not share buckets")
}

func TestNopAllows(t *testing.T) {
	ok, err := Nop{}.Allow(context.Background(), "x")
	assert.NoError(t, err)
	assert.True(t, ok)
}

// Runs only if REDIS_ADDR env is set.
func TestRedisLimiterIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client, err := Connect(addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NoError(t, err)
	defer client.Close()

	l := NewRedisLimiter(client, "it-"+strconv.FormatInt(time.Now().UnixNano(), 10), 2, 2*time.Second)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, ok)
}
