package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterWindow(t *testing.T) {
	l := NewRedisLimiter(nil, 10, 20)
	assert.Equal(t, 2*time.Second, l.Window())

	l = NewRedisLimiter(nil, 0, 0)
	assert.Equal(t, time.Second, l.Window())
}

// Требует живой Redis: REDIS_TEST_URL=redis://localhost:6379/0
func TestRedisLimiterFixedWindow(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	l := NewRedisLimiter(rdb, 1, 2, WithPrefix("test:"+uuid.NewString()), WithRedisClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		dec, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
	}

	clock.Advance(500 * time.Millisecond)
	dec, err := l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 1500*time.Millisecond, dec.RetryAfter)

	clock.Advance(1500 * time.Millisecond)
	dec, err = l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}
