package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter fixed-window лимитер, общий для нескольких инстансов.
// Окно длиной burst/rps секунд вмещает burst запросов, что в среднем даёт rps.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisLimiter)

func WithPrefix(prefix string) RedisOption {
	return func(l *RedisLimiter) { l.prefix = strings.Trim(prefix, ":") }
}

func WithRedisClock(now func() time.Time) RedisOption {
	return func(l *RedisLimiter) { l.now = now }
}

func NewRedisLimiter(rdb redis.Cmdable, rps float64, burst int, opts ...RedisOption) *RedisLimiter {
	if burst < 1 {
		burst = 1
	}
	window := time.Second
	if rps > 0 {
		window = time.Duration(math.Ceil(float64(burst) / rps * float64(time.Second)))
	}

	l := &RedisLimiter{
		rdb:    rdb,
		prefix: "slotswap:ratelimit",
		limit:  int64(burst),
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLimiter) Window() time.Duration { return l.window }

// Allow реализует Limiter: INCR + PEXPIRE счётчика текущего окна одним round-trip
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	redisKey := l.prefix + ":" + key + ":" + strconv.FormatInt(windowStart.UnixMilli(), 10)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}

	if incr.Val() > l.limit {
		return Decision{Allowed: false, RetryAfter: windowStart.Add(l.window).Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}
