package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLocalStoreBurstThenDeny(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := NewLocalStore(1, 3, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dec, err := s.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, dec.Allowed, "request %d", i)
	}

	dec, err := s.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, time.Second, dec.RetryAfter)

	// другой ключ не затронут
	dec, err = s.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	clock.Advance(time.Second)
	dec, err = s.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestLocalStoreDenialDoesNotConsumeToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := NewLocalStore(1, 1, WithClock(clock.Now))
	ctx := context.Background()

	dec, _ := s.Allow(ctx, "k")
	require.True(t, dec.Allowed)
	for i := 0; i < 5; i++ {
		dec, _ = s.Allow(ctx, "k")
		require.False(t, dec.Allowed)
	}

	clock.Advance(time.Second)
	dec, _ = s.Allow(ctx, "k")
	assert.True(t, dec.Allowed)
}

func TestLocalStoreCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
	s := NewLocalStore(10, 10, WithClock(clock.Now), WithIdleTTL(time.Minute))
	ctx := context.Background()

	_, _ = s.Allow(ctx, "old")
	clock.Advance(2 * time.Minute)
	_, _ = s.Allow(ctx, "fresh")
	require.Equal(t, 2, s.Len())

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
}

func TestUnlimited(t *testing.T) {
	dec, err := Unlimited{}.Allow(context.Background(), "any")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}
