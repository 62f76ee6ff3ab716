package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerWaiter_WaitsFullDuration(t *testing.T) {
	w := TickerWaiter{Interval: 10 * time.Millisecond}
	var ticks []time.Duration

	start := time.Now()
	err := w.Wait(context.Background(), 60*time.Millisecond, func(remaining time.Duration) {
		ticks = append(ticks, remaining)
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
	require.NotEmpty(t, ticks)
	assert.Equal(t, 60*time.Millisecond, ticks[0], "first tick reports the full wait")
	for i := 1; i < len(ticks); i++ {
		assert.LessOrEqual(t, ticks[i], ticks[i-1], "countdown never goes up")
	}
}

func TestTickerWaiter_ZeroDuration(t *testing.T) {
	called := false
	err := NewTickerWaiter().Wait(context.Background(), 0, func(time.Duration) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestTickerWaiter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := NewTickerWaiter().Wait(ctx, time.Hour, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
}
