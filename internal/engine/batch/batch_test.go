package batch

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPartition(t *testing.T) {
	t.Run("250 by 100", func(t *testing.T) {
		batches, err := Partition(seq(250), 100)
		require.NoError(t, err)
		require.Len(t, batches, 3)
		assert.Len(t, batches[0], 100)
		assert.Len(t, batches[1], 100)
		assert.Len(t, batches[2], 50)
	})

	t.Run("concatenation reproduces input", func(t *testing.T) {
		for _, length := range []int{0, 1, 7, 99, 100, 101, 250, 1000} {
			for _, size := range []int{1, 3, 10, 100, 5000} {
				items := seq(length)
				batches, err := Partition(items, size)
				require.NoError(t, err)

				joined := slices.Concat(batches...)
				assert.Len(t, joined, length, "L=%d B=%d", length, size)
				assert.True(t, slices.Equal(items, joined), "L=%d B=%d", length, size)
				for i, b := range batches {
					assert.NotEmpty(t, b)
					if i < len(batches)-1 {
						assert.Len(t, b, size, "only the last batch may be short")
					} else {
						assert.LessOrEqual(t, len(b), size)
					}
				}
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		items := seq(37)
		first, err := Partition(items, 8)
		require.NoError(t, err)
		second, err := Partition(items, 8)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("appending to a batch does not clobber the next", func(t *testing.T) {
		items := seq(4)
		batches, err := Partition(items, 2)
		require.NoError(t, err)
		_ = append(batches[0], 99)
		assert.Equal(t, []int{2, 3}, batches[1])
	})

	t.Run("empty input", func(t *testing.T) {
		batches, err := Partition([]int{}, 10)
		require.NoError(t, err)
		assert.Empty(t, batches)
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := Partition(seq(3), 0)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
		_, err = Partition(seq(3), -1)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestProcessor_Process(t *testing.T) {
	items := seq(25)

	t.Run("Sequential", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)

		var seen []int
		var sizes []int
		err = p.Process(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
			seen = append(seen, batch...)
			sizes = append(sizes, len(batch))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, items, seen)
		assert.Equal(t, []int{10, 10, 5}, sizes)
	})

	t.Run("BetweenHookSkipsLastBatch", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		var calls [][2]int
		p.WithBetween(func(_ context.Context, completed, total int) error {
			calls = append(calls, [2]int{completed, total})
			return nil
		})

		err := p.Process(context.Background(), items, func(context.Context, []int, int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, [][2]int{{0, 3}, {1, 3}}, calls)
	})

	t.Run("SingleBatchNoHook", func(t *testing.T) {
		p, _ := NewProcessor[int](100)
		hooked := false
		p.WithBetween(func(context.Context, int, int) error { hooked = true; return nil })

		require.NoError(t, p.Process(context.Background(), items, func(context.Context, []int, int) error { return nil }))
		assert.False(t, hooked)
	})

	t.Run("ErrorHandling", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		err := p.Process(context.Background(), items, func(_ context.Context, _ []int, batchIndex int) error {
			if batchIndex == 1 {
				return errors.New("fail")
			}
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 1 failed")
	})

	t.Run("HookError", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		stop := errors.New("stop")
		p.WithBetween(func(context.Context, int, int) error { return stop })

		batches := 0
		err := p.Process(context.Background(), items, func(context.Context, []int, int) error {
			batches++
			return nil
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, batches)
	})

	t.Run("Cancelled", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		ctx, cancel := context.WithCancel(context.Background())

		batches := 0
		err := p.Process(ctx, items, func(context.Context, []int, int) error {
			batches++
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, batches)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p, _ := NewProcessor[int](100)
		called := false
		err := p.Process(context.Background(), nil, func(context.Context, []int, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("NilCallback", func(t *testing.T) {
		p, _ := NewProcessor[int](100)
		assert.ErrorIs(t, p.Process(context.Background(), items, nil), ErrNilCallback)
	})

	t.Run("InvalidBatchSize", func(t *testing.T) {
		_, err := NewProcessor[int](0)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})
}

func TestProcessor_CalculateBatches(t *testing.T) {
	p, _ := NewProcessor[int](10)
	batches := p.CalculateBatches(25)
	require.Len(t, batches, 3)
	assert.Equal(t, [2]int{0, 10}, batches[0])
	assert.Equal(t, [2]int{10, 20}, batches[1])
	assert.Equal(t, [2]int{20, 25}, batches[2])
	assert.Equal(t, batches, p.CalculateBatches(25))
	assert.Equal(t, 0, p.TotalBatches(0))
	assert.Empty(t, p.CalculateBatches(0))
}

func TestProcessor_ProcessMatchesCalculateBatches(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	p, _ := NewProcessor[int](5)
	bounds := p.CalculateBatches(len(items))

	err := p.Process(context.Background(), items, func(_ context.Context, got []int, batchIndex int) error {
		b := bounds[batchIndex]
		assert.Equal(t, items[b[0]:b[1]], got)
		assert.Equal(t, len(got), cap(got), "batch %d must not expose the next batch", batchIndex)
		return nil
	})
	require.NoError(t, err)
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProgress(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 12, 9, 10, 0, 0, 0, time.UTC)}
	p := NewProgressWithClock(100, 10, clock.Now)

	snap := p.Snapshot()
	assert.Equal(t, 0.0, snap.PercentComplete)
	assert.Zero(t, snap.EstimatedLeft, "no estimate before the first item")
	assert.Zero(t, snap.ItemsPerSecond)

	clock.Advance(20 * time.Second)
	p.AddProcessed(10)
	p.SetBatch(3)
	assert.Equal(t, 20*time.Second, p.ElapsedTime())

	snap = p.Snapshot()
	assert.Equal(t, 100, snap.TotalItems)
	assert.Equal(t, 10, snap.ProcessedItems)
	assert.Equal(t, 10, snap.TotalBatches)
	assert.Equal(t, 3, snap.CurrentBatch)
	assert.Equal(t, 10.0, snap.PercentComplete)
	// 2s per item, 90 left.
	assert.Equal(t, 180*time.Second, snap.EstimatedLeft)
	assert.Equal(t, 20*time.Second, snap.ElapsedTime)
	assert.InDelta(t, 0.5, snap.ItemsPerSecond, 1e-9)
	assert.Equal(t, clock.Now(), snap.LastUpdateTime)

	clock.Advance(10 * time.Second)
	p.AddProcessed(90)
	snap = p.Snapshot()
	assert.Equal(t, 100.0, snap.PercentComplete)
	assert.Zero(t, snap.EstimatedLeft)

	t.Run("EmptyTotal", func(t *testing.T) {
		empty := NewProgressWithClock(0, 0, clock.Now)
		assert.Equal(t, 0.0, empty.Snapshot().PercentComplete)
		assert.Zero(t, empty.Snapshot().EstimatedLeft)
	})
}

// BenchmarkProcess_1000Items benchmarks sequential batch dispatch.
func BenchmarkProcess_1000Items(b *testing.B) {
	ctx := context.Background()
	items := make([]int, 1000)
	for i := range items {
		items[i] = i
	}
	callback := func(context.Context, []int, int) error { return nil }
	p, _ := NewProcessor[int](100)

	for b.Loop() {
		_ = p.Process(ctx, items, callback)
	}
}
