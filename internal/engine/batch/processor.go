package batch

import (
	"context"
	"errors"
	"fmt"
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be greater than zero")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback processes one batch. batchIndex is 0-based.
type Callback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// BetweenFunc runs after batch `completed` finishes and before the next starts.
// It is never called after the final batch.
type BetweenFunc func(ctx context.Context, completed, total int) error

// Partition splits items into consecutive groups of at most size items,
// preserving order. The returned batches share items' backing array.
func Partition[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, size)
	}

	batches := make([][]T, 0, countBatches(len(items), size))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches, nil
}

// Processor runs a callback over fixed-size batches, one batch at a time.
type Processor[T any] struct {
	batchSize int
	between   BetweenFunc
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// WithBetween sets the hook run between consecutive batches.
func (p *Processor[T]) WithBetween(fn BetweenFunc) *Processor[T] {
	p.between = fn
	return p
}

// TotalBatches returns how many batches totalItems items produce.
func (p *Processor[T]) TotalBatches(totalItems int) int {
	return countBatches(totalItems, p.batchSize)
}

// CalculateBatches returns the [start, end) boundaries of each batch.
func (p *Processor[T]) CalculateBatches(totalItems int) [][2]int {
	totalBatches := p.TotalBatches(totalItems)
	bounds := make([][2]int, totalBatches)
	for i := range totalBatches {
		start := i * p.batchSize
		bounds[i] = [2]int{start, min(start+p.batchSize, totalItems)}
	}
	return bounds
}

// Process runs callback over each batch in order, calling the between hook
// after every batch except the last. It stops at the first error from the
// callback or the hook, or when ctx is cancelled. Empty input is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback Callback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	batches, err := Partition(items, p.batchSize)
	if err != nil {
		return err
	}

	for batchIndex, b := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := callback(ctx, b, batchIndex); err != nil {
			return fmt.Errorf("batch %d failed: %w", batchIndex, err)
		}

		if batchIndex == len(batches)-1 || p.between == nil {
			continue
		}
		if err := p.between(ctx, batchIndex, len(batches)); err != nil {
			return err
		}
	}

	return nil
}

func countBatches(totalItems, batchSize int) int {
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + batchSize - 1) / batchSize
}
