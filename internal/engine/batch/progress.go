package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress tracks per-item progress of a batched run.
type Progress struct {
	// TotalItems is the total number of items to process.
	TotalItems int

	// ProcessedItems is the number of items processed so far.
	ProcessedItems int

	// TotalBatches is the total number of batches.
	TotalBatches int

	// CurrentBatch is the 0-based index of the batch being processed.
	CurrentBatch int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	now func() time.Time
	mu  sync.RWMutex
}

// NewProgressWithClock creates a progress tracker driven by the given clock.
func NewProgressWithClock(totalItems, totalBatches int, now func() time.Time) *Progress {
	start := now()
	return &Progress{
		TotalItems:     totalItems,
		TotalBatches:   totalBatches,
		StartTime:      start,
		LastUpdateTime: start,
		now:            now,
	}
}

// AddProcessed records n more processed items.
func (p *Progress) AddProcessed(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedItems += n
	p.LastUpdateTime = p.now()
}

// SetBatch records which batch is being processed.
func (p *Progress) SetBatch(batchIndex int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.CurrentBatch = batchIndex
}

// ElapsedTime returns the time elapsed since processing started.
func (p *Progress) ElapsedTime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.now().Sub(p.StartTime)
}

// Snapshot returns a consistent copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := p.now().Sub(p.StartTime)
	return ProgressSnapshot{
		TotalItems:      p.TotalItems,
		ProcessedItems:  p.ProcessedItems,
		TotalBatches:    p.TotalBatches,
		CurrentBatch:    p.CurrentBatch,
		StartTime:       p.StartTime,
		LastUpdateTime:  p.LastUpdateTime,
		PercentComplete: p.percentCompleteUnsafe(),
		ElapsedTime:     elapsed,
		EstimatedLeft:   p.etaUnsafe(elapsed),
		ItemsPerSecond:  p.itemsPerSecondUnsafe(elapsed),
	}
}

// ProgressSnapshot is an immutable view of progress state.
type ProgressSnapshot struct {
	TotalItems      int
	ProcessedItems  int
	TotalBatches    int
	CurrentBatch    int
	StartTime       time.Time
	LastUpdateTime  time.Time
	PercentComplete float64
	ElapsedTime     time.Duration
	EstimatedLeft   time.Duration
	ItemsPerSecond  float64
}

// Must be called with p.mu held.
func (p *Progress) percentCompleteUnsafe() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	return (float64(p.ProcessedItems) / float64(p.TotalItems)) * percentMultiplier
}

// Must be called with p.mu held.
func (p *Progress) etaUnsafe(elapsed time.Duration) time.Duration {
	if p.ProcessedItems == 0 || p.ProcessedItems >= p.TotalItems {
		return 0
	}
	avg := elapsed / time.Duration(p.ProcessedItems)
	return avg * time.Duration(p.TotalItems-p.ProcessedItems)
}

// Must be called with p.mu held.
func (p *Progress) itemsPerSecondUnsafe(elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(p.ProcessedItems) / secs
}
