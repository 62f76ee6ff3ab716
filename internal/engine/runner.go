package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/urlindex/internal/engine/batch"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/internal/logging"
	"github.com/rshade/urlindex/internal/submit"
)

// Runner submits records sequentially in rate-limited batches.
//
// Lifecycle: Idle → Processing(batch i) → Waiting → Processing(batch i+1) → … → Done.
// Waiting only happens between batches, never after the last one. Cancelling the
// context moves the runner to Interrupted from any state.
type Runner struct {
	submitter Submitter
	opts      Options
	waiter    Waiter
	reporter  Reporter
	now       func() time.Time
	onState   func(State)
	state     State
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWaiter replaces the default one-second TickerWaiter.
func WithWaiter(w Waiter) RunnerOption {
	return func(r *Runner) {
		r.waiter = w
	}
}

// WithReporter sets where progress is reported.
func WithReporter(rep Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = rep
	}
}

// WithClock replaces time.Now for elapsed/ETA computation.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithStateHook registers a callback invoked on every state transition.
func WithStateHook(fn func(State)) RunnerOption {
	return func(r *Runner) {
		r.onState = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(s Submitter, opts Options, options ...RunnerOption) (*Runner, error) {
	if s == nil {
		return nil, errors.New("submitter cannot be nil")
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", batch.ErrInvalidBatchSize, opts.BatchSize)
	}
	if opts.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be >= 0, got %s", opts.RateLimit)
	}

	r := &Runner{
		submitter: s,
		opts:      opts,
		waiter:    NewTickerWaiter(),
		reporter:  nopReporter{},
		now:       time.Now,
		state:     StateIdle,
	}
	for _, o := range options {
		o(r)
	}
	return r, nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// RunLoad runs the records of a load result, carrying its skip count into the summary.
func (r *Runner) RunLoad(ctx context.Context, load *ingest.LoadResult) (*Summary, error) {
	summary, err := r.Run(ctx, load.Records)
	if summary != nil {
		summary.Skipped = load.Skipped()
	}
	return summary, err
}

// Run submits every record and returns the summary. A failed submission never
// stops the run. The returned error is ErrInterrupted when ctx is cancelled and
// ErrAuthAborted when StopOnAuthError ends the run; the summary is valid in both cases.
func (r *Runner) Run(ctx context.Context, records []ingest.Record) (*Summary, error) {
	runID := logging.GetOrGenerateRunID(ctx)
	logger := logging.ComponentLogger(logging.FromContext(ctx), "engine")

	proc, err := batch.NewProcessor[ingest.Record](r.opts.BatchSize)
	if err != nil {
		return nil, err
	}

	totalBatches := proc.TotalBatches(len(records))
	progress := batch.NewProgressWithClock(len(records), totalBatches, r.now)
	summary := newSummary(runID, len(records))

	logger.Info().
		Int("records", len(records)).
		Int("batches", totalBatches).
		Int("batch_size", r.opts.BatchSize).
		Dur("rate_limit", r.opts.RateLimit).
		Msg("run started")

	proc.WithBetween(func(ctx context.Context, completed, total int) error {
		r.transition(StateWaiting)
		summary.Waits++
		logger.Info().
			Int("batch", completed+1).
			Int("batches", total).
			Dur("wait", r.opts.RateLimit).
			Msg("batch complete, waiting for rate limit window")
		return r.waiter.Wait(ctx, r.opts.RateLimit, func(remaining time.Duration) {
			r.reporter.Waiting(progress.Snapshot(), remaining)
		})
	})

	bounds := proc.CalculateBatches(len(records))
	err = proc.Process(ctx, records, func(ctx context.Context, items []ingest.Record, batchIndex int) error {
		r.transition(StateProcessing)
		progress.SetBatch(batchIndex)
		summary.Batches++
		logger.Debug().
			Int("batch", batchIndex+1).
			Int("from", bounds[batchIndex][0]+1).
			Int("to", bounds[batchIndex][1]).
			Msg("batch started")
		return r.processBatch(ctx, items, progress, summary, logger)
	})

	r.reporter.Finish()
	final := progress.Snapshot()
	summary.Elapsed = final.ElapsedTime
	summary.ItemsPerSecond = final.ItemsPerSecond

	switch {
	case err == nil:
		r.transition(StateDone)
	case ctx.Err() != nil:
		r.transition(StateInterrupted)
		summary.Interrupted = true
		logger.Warn().Int("processed", summary.Total).Msg("run interrupted")
		return summary, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	case errors.Is(err, ErrAuthAborted):
		r.transition(StateDone)
		summary.AuthAborted = true
		logger.Error().Int("processed", summary.Total).Msg("stopping: authentication token expired")
		return summary, ErrAuthAborted
	default:
		r.transition(StateDone)
		return summary, err
	}

	logger.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", summary.Elapsed).
		Float64("items_per_second", summary.ItemsPerSecond).
		Msg("run complete")

	return summary, nil
}

func (r *Runner) processBatch(
	ctx context.Context,
	items []ingest.Record,
	progress *batch.Progress,
	summary *Summary,
	logger zerolog.Logger,
) error {
	for _, rec := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := r.submitter.Submit(ctx, rec)
		if res.Kind == submit.KindCancelled || ctx.Err() != nil {
			// The in-flight request was aborted; it is neither a success nor a failure.
			return ctx.Err()
		}

		summary.add(res)
		progress.AddProcessed(1)
		r.reporter.Submitted(progress.Snapshot(), res)

		if !res.Success {
			logger.Warn().
				Int("batch", progress.Snapshot().CurrentBatch+1).
				Str("url", rec.URL).
				Int("line", rec.Line).
				Int("status", res.StatusCode).
				Str("kind", string(res.Kind)).
				Msg(res.Message)
		}

		if res.Kind == submit.KindAuthExpired && r.opts.StopOnAuthError {
			return ErrAuthAborted
		}
	}
	return nil
}

func (r *Runner) transition(s State) {
	r.state = s
	if r.onState != nil {
		r.onState(s)
	}
}
