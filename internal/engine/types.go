// Package engine drives a URL indexing run: it submits records batch by batch,
// pauses between batches to respect the backend's rate limit, reports progress
// after every submission and produces the run summary.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rshade/urlindex/internal/engine/batch"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/internal/submit"
)

// Run-ending errors.
var (
	// ErrInterrupted is returned when the context is cancelled mid-run.
	ErrInterrupted = errors.New("run interrupted")
	// ErrAuthAborted is returned when StopOnAuthError ends the run.
	ErrAuthAborted = errors.New("authentication token expired, update the token and restart")
)

// State is a Runner lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateProcessing  State = "processing"
	StateWaiting     State = "waiting"
	StateDone        State = "done"
	StateInterrupted State = "interrupted"
)

// Submitter sends one record to the backend.
type Submitter interface {
	Submit(ctx context.Context, rec ingest.Record) submit.Result
}

// Waiter blocks for d, calling tick with the remaining time as it counts down.
// It returns early only with ctx.Err().
type Waiter interface {
	Wait(ctx context.Context, d time.Duration, tick func(remaining time.Duration)) error
}

// Reporter receives progress updates. Implementations render them; they must
// not block for long since the run is sequential.
type Reporter interface {
	Submitted(snap batch.ProgressSnapshot, res submit.Result)
	Waiting(snap batch.ProgressSnapshot, remaining time.Duration)
	Finish()
}

// Options configures a Runner.
type Options struct {
	BatchSize       int
	RateLimit       time.Duration
	StopOnAuthError bool
}

type nopReporter struct{}

func (nopReporter) Submitted(batch.ProgressSnapshot, submit.Result) {}
func (nopReporter) Waiting(batch.ProgressSnapshot, time.Duration)   {}
func (nopReporter) Finish()                                         {}
