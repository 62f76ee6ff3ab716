package engine

import (
	"time"

	"github.com/rshade/urlindex/internal/submit"
)

// Summary aggregates the outcome of one run. It is never persisted.
type Summary struct {
	RunID string

	// Planned is the number of records handed to the run.
	Planned int
	// Total is the number of submissions attempted.
	Total     int
	Succeeded int
	Failed    int
	// Skipped counts CSV rows dropped by the loader.
	Skipped int

	Batches int
	Waits   int
	Elapsed time.Duration
	// ItemsPerSecond is the submission rate over the whole run, waits included.
	ItemsPerSecond float64

	Interrupted bool
	AuthAborted bool

	Failures       []submit.Result
	FailuresByKind map[submit.ErrorKind]int
}

func newSummary(runID string, planned int) *Summary {
	return &Summary{
		RunID:          runID,
		Planned:        planned,
		FailuresByKind: make(map[submit.ErrorKind]int),
	}
}

func (s *Summary) add(res submit.Result) {
	s.Total++
	if res.Success {
		s.Succeeded++
		return
	}
	s.Failed++
	s.Failures = append(s.Failures, res)
	s.FailuresByKind[res.Kind]++
}

// Remaining returns how many planned records were never attempted.
func (s *Summary) Remaining() int {
	return s.Planned - s.Total
}
