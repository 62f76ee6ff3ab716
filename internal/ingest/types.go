package ingest

import (
	"errors"
	"iter"
)

// Sentinel errors for setup failures. These abort a run before any submission.
var (
	ErrFileNotFound     = errors.New("csv file not found")
	ErrMissingHeader    = errors.New("csv file has no header row")
	ErrMissingURLColumn = errors.New("csv header has no URL column")
)

// SkipReason classifies a row that did not produce a Record.
type SkipReason string

const (
	SkipParseError SkipReason = "parse_error"
	SkipMissingURL SkipReason = "missing_url"
	SkipInvalidURL SkipReason = "invalid_url"
)

// Record is one URL to index, parsed from a CSV data row.
type Record struct {
	Title string
	URL   string
	Date  string
	// Line is the 1-based line in the source file where the row starts.
	Line int
}

// SkippedRow describes a data row that was dropped.
type SkippedRow struct {
	Line   int
	Reason SkipReason
	Detail string
}

// LoadResult is the outcome of loading one CSV source.
type LoadResult struct {
	Records     []Record
	SkippedRows []SkippedRow
	// Truncated is true when loading stopped because the record limit was reached.
	Truncated bool
}

// Len returns the number of valid records.
func (r *LoadResult) Len() int {
	return len(r.Records)
}

// Skipped returns the number of dropped data rows.
func (r *LoadResult) Skipped() int {
	return len(r.SkippedRows)
}

// SkippedBy returns the number of dropped rows per reason.
func (r *LoadResult) SkippedBy() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.SkippedRows {
		counts[s.Reason]++
	}
	return counts
}

// All iterates the records in file order. It can be ranged over any number of times.
func (r *LoadResult) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, rec := range r.Records {
			if !yield(i, rec) {
				return
			}
		}
	}
}
