package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rshade/urlindex/internal/engine/batch"
	"github.com/rshade/urlindex/internal/submit"
)

// DefaultBarWidth is the number of cells in the progress bar.
const DefaultBarWidth = 50

const (
	okURLWidth   = 40
	failURLWidth = 30
	ellipsis     = "..."
)

// RenderProgress formats one progress line:
//
//	[=====-----] n/N (p%) | Elapsed: HH:MM:SS | ETA: HH:MM:SS | status
//
// It has no side effects; width <= 0 uses DefaultBarWidth.
func RenderProgress(snap batch.ProgressSnapshot, width int, status string) string {
	return fmt.Sprintf("[%s] %s", Bar(snap, width), progressTail(snap, status))
}

// Bar renders the ASCII bar cells for snap.
func Bar(snap batch.ProgressSnapshot, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	filled := 0
	if snap.TotalItems > 0 {
		filled = min(width*snap.ProcessedItems/snap.TotalItems, width)
	}
	return strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
}

func progressTail(snap batch.ProgressSnapshot, status string) string {
	return fmt.Sprintf("%d/%d (%.1f%%) | Elapsed: %s | ETA: %s | %s",
		snap.ProcessedItems,
		snap.TotalItems,
		snap.PercentComplete,
		FormatDuration(snap.ElapsedTime),
		FormatDuration(snap.EstimatedLeft),
		status,
	)
}

// FormatDuration renders d as HH:MM:SS, truncating sub-second precision.
// Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	secs := max(int(d/time.Second), 0)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// ResultStatus describes a submission result for the progress line.
func ResultStatus(res submit.Result) string {
	if res.Success {
		return "OK - " + truncate(res.Record.URL, okURLWidth)
	}
	return fmt.Sprintf("FAIL (%s) - %s", res.Message, truncate(res.Record.URL, failURLWidth))
}

// WaitingStatus describes the rate-limit countdown.
func WaitingStatus(remaining time.Duration) string {
	secs := int((remaining + time.Second - 1) / time.Second)
	return fmt.Sprintf("Rate limit - waiting %ds", max(secs, 0))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + ellipsis
}
