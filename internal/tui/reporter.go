package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/urlindex/internal/engine/batch"
	"github.com/rshade/urlindex/internal/submit"
)

// clearLine erases from the cursor to the end of the line.
const clearLine = "\x1b[K"

// Reporter prints run progress. On a terminal it redraws a single line in place
// using a bubbles progress bar; on any other writer it prints one plain line per
// submission and one per rate-limit wait.
type Reporter struct {
	w       io.Writer
	tty     bool
	width   int
	bar     progress.Model
	waiting bool
	drawn   bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithTTY forces terminal or plain rendering regardless of the writer.
func WithTTY(tty bool) ReporterOption {
	return func(r *Reporter) {
		r.tty = tty
	}
}

// WithBarWidth sets the progress bar width in cells.
func WithBarWidth(width int) ReporterOption {
	return func(r *Reporter) {
		if width > 0 {
			r.width = width
		}
	}
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		w:     w,
		tty:   IsWriterTerminal(w),
		width: DefaultBarWidth,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(r.width),
		progress.WithoutPercentage(),
	)
	return r
}

// Submitted reports a finished submission.
func (r *Reporter) Submitted(snap batch.ProgressSnapshot, res submit.Result) {
	r.waiting = false
	status := ResultStatus(res)
	if !r.tty {
		fmt.Fprintln(r.w, RenderProgress(snap, r.width, status))
		return
	}

	color := ColorOK
	if !res.Success {
		color = ColorFail
	}
	r.redraw(snap, lipgloss.NewStyle().Foreground(color).Render(status))
}

// Waiting reports the rate-limit countdown.
func (r *Reporter) Waiting(snap batch.ProgressSnapshot, remaining time.Duration) {
	status := WaitingStatus(remaining)
	if !r.tty {
		if !r.waiting {
			fmt.Fprintln(r.w, RenderProgress(snap, r.width, status))
		}
		r.waiting = true
		return
	}

	if !r.waiting && r.drawn {
		// Keep the last submission line visible above the countdown.
		fmt.Fprintln(r.w)
	}
	r.waiting = true
	r.redraw(snap, lipgloss.NewStyle().Foreground(ColorWaiting).Render(status))
}

// Finish terminates the in-place line.
func (r *Reporter) Finish() {
	if r.tty && r.drawn {
		fmt.Fprintln(r.w)
	}
	r.drawn = false
	r.waiting = false
}

func (r *Reporter) redraw(snap batch.ProgressSnapshot, status string) {
	fmt.Fprintf(r.w, "\r%s %s%s", r.bar.ViewAs(snap.PercentComplete/100), progressTail(snap, status), clearLine)
	r.drawn = true
}
