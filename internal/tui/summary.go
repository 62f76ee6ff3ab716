package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/urlindex/internal/engine"
	"github.com/rshade/urlindex/internal/submit"
)

const (
	summaryBoxWidth = 60
	ruleWidth       = 60
	// maxListedFailures caps the failure list printed under the counts.
	maxListedFailures = 10
)

// RenderSummary writes the end-of-run summary to w: a bordered box on a
// terminal, plain text otherwise.
func RenderSummary(w io.Writer, s *engine.Summary) error {
	if s == nil {
		return nil
	}
	if IsWriterTerminal(w) {
		return renderStyledSummary(w, s)
	}
	return renderPlainSummary(w, s)
}

func summaryTitle(s *engine.Summary) string {
	switch {
	case s.Interrupted:
		return "INDEXING INTERRUPTED"
	case s.AuthAborted:
		return "INDEXING STOPPED"
	default:
		return "INDEXING COMPLETE"
	}
}

type summaryRow struct {
	label string
	value string
}

func summaryRows(s *engine.Summary) []summaryRow {
	p := message.NewPrinter(language.English)
	rows := []summaryRow{
		{"Total URLs processed", p.Sprintf("%d", s.Total)},
		{"Successful", p.Sprintf("%d", s.Succeeded)},
		{"Failed", p.Sprintf("%d", s.Failed)},
	}
	if s.Skipped > 0 {
		rows = append(rows, summaryRow{"Skipped rows", p.Sprintf("%d", s.Skipped)})
	}
	if remaining := s.Remaining(); remaining > 0 {
		rows = append(rows, summaryRow{"Not attempted", p.Sprintf("%d", remaining)})
	}
	rows = append(rows,
		summaryRow{"Batches", p.Sprintf("%d", s.Batches)},
		summaryRow{"Elapsed", FormatDuration(s.Elapsed)},
	)
	if s.ItemsPerSecond > 0 {
		rows = append(rows, summaryRow{"Rate", p.Sprintf("%.2f URLs/s", s.ItemsPerSecond)})
	}
	return rows
}

// failureKinds returns the failure kinds in a stable order.
func failureKinds(s *engine.Summary) []submit.ErrorKind {
	kinds := make([]submit.ErrorKind, 0, len(s.FailuresByKind))
	for k := range s.FailuresByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func renderPlainSummary(w io.Writer, s *engine.Summary) error {
	var sb strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(summaryTitle(s) + "\n")
	sb.WriteString(rule + "\n")
	for _, row := range summaryRows(s) {
		fmt.Fprintf(&sb, "%s: %s\n", row.label, row.value)
	}
	for _, k := range failureKinds(s) {
		fmt.Fprintf(&sb, "  %s: %d\n", k, s.FailuresByKind[k])
	}
	writeFailures(&sb, s, func(line string) string { return line })
	sb.WriteString(rule + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderStyledSummary(w io.Writer, s *engine.Summary) error {
	titleColor := ColorOK
	if s.Interrupted || s.AuthAborted || s.Failed > 0 {
		titleColor = ColorWaiting
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	labelStyle := lipgloss.NewStyle().Foreground(ColorLabel)
	valueStyle := lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(summaryBoxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render(summaryTitle(s)))
	content.WriteString("\n\n")
	for _, row := range summaryRows(s) {
		content.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", row.label+":")))
		content.WriteString(valueStyle.Render(row.value))
		content.WriteString("\n")
	}
	for _, k := range failureKinds(s) {
		content.WriteString(mutedStyle.Render(fmt.Sprintf("  %s: %d", k, s.FailuresByKind[k])))
		content.WriteString("\n")
	}
	writeFailures(&content, s, func(line string) string { return mutedStyle.Render(line) })

	_, err := fmt.Fprintln(w, "\n"+boxStyle.Render(strings.TrimRight(content.String(), "\n")))
	return err
}

func writeFailures(sb *strings.Builder, s *engine.Summary, style func(string) string) {
	if len(s.Failures) == 0 {
		return
	}
	sb.WriteString("\nFailures:\n")
	for i, f := range s.Failures {
		if i == maxListedFailures {
			sb.WriteString(style(fmt.Sprintf("  ... and %d more", len(s.Failures)-maxListedFailures)))
			sb.WriteString("\n")
			break
		}
		sb.WriteString(style(fmt.Sprintf("  line %d: %s (%s)", f.Record.Line, f.Record.URL, f.Message)))
		sb.WriteString("\n")
	}
}
