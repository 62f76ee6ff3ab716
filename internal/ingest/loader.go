package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// utf8BOM is stripped from the start of the input when present.
const utf8BOM = "\ufeff"

// Loader reads Records from CSV input.
type Loader struct {
	limit  int
	logger zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLimit stops loading after n valid records. n <= 0 means no limit.
func WithLimit(n int) Option {
	return func(l *Loader) {
		l.limit = n
	}
}

// WithLogger sets the logger used to report skipped rows.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger.With().Str("component", "ingest").Logger()
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all records from the CSV file at path.
func (l *Loader) Load(ctx context.Context, path string) (*LoadResult, error) {
	//nolint:gosec // Path is supplied by the operator.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := l.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return result, nil
}

// Read reads all records from r. The first row must be the header.
func (l *Loader) Read(ctx context.Context, r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	header = unwrapRow(header)
	cols := resolveColumns(header)
	if cols.url < 0 {
		return nil, fmt.Errorf("%w: got %q", ErrMissingURLColumn, header)
	}

	result := &LoadResult{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("reading csv: %w", err)
			}
			l.skip(result, SkippedRow{Line: pe.StartLine, Reason: SkipParseError, Detail: pe.Err.Error()})
			continue
		}

		line, _ := reader.FieldPos(0)
		if len(row) == 1 && cols.width > 1 {
			row = cols.unwrap(row[0])
		}
		rec, skipped := cols.record(row, line)
		if skipped != nil {
			l.skip(result, *skipped)
			continue
		}
		if l.limit > 0 && len(result.Records) >= l.limit {
			result.Truncated = true
			break
		}
		result.Records = append(result.Records, rec)
	}

	ev := l.logger.Info().
		Int("records", result.Len()).
		Int("skipped", result.Skipped())
	for reason, n := range result.SkippedBy() {
		ev = ev.Int(string(reason), n)
	}
	ev.Bool("truncated", result.Truncated).Msg("csv loaded")

	return result, nil
}

// Count returns the number of valid and skipped rows in the CSV file at path.
func Count(ctx context.Context, path string, opts ...Option) (valid, skipped int, err error) {
	result, err := NewLoader(opts...).Load(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	return result.Len(), result.Skipped(), nil
}

func (l *Loader) skip(result *LoadResult, row SkippedRow) {
	result.SkippedRows = append(result.SkippedRows, row)
	l.logger.Debug().
		Int("line", row.Line).
		Str("reason", string(row.Reason)).
		Str("detail", row.Detail).
		Msg("row skipped")
}

// columns holds the header positions of the known fields; -1 means absent.
type columns struct {
	title int
	url   int
	date  int
	width int
}

func resolveColumns(header []string) columns {
	cols := columns{title: -1, url: -1, date: -1, width: len(header)}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			cols.title = i
		case "url":
			cols.url = i
		case "date":
			cols.date = i
		}
	}
	return cols
}

func (c columns) record(row []string, line int) (Record, *SkippedRow) {
	raw := field(row, c.url)
	if raw == "" {
		return Record{}, &SkippedRow{Line: line, Reason: SkipMissingURL}
	}
	if err := validateURL(raw); err != nil {
		return Record{}, &SkippedRow{Line: line, Reason: SkipInvalidURL, Detail: err.Error()}
	}
	return Record{
		Title: field(row, c.title),
		URL:   raw,
		Date:  field(row, c.date),
		Line:  line,
	}, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// unwrapRow re-parses a row that was exported as one quoted cell holding the
// whole CSV line. Rows that do not look wrapped are returned unchanged.
func unwrapRow(row []string) []string {
	if len(row) != 1 || !strings.Contains(row[0], ",") {
		return row
	}
	inner := csv.NewReader(strings.NewReader(row[0]))
	inner.FieldsPerRecord = -1
	fields, err := inner.Read()
	if err != nil || len(fields) < 2 {
		return row
	}
	return fields
}

// unwrap re-parses a data row exported as one quoted cell. When the inner line
// does not line up with the header, typically because the title holds a comma or
// a stray quote, the URL is located directly and everything before it becomes
// the title.
func (c columns) unwrap(cell string) []string {
	if fields, err := parseLine(cell); err == nil && len(fields) == c.width {
		return fields
	}
	title, link, date, ok := splitAroundURL(cell)
	if !ok {
		return []string{cell}
	}
	row := make([]string, c.width)
	for _, f := range []struct {
		idx   int
		value string
	}{{c.title, title}, {c.url, link}, {c.date, date}} {
		if f.idx >= 0 {
			row[f.idx] = f.value
		}
	}
	return row
}

func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	return r.Read()
}

// splitAroundURL finds the first quoted ("http...) or bare http(s) field in a
// wrapped line and splits the line into title, URL and trailing date.
func splitAroundURL(line string) (title, link, date string, ok bool) {
	if i := strings.Index(line, `,"http`); i >= 0 {
		rest := line[i+2:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return unquote(line[:i]), strings.TrimSpace(rest), "", true
		}
		tail := strings.TrimPrefix(strings.TrimSpace(rest[end+1:]), ",")
		return unquote(line[:i]), strings.TrimSpace(rest[:end]), unquote(tail), true
	}

	parts := strings.Split(line, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i > 0 && (strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")) {
			return unquote(strings.Join(parts[:i], ",")), p, unquote(strings.Join(parts[i+1:], ",")), true
		}
	}
	return "", "", "", false
}

// unquote strips one level of CSV quoting from s.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
