package ingest_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/urlindex/internal/ingest"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func buildCSV(n int) string {
	var b strings.Builder
	b.WriteString("Title,URL,Date\n")
	for i := range n {
		fmt.Fprintf(&b, "Page %d,https://example.com/page/%d,2025-12-09\n", i, i)
	}
	return b.String()
}

func TestLoad_WellFormedRowsInOrder(t *testing.T) {
	path := writeCSV(t, buildCSV(250))

	result, err := ingest.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 250, result.Len())
	assert.Zero(t, result.Skipped())
	assert.False(t, result.Truncated)
	for i, rec := range result.Records {
		assert.Equal(t, fmt.Sprintf("https://example.com/page/%d", i), rec.URL)
		assert.Equal(t, fmt.Sprintf("Page %d", i), rec.Title)
		assert.Equal(t, "2025-12-09", rec.Date)
		assert.Equal(t, i+2, rec.Line, "header is line 1")
	}
}

func TestLoad_EmptyURLSkipped(t *testing.T) {
	path := writeCSV(t, "Title,URL,Date\nNo link,,2025-01-01\nGood,https://example.com,2025-01-02\n")

	result, err := ingest.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Len())
	assert.Equal(t, 1, result.Skipped())
	assert.Equal(t, 1, result.SkippedBy()[ingest.SkipMissingURL])
	assert.Equal(t, ingest.SkippedRow{Line: 2, Reason: ingest.SkipMissingURL}, result.SkippedRows[0])
	assert.Equal(t, "https://example.com", result.Records[0].URL)
}

func TestLoad_InvalidURLsSkipped(t *testing.T) {
	content := "Title,URL,Date\n" +
		"ftp,ftp://example.com/file,\n" +
		"relative,/docs/page,\n" +
		"nohost,https://,\n" +
		"ok,HTTPS://Example.com/Docs,\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Len())
	assert.Equal(t, 3, result.SkippedBy()[ingest.SkipInvalidURL])
	assert.Equal(t, "HTTPS://Example.com/Docs", result.Records[0].URL)
}

func TestLoad_ParseErrorRowSkippedAndLoadingContinues(t *testing.T) {
	content := "Title,URL,Date\n" +
		"First,https://example.com/1,\n" +
		"Broken,\"https://example.com/2\"x,\n" +
		"Third,https://example.com/3,\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, "https://example.com/1", result.Records[0].URL)
	assert.Equal(t, "https://example.com/3", result.Records[1].URL)
	require.Equal(t, 1, result.Skipped())
	assert.Equal(t, ingest.SkipParseError, result.SkippedRows[0].Reason)
	assert.Equal(t, 3, result.SkippedRows[0].Line)
}

func TestLoad_HeaderColumnsResolvedByName(t *testing.T) {
	content := " url , TITLE\nhttps://example.com/a,Alpha\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, ingest.Record{Title: "Alpha", URL: "https://example.com/a", Line: 2}, result.Records[0])
}

func TestLoad_WrappedRows(t *testing.T) {
	content := "\"Title,\"\"URL\"\",\"\"Date\"\"\"\n" +
		"\"Finance welcome,\"\"https://learn.example.com/finance-welcome\"\",\"\"2025-12-09\"\"\"\n" +
		"Plain,https://example.com/plain,2025-12-10\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	require.Equal(t, 2, result.Len())
	assert.Equal(t, "Finance welcome", result.Records[0].Title)
	assert.Equal(t, "https://learn.example.com/finance-welcome", result.Records[0].URL)
	assert.Equal(t, "2025-12-09", result.Records[0].Date)
	assert.Equal(t, "https://example.com/plain", result.Records[1].URL)
}

// wrapLine encodes inner as a single quoted CSV cell, the way the learning
// center export writes every row.
func wrapLine(inner string) string {
	return `"` + strings.ReplaceAll(inner, `"`, `""`) + `"` + "\n"
}

func TestLoad_WrappedRowsWithAwkwardTitles(t *testing.T) {
	content := wrapLine(`Title,"URL","Date"`) +
		wrapLine(`Dynamics 365 Finance, Supply Chain overview,"https://learn.example.com/d365","2025-12-09"`) +
		wrapLine(`Use the "Import" wizard,"https://learn.example.com/import","2025-12-10"`) +
		wrapLine(`"Quoted, properly","https://learn.example.com/quoted","2025-12-11"`) +
		wrapLine(`Plain title,"https://learn.example.com/plain","2025-12-12"`)

	result, err := ingest.NewLoader().Read(context.Background(), strings.NewReader(content))
	require.NoError(t, err)

	assert.Empty(t, result.SkippedRows)
	require.Equal(t, 4, result.Len())
	assert.Equal(t, ingest.Record{
		Title: "Dynamics 365 Finance, Supply Chain overview",
		URL:   "https://learn.example.com/d365",
		Date:  "2025-12-09",
		Line:  2,
	}, result.Records[0])
	assert.Equal(t, `Use the "Import" wizard`, result.Records[1].Title)
	assert.Equal(t, "https://learn.example.com/import", result.Records[1].URL)
	assert.Equal(t, "2025-12-10", result.Records[1].Date)
	assert.Equal(t, "Quoted, properly", result.Records[2].Title)
	assert.Equal(t, "https://learn.example.com/plain", result.Records[3].URL)
}

func TestLoad_WrappedRowWithBareURL(t *testing.T) {
	content := "Title,URL,Date\n" + wrapLine(`Intro, part 1,https://example.com/intro,2025-01-02`)

	result, err := ingest.NewLoader().Read(context.Background(), strings.NewReader(content))
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "Intro, part 1", result.Records[0].Title)
	assert.Equal(t, "https://example.com/intro", result.Records[0].URL)
	assert.Equal(t, "2025-01-02", result.Records[0].Date)
}

func TestLoad_QuotedURLWithCommaInSingleColumnFile(t *testing.T) {
	content := "URL\n\"https://example.com/?ids=1,2\"\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, "https://example.com/?ids=1,2", result.Records[0].URL)
}

func TestLoad_BOMAndBlankLines(t *testing.T) {
	content := "\ufeffTitle,URL,Date\n\nA,https://example.com/a,\n\n"
	result, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, content))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Len())
	assert.Zero(t, result.Skipped())
}

func TestLoad_Limit(t *testing.T) {
	path := writeCSV(t, buildCSV(20))

	result, err := ingest.NewLoader(ingest.WithLimit(5)).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Len())
	assert.True(t, result.Truncated)
	assert.Equal(t, "https://example.com/page/4", result.Records[4].URL)
}

func TestLoad_LimitEqualToRows(t *testing.T) {
	path := writeCSV(t, buildCSV(5))

	result, err := ingest.NewLoader(ingest.WithLimit(5)).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Len())
	assert.False(t, result.Truncated, "nothing was left out")
}

func TestLoad_SetupErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ingest.NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
		assert.ErrorIs(t, err, ingest.ErrFileNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, ""))
		assert.ErrorIs(t, err, ingest.ErrMissingHeader)
	})

	t.Run("no url column", func(t *testing.T) {
		_, err := ingest.NewLoader().Load(context.Background(), writeCSV(t, "Title,Date\nA,2025\n"))
		assert.ErrorIs(t, err, ingest.ErrMissingURLColumn)
	})
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ingest.NewLoader().Load(ctx, writeCSV(t, buildCSV(3)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadResult_AllIsRestartable(t *testing.T) {
	result, err := ingest.NewLoader().Read(context.Background(), strings.NewReader(buildCSV(4)))
	require.NoError(t, err)

	collect := func() []string {
		var urls []string
		for _, rec := range result.All() {
			urls = append(urls, rec.URL)
		}
		return urls
	}

	first := collect()
	assert.Len(t, first, 4)
	assert.Equal(t, first, collect())

	// Early break must not panic.
	for i := range result.All() {
		if i == 1 {
			break
		}
	}
}

func TestCount(t *testing.T) {
	path := writeCSV(t, "Title,URL,Date\nA,https://example.com/a,\nB,,\nC,https://example.com/c,\n")

	valid, skipped, err := ingest.Count(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, valid)
	assert.Equal(t, 1, skipped)
}
