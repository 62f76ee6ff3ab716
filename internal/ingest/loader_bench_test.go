package ingest_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rshade/urlindex/internal/ingest"
)

func generateCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("Title,URL,Date\n")
	for i := range rows {
		fmt.Fprintf(&sb, "Article %d,https://example.com/learning-center/article-%d,2025-06-%02d\n", i, i, i%28+1)
	}
	return sb.String()
}

// BenchmarkRead_10kRows benchmarks loading a typical export.
func BenchmarkRead_10kRows(b *testing.B) {
	b.ReportAllocs()
	data := generateCSV(10000)
	loader := ingest.NewLoader()
	ctx := context.Background()

	for b.Loop() {
		if _, err := loader.Read(ctx, strings.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}
