// Package ingest loads URL records from CSV exports.
//
// The CSV must start with a header row naming at least a URL column; Title and
// Date columns are optional and matched case-insensitively. Rows that cannot be
// decoded, have an empty URL, or carry a URL that is not an absolute http(s) URL
// are skipped and counted rather than failing the load. Rows exported as a single
// doubly-quoted cell (`"Title,""URL"",""Date"""`) are unwrapped transparently.
package ingest
