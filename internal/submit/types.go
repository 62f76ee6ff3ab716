// Package submit sends URL records to the indexing backend.
package submit

import (
	"time"

	"github.com/rshade/urlindex/internal/ingest"
)

// ErrorKind classifies a failed submission.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindHTTPStatus  ErrorKind = "http_status"
	KindAuthExpired ErrorKind = "auth_expired"
	KindTimeout     ErrorKind = "timeout"
	KindNetwork     ErrorKind = "network"
	KindRequest     ErrorKind = "request"
	KindCancelled   ErrorKind = "cancelled"
)

// Result is the outcome of submitting one record.
type Result struct {
	Record     ingest.Record
	Success    bool
	StatusCode int
	Kind       ErrorKind
	Message    string
	Duration   time.Duration
}

// Payload is the JSON body sent for one URL.
type Payload struct {
	WidgetID          string       `json:"widget_id"`
	URL               []PayloadURL `json:"url"`
	SourceType        string       `json:"sourceType"`
	ImportFullWebsite bool         `json:"import_full_website"`
	DataTypeIDs       []string     `json:"dataTypeIds"`
	Title             string       `json:"title,omitempty"`
	Date              string       `json:"date,omitempty"`
}

// PayloadURL is one entry of Payload.URL.
type PayloadURL struct {
	URL           string `json:"url"`
	IsForceUpdate bool   `json:"isForceUpdate"`
}
