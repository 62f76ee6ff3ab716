package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/urlindex/internal/config"
	"github.com/rshade/urlindex/internal/ingest"
	"github.com/rshade/urlindex/pkg/version"
)

// maxErrorBody bounds how much of a failed response body is kept for logging.
const maxErrorBody = 512

// Client submits records to the backend, one synchronous request per record.
type Client struct {
	cfg    config.APIConfig
	http   *http.Client
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "submit").Logger()
	}
}

// NewClient creates a Client for the given backend configuration.
func NewClient(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Payload builds the request body for rec.
func (c *Client) Payload(rec ingest.Record) Payload {
	dataTypes := c.cfg.DataTypeIDs
	if dataTypes == nil {
		dataTypes = []string{}
	}
	p := Payload{
		WidgetID:    c.cfg.WidgetID,
		URL:         []PayloadURL{{URL: rec.URL}},
		SourceType:  c.cfg.SourceType,
		DataTypeIDs: dataTypes,
	}
	if c.cfg.IncludeMetadata {
		p.Title = rec.Title
		p.Date = rec.Date
	}
	return p
}

// Submit sends rec to the backend. It never returns an error: every failure is
// described by the Result so the caller can carry on with the next record.
func (c *Client) Submit(ctx context.Context, rec ingest.Record) Result {
	start := c.now()
	result := c.submit(ctx, rec)
	result.Record = rec
	result.Duration = c.now().Sub(start)

	// The runner logs failures at warn level.
	c.logger.Debug().
		Str("url", rec.URL).
		Int("status", result.StatusCode).
		Str("kind", string(result.Kind)).
		Dur("duration", result.Duration).
		Msg(result.describe())

	return result
}

func (c *Client) submit(ctx context.Context, rec ingest.Record) Result {
	body, err := json.Marshal(c.Payload(rec))
	if err != nil {
		return Result{Kind: KindRequest, Message: fmt.Sprintf("encoding payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: KindRequest, Message: fmt.Sprintf("building request: %v", err)}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{Success: true, StatusCode: resp.StatusCode, Message: "OK"}
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	c.logger.Debug().
		Str("url", rec.URL).
		Int("status", resp.StatusCode).
		Str("body", strings.TrimSpace(string(snippet))).
		Msg("backend rejected submission")

	if resp.StatusCode == http.StatusUnauthorized {
		return Result{StatusCode: resp.StatusCode, Kind: KindAuthExpired, Message: "Auth expired"}
	}
	return Result{
		StatusCode: resp.StatusCode,
		Kind:       KindHTTPStatus,
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", ulid.Make().String())
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
}

func classifyTransportError(ctx context.Context, err error) Result {
	if errors.Is(ctx.Err(), context.Canceled) {
		return Result{Kind: KindCancelled, Message: "Cancelled"}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Result{Kind: KindTimeout, Message: "Timeout"}
	}

	return Result{Kind: KindNetwork, Message: truncate(err.Error(), 80)}
}

func (r Result) describe() string {
	switch {
	case r.Success:
		return "submitted"
	case r.Kind == KindCancelled:
		return "request cancelled"
	default:
		return "submission failed: " + r.Message
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
