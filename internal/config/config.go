// Package config holds the run configuration for urlindex.
//
// A Config is assembled once at startup from built-in defaults, an optional YAML
// file, an optional .env file, URLINDEX_* environment variables and command-line
// flags, in that order of precedence. It is passed by value afterwards and never
// mutated during a run.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults.
const (
	DefaultBatchSize        = 100
	DefaultRateLimitSeconds = 180
	DefaultTimeout          = 30 * time.Second
	DefaultSourceType       = "web"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"

	// DefaultConfigFile is read from the working directory when --config is not given.
	DefaultConfigFile = "urlindex.yaml"
	// DefaultDotEnvFile is loaded into the environment when present.
	DefaultDotEnvFile = ".env"

	// placeholderToken is what `config init` writes; it is never a valid token.
	placeholderToken = "YOUR_AUTH_TOKEN_HERE"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// APIConfig describes the indexing backend.
type APIConfig struct {
	URL             string            `yaml:"url" env:"URLINDEX_API_URL"`
	WidgetID        string            `yaml:"widget_id" env:"URLINDEX_WIDGET_ID"`
	AuthToken       string            `yaml:"auth_token" env:"URLINDEX_AUTH_TOKEN"`
	DataTypeIDs     []string          `yaml:"data_type_ids" env:"URLINDEX_DATA_TYPE_IDS" env-separator:","`
	SourceType      string            `yaml:"source_type" env:"URLINDEX_SOURCE_TYPE"`
	Timeout         time.Duration     `yaml:"timeout" env:"URLINDEX_TIMEOUT"`
	IncludeMetadata bool              `yaml:"include_metadata" env:"URLINDEX_INCLUDE_METADATA"`
	Headers         map[string]string `yaml:"headers,omitempty"`
}

// RunConfig controls batching and pacing.
type RunConfig struct {
	CSVPath          string  `yaml:"csv_path" env:"URLINDEX_CSV_PATH"`
	BatchSize        int     `yaml:"batch_size" env:"URLINDEX_BATCH_SIZE"`
	RateLimitSeconds float64 `yaml:"rate_limit_seconds" env:"URLINDEX_RATE_LIMIT_SECONDS"`
	Limit            int     `yaml:"limit" env:"URLINDEX_LIMIT"`
	StopOnAuthError  bool    `yaml:"stop_on_auth_error" env:"URLINDEX_STOP_ON_AUTH_ERROR"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"URLINDEX_LOG_LEVEL"`
	Format string `yaml:"format" env:"URLINDEX_LOG_FORMAT"`
	File   string `yaml:"file" env:"URLINDEX_LOG_FILE"`
}

// Config is the complete, immutable run configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the built-in configuration. API URL, widget ID and token
// have no defaults and must be supplied.
func Default() Config {
	return Config{
		API: APIConfig{
			SourceType: DefaultSourceType,
			Timeout:    DefaultTimeout,
		},
		Run: RunConfig{
			BatchSize:        DefaultBatchSize,
			RateLimitSeconds: DefaultRateLimitSeconds,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// RateLimit returns the inter-batch pause as a duration.
func (c Config) RateLimit() time.Duration {
	return time.Duration(c.Run.RateLimitSeconds * float64(time.Second))
}

// Validate reports every problem with c at once. The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var problems []string

	switch u, err := url.Parse(c.API.URL); {
	case c.API.URL == "":
		problems = append(problems, "api.url is required")
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		problems = append(problems, fmt.Sprintf("api.url %q is not an http(s) URL", c.API.URL))
	}

	if strings.TrimSpace(c.API.WidgetID) == "" {
		problems = append(problems, "api.widget_id is required")
	}

	token := strings.TrimSpace(c.API.AuthToken)
	if token == "" || token == placeholderToken {
		problems = append(problems, "api.auth_token is required (set URLINDEX_AUTH_TOKEN or --token)")
	}

	if c.API.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("api.timeout must be > 0, got %s", c.API.Timeout))
	}

	if c.Run.BatchSize <= 0 {
		problems = append(problems, fmt.Sprintf("run.batch_size must be > 0, got %d", c.Run.BatchSize))
	}

	if c.Run.RateLimitSeconds < 0 {
		problems = append(problems, fmt.Sprintf("run.rate_limit_seconds must be >= 0, got %g", c.Run.RateLimitSeconds))
	}

	if c.Run.Limit < 0 {
		problems = append(problems, fmt.Sprintf("run.limit must be >= 0, got %d", c.Run.Limit))
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// Redacted returns a copy of c with the auth token masked, safe for printing.
func (c Config) Redacted() Config {
	out := c
	out.API.AuthToken = maskToken(c.API.AuthToken)
	if c.API.Headers != nil {
		out.API.Headers = make(map[string]string, len(c.API.Headers))
		for k, v := range c.API.Headers {
			if strings.EqualFold(k, "authorization") {
				v = maskToken(v)
			}
			out.API.Headers[k] = v
		}
	}
	return out
}

// YAML renders c as a YAML document.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

func maskToken(token string) string {
	const visible = 4
	if token == "" {
		return ""
	}
	if len(token) <= visible*2 {
		return strings.Repeat("*", len(token))
	}
	return token[:visible] + strings.Repeat("*", 8) + token[len(token)-visible:]
}
