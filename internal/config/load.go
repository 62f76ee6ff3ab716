package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// ErrConfigNotFound is returned when an explicitly requested config file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// Path is an explicit config file. Missing explicit files are an error;
	// when empty, DefaultConfigFile is used if it exists.
	Path string
	// DotEnvPath is loaded into the process environment when it exists.
	// Variables already set in the environment win. Empty means DefaultDotEnvFile.
	DotEnvPath string
}

// Load builds a Config from defaults, the YAML file and the environment.
// The result is not validated; apply flag overrides first, then call Validate.
func Load(opts LoadOptions) (Config, error) {
	if err := loadDotEnv(opts.DotEnvPath); err != nil {
		return Config{}, err
	}

	path, err := resolvePath(opts.Path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("reading environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	return cfg, nil
}

// Overrides carries command-line values; nil fields leave the loaded value alone.
type Overrides struct {
	CSVPath          *string
	APIURL           *string
	WidgetID         *string
	AuthToken        *string
	BatchSize        *int
	RateLimitSeconds *float64
	Limit            *int
	StopOnAuthError  *bool
	LogLevel         *string
	LogFormat        *string
}

// WithOverrides returns a copy of c with the non-nil overrides applied.
func (c Config) WithOverrides(o Overrides) Config {
	out := c
	setIf(&out.Run.CSVPath, o.CSVPath)
	setIf(&out.API.URL, o.APIURL)
	setIf(&out.API.WidgetID, o.WidgetID)
	setIf(&out.API.AuthToken, o.AuthToken)
	setIf(&out.Run.BatchSize, o.BatchSize)
	setIf(&out.Run.RateLimitSeconds, o.RateLimitSeconds)
	setIf(&out.Run.Limit, o.Limit)
	setIf(&out.Run.StopOnAuthError, o.StopOnAuthError)
	setIf(&out.Logging.Level, o.LogLevel)
	setIf(&out.Logging.Format, o.LogFormat)
	return out
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func resolvePath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
			}
			return "", fmt.Errorf("cannot access config %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	return "", nil
}

func loadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		// Missing .env is the normal case.
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
