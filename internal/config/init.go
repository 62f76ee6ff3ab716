package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrConfigExists is returned by WriteDefault when the file exists and force is false.
var ErrConfigExists = errors.New("configuration file already exists, use --force to overwrite")

// Starter returns the configuration `config init` writes: defaults plus placeholders
// that make the required fields obvious to the operator.
func Starter() Config {
	cfg := Default()
	cfg.API.URL = "https://indexer.example.com/learning-center/index"
	cfg.API.WidgetID = "00000000-0000-0000-0000-000000000000"
	cfg.API.AuthToken = placeholderToken
	cfg.API.DataTypeIDs = []string{}
	cfg.Run.CSVPath = "urls.csv"
	return cfg
}

// WriteDefault writes Starter() to path.
func WriteDefault(path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return ErrConfigExists
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	data, err := Starter().YAML()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// The file will hold a bearer token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// EnsureGitignore makes sure dir/.gitignore lists every entry, appending the
// missing ones. Returns the entries that were added.
func EnsureGitignore(dir string, entries ...string) ([]string, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	present := make(map[string]bool)
	existing, err := os.ReadFile(gitignorePath)
	switch {
	case err == nil:
		scanner := bufio.NewScanner(strings.NewReader(string(existing)))
		for scanner.Scan() {
			present[strings.TrimSpace(scanner.Text())] = true
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading .gitignore at %s: %w", gitignorePath, err)
	}

	var added []string
	for _, e := range entries {
		if e == "" || present[e] {
			continue
		}
		present[e] = true
		added = append(added, e)
	}
	if len(added) == 0 {
		return nil, nil
	}

	var b strings.Builder
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	if len(existing) == 0 {
		b.WriteString("# urlindex secrets (auto-generated)\n")
	}
	for _, e := range added {
		b.WriteString(e)
		b.WriteString("\n")
	}

	//nolint:gosec // .gitignore must be world-readable (0644).
	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening .gitignore at %s: %w", gitignorePath, err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return nil, fmt.Errorf("writing .gitignore at %s: %w", gitignorePath, err)
	}
	return added, nil
}
