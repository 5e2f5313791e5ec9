package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads script definitions from a directory of YAML files. Each file
// holds one Config. The loader re-reads the directory on every call so
// definitions can be edited without restarting the server.
type Loader struct {
	dir string
}

// NewLoader creates a Loader for the given definitions directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// ListNames returns the names of all loadable scripts, sorted. Files that
// fail to parse are skipped; listing never fails because of one bad file.
func (l *Loader) ListNames() ([]string, error) {
	var names []string
	err := l.visit(func(path string, cfg *Config) bool {
		names = append(names, cfg.Name)
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the script config with the given name, or ErrNotFound.
func (l *Loader) Load(name string) (*Config, error) {
	var found *Config
	err := l.visit(func(path string, cfg *Config) bool {
		if cfg.Name == name {
			found = cfg
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// visit parses every YAML file in the directory and calls fn until it
// returns true. Unparseable files are skipped silently; the caller decides
// whether an absent script is an error.
func (l *Loader) visit(fn func(path string, cfg *Config) bool) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read scripts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		cfg, err := parseFile(path)
		if err != nil {
			continue
		}
		if fn(path, cfg) {
			return nil
		}
	}
	return nil
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from the configured scripts directory
	if err != nil {
		return nil, fmt.Errorf("read script definition: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse script definition %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script definition %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}
