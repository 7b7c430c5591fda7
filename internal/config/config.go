// Package config loads CLI defaults from a YAML config file. Values from
// the file sit between mode defaults and explicit flags: a config value
// overrides the dialect default, an explicit flag overrides both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/apexmark/apexmark/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Field length caps for values that end up in HTML attributes or paths.
const (
	MaxNameLength  = 100  // mode, theme, header id style
	MaxTitleLength = 200  // document title
	MaxPathLength  = 4096 // file and directory paths
)

// Config mirrors the flag surface that makes sense to persist. Pointer
// booleans distinguish "not set" from "set to false".
type Config struct {
	Mode          string `yaml:"mode"`
	HeaderIDStyle string `yaml:"headerIdStyle"`

	Standalone *bool  `yaml:"standalone"`
	Pretty     *bool  `yaml:"pretty"`
	Theme      string `yaml:"theme"`
	ThemeDir   string `yaml:"themeDir"`
	CSS        string `yaml:"css"`
	Title      string `yaml:"title"`
	Language   string `yaml:"language"`

	BaseDir      string            `yaml:"baseDir"`
	Bibliography []string          `yaml:"bibliography"`
	CSL          string            `yaml:"csl"`
	MetaFiles    []string          `yaml:"metaFiles"`
	Meta         map[string]string `yaml:"meta"`

	Workers int `yaml:"workers"`
}

// SearchPaths returns the config locations probed in order: the working
// directory first, then the user config directory.
func SearchPaths() []string {
	paths := []string{"apexmark.yaml", ".apexmark.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "apexmark", "config.yaml"))
	}
	return paths
}

// Find probes the search paths and returns the first existing config file.
// The searched list is returned either way, for error hints.
func Find() (path string, searched []string, ok bool) {
	searched = SearchPaths()
	for _, p := range searched {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, searched, true
		}
	}
	return "", searched, false
}

// Load reads and validates one config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := yamlutil.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfigParse, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate applies the field length caps.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"mode", c.Mode, MaxNameLength},
		{"headerIdStyle", c.HeaderIDStyle, MaxNameLength},
		{"theme", c.Theme, MaxNameLength},
		{"title", c.Title, MaxTitleLength},
		{"language", c.Language, MaxNameLength},
		{"themeDir", c.ThemeDir, MaxPathLength},
		{"css", c.CSS, MaxPathLength},
		{"baseDir", c.BaseDir, MaxPathLength},
		{"csl", c.CSL, MaxPathLength},
	}
	for _, ch := range checks {
		if len(ch.value) > ch.max {
			return fmt.Errorf("%w: %s (%d > %d)", ErrFieldTooLong, ch.name, len(ch.value), ch.max)
		}
	}
	for _, p := range append(append([]string{}, c.Bibliography...), c.MetaFiles...) {
		if len(p) > MaxPathLength {
			return fmt.Errorf("%w: path %q", ErrFieldTooLong, p[:40]+"...")
		}
	}
	return nil
}

// MetaPairs returns the meta map as sorted KEY=VALUE strings, so the
// resulting metadata order is deterministic.
func (c *Config) MetaPairs() []string {
	if len(c.Meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Meta))
	for k := range c.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+c.Meta[k])
	}
	return pairs
}
