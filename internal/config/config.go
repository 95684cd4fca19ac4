// Package config loads and validates compactpdf YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-compactpdf/internal/fileutil"
	"github.com/alnah/go-compactpdf/internal/render"
	"github.com/alnah/go-compactpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrUnknownStyle    = errors.New("unknown highlight style")
)

// Renderer names.
const (
	RendererNative = "native"
	RendererChrome = "chrome"
)

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxStyleNameLength = 50
)

// MaxTimeout caps the per-document timeout.
const MaxTimeout = 10 * time.Minute

// Config holds all CLI configuration. The compact stylesheet is not
// configurable.
type Config struct {
	Renderer  string          `yaml:"renderer"` // "native" (default) or "chrome"
	Page      PageConfig      `yaml:"page"`
	Highlight HighlightConfig `yaml:"highlight"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Timeout   string          `yaml:"timeout"` // Go duration, e.g. "30s"
	Workers   int             `yaml:"workers"` // 0 = auto
	Log       LogConfig       `yaml:"log"`
}

// PageConfig defines the paper size. An @page size rule in the stylesheet
// takes precedence.
type PageConfig struct {
	Size string `yaml:"size"` // "a4" (default), "letter", "legal", "a3", "a5"
}

// HighlightConfig defines fenced code colouring.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // chroma style name (default: "github")
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// LogConfig defines diagnostic output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info (default), warn, error
}

// Validate checks enumerated values, durations and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Renderer) {
	case "", RendererNative, RendererChrome:
	default:
		return fmt.Errorf("%w: renderer %q (must be %s or %s)", ErrInvalidValue, c.Renderer, RendererNative, RendererChrome)
	}

	if c.Page.Size != "" {
		if _, err := render.ParsePageSize(c.Page.Size); err != nil {
			return fmt.Errorf("%w: page.size: %w", ErrInvalidValue, err)
		}
	}

	if err := validateFieldLength("highlight.style", c.Highlight.Style, MaxStyleNameLength); err != nil {
		return err
	}
	if c.Highlight.Style != "" && !render.HighlightStyleExists(c.Highlight.Style) {
		return fmt.Errorf("%w: highlight.style: %w %q", ErrInvalidValue, ErrUnknownStyle, c.Highlight.Style)
	}

	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidValue, c.Workers)
	}

	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
		}
	}

	return nil
}

// TimeoutDuration parses Timeout. An empty value yields zero, meaning the
// caller's default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	if d <= 0 || d > MaxTimeout {
		return 0, fmt.Errorf("%w: timeout %s (must be > 0 and <= %s)", ErrInvalidValue, d, MaxTimeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Renderer: RendererNative,
		Page:     PageConfig{Size: "a4"},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// YAML returns the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// SearchPaths lists the files LoadConfig tries for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "compactpdf", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in the current
// directory, then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
