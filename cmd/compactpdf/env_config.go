package main

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-compactpdf/internal/config"
)

const envPrefix = "COMPACTPDF_"

// envConfig holds configuration from COMPACTPDF_* environment variables.
// Values override the config file; flags override both.
type envConfig struct {
	ConfigPath string // COMPACTPDF_CONFIG
	Renderer   string // COMPACTPDF_RENDERER
	PageSize   string // COMPACTPDF_PAGE_SIZE
	Timeout    string // COMPACTPDF_TIMEOUT
	Workers    string // COMPACTPDF_WORKERS
	InputDir   string // COMPACTPDF_INPUT_DIR
	OutputDir  string // COMPACTPDF_OUTPUT_DIR
	LogLevel   string // COMPACTPDF_LOG_LEVEL

	unknown []string
}

// knownEnvVars lists the recognized variables, used to flag typos.
var knownEnvVars = []string{
	"COMPACTPDF_CONFIG",
	"COMPACTPDF_INPUT_DIR",
	"COMPACTPDF_LOG_LEVEL",
	"COMPACTPDF_OUTPUT_DIR",
	"COMPACTPDF_PAGE_SIZE",
	"COMPACTPDF_RENDERER",
	"COMPACTPDF_TIMEOUT",
	"COMPACTPDF_WORKERS",
}

// loadEnvConfig reads COMPACTPDF_* entries from environ ("KEY=value" pairs).
func loadEnvConfig(environ []string) *envConfig {
	ec := &envConfig{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		switch key {
		case "COMPACTPDF_CONFIG":
			ec.ConfigPath = value
		case "COMPACTPDF_RENDERER":
			ec.Renderer = value
		case "COMPACTPDF_PAGE_SIZE":
			ec.PageSize = value
		case "COMPACTPDF_TIMEOUT":
			ec.Timeout = value
		case "COMPACTPDF_WORKERS":
			ec.Workers = value
		case "COMPACTPDF_INPUT_DIR":
			ec.InputDir = value
		case "COMPACTPDF_OUTPUT_DIR":
			ec.OutputDir = value
		case "COMPACTPDF_LOG_LEVEL":
			ec.LogLevel = value
		default:
			ec.unknown = append(ec.unknown, key)
		}
	}
	slices.Sort(ec.unknown)
	return ec
}

// apply copies set values into cfg. Malformed workers values are ignored
// and reported through the returned warnings; everything else is checked
// later by cfg.Validate.
func (ec *envConfig) apply(cfg *config.Config) []string {
	var warnings []string

	if ec.Renderer != "" {
		cfg.Renderer = ec.Renderer
	}
	if ec.PageSize != "" {
		cfg.Page.Size = ec.PageSize
	}
	if ec.Timeout != "" {
		cfg.Timeout = ec.Timeout
	}
	if ec.Workers != "" {
		n, err := strconv.Atoi(ec.Workers)
		if err != nil || n < 0 {
			warnings = append(warnings, "ignoring COMPACTPDF_WORKERS="+ec.Workers)
		} else {
			cfg.Workers = n
		}
	}
	if ec.InputDir != "" {
		cfg.Input.DefaultDir = ec.InputDir
	}
	if ec.OutputDir != "" {
		cfg.Output.DefaultDir = ec.OutputDir
	}
	if ec.LogLevel != "" {
		cfg.Log.Level = ec.LogLevel
	}

	return warnings
}

// warnUnknown logs COMPACTPDF_* variables that are not recognized.
func (ec *envConfig) warnUnknown(logger *log.Logger) {
	for _, key := range ec.unknown {
		logger.Warn("unknown environment variable", "name", key, "known", strings.Join(knownEnvVars, ","))
	}
}
