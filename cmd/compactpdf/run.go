package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	compactpdf "github.com/alnah/go-compactpdf"
	"github.com/alnah/go-compactpdf/internal/config"
	"github.com/alnah/go-compactpdf/internal/hints"
)

// defaultTimeout bounds each document when neither flag nor config sets one.
const defaultTimeout = 30 * time.Second

// run loads settings, discovers inputs and converts them.
func run(ctx context.Context, flags *cliFlags, env *Environment) error {
	envCfg := loadEnvConfig(env.Environ())

	cfg, warnings, err := loadSettings(flags, envCfg)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log.Level, flags.quiet, flags.verbose)
	envCfg.warnUnknown(logger)
	for _, w := range warnings {
		logger.Warn(w)
	}

	if flags.printConfig {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(out)
		return err
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	inputs := flags.args
	if len(inputs) == 0 {
		if cfg.Input.DefaultDir == "" {
			return ErrNoInput
		}
		inputs = []string{cfg.Input.DefaultDir}
	}

	output := flags.output
	if output == "" {
		output = cfg.Output.DefaultDir
	}

	files, err := collectFiles(inputs, output, env.Stdin, env.Now())
	if err != nil {
		return err
	}

	chrome := cfg.Renderer == config.RendererChrome
	pool := compactpdf.NewConverterPool(
		compactpdf.ResolvePoolSize(cfg.Workers, chrome),
		converterFactory(cfg, logger, timeout),
	)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "err", err)
		}
	}()

	logger.Debug("starting conversion",
		"files", len(files),
		"workers", pool.Size(),
		"renderer", cfg.Renderer,
		"page_size", cfg.Page.Size,
		"timeout", timeout)

	results := convertBatch(ctx, pool, files, batchOptions{timeout: timeout, html: flags.html})
	printResults(results, flags.quiet, flags.verbose, env)
	return newBatchError(results)
}

// loadSettings builds the effective configuration: defaults, then the
// config file, then COMPACTPDF_* variables, then flags. Warnings report
// ignored environment values.
func loadSettings(flags *cliFlags, envCfg *envConfig) (*config.Config, []string, error) {
	cfg := config.DefaultConfig()

	name := flags.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	warnings := envCfg.apply(cfg)
	mergeFlags(flags, cfg)

	if err := validateWorkers(cfg.Workers); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}
	cfg.Renderer = strings.ToLower(cfg.Renderer)
	if cfg.Renderer == "" {
		cfg.Renderer = config.RendererNative
	}
	return cfg, warnings, nil
}

// newLogger builds the diagnostic logger. --verbose forces debug and
// --quiet forces error; otherwise level comes from the configuration.
func newLogger(w io.Writer, level string, quiet, verbose bool) *log.Logger {
	lvl := log.InfoLevel
	if parsed, err := log.ParseLevel(level); err == nil {
		lvl = parsed
	}
	switch {
	case verbose:
		lvl = log.DebugLevel
	case quiet:
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           lvl,
		Prefix:          "compactpdf",
	})
}

// converterFactory returns the pool factory for cfg. Chrome converters
// launch their browser here so a missing browser fails before any document.
func converterFactory(cfg *config.Config, logger *log.Logger, timeout time.Duration) func() (*compactpdf.Converter, error) {
	return func() (*compactpdf.Converter, error) {
		opts := []compactpdf.Option{compactpdf.WithLogger(logger)}
		if cfg.Page.Size != "" {
			opts = append(opts, compactpdf.WithPageSize(cfg.Page.Size))
		}
		if cfg.Highlight.Enabled {
			opts = append(opts, compactpdf.WithHighlighting(cfg.Highlight.Style))
		}
		if cfg.Renderer == config.RendererChrome {
			opts = append(opts, compactpdf.WithChrome(), compactpdf.WithTimeout(timeout))
		}

		conv, err := compactpdf.NewConverter(opts...)
		if err != nil {
			return nil, err
		}
		if err := conv.Start(); err != nil {
			_ = conv.Close()
			return nil, err
		}
		return conv, nil
	}
}
