package main

import (
	"context"
	"errors"
	"os"

	compactpdf "github.com/alnah/go-compactpdf"
	"github.com/alnah/go-compactpdf/internal/config"
	"github.com/alnah/go-compactpdf/internal/hints"
	"github.com/alnah/go-compactpdf/internal/render"
)

// Exit codes for the compactpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // Conversion failed or unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// highlightExamples are suggested after an unknown highlight style.
var highlightExamples = []string{"github", "monokai", "dracula", "friendly", "solarized-light"}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, render.ErrBrowserConnect) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoMarkdownFiles) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, compactpdf.ErrInvalidOption) ||
		errors.Is(err, compactpdf.ErrNoInput) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "". Batch errors carry no
// hint of their own since each failure was already reported.
func hintFor(err error) string {
	var be *batchError
	switch {
	case err == nil, errors.As(err, &be):
		return ""
	case errors.Is(err, render.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, render.ErrInvalidPage):
		return hints.ForPageSize(render.PageSizeNames())
	case errors.Is(err, config.ErrUnknownStyle):
		return hints.ForHighlightStyle(highlightExamples)
	}
	return ""
}
