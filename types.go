package compactpdf

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Page size names accepted by WithPageSize.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// defaultTimeout bounds page loading in the Chrome renderer.
const defaultTimeout = 30 * time.Second

// Renderer turns a styled HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, styled string) ([]byte, error)
}

// Result is the outcome of a successful conversion.
type Result struct {
	PDF   []byte // starts with %PDF-
	HTML  string // styled document handed to the renderer
	Pages int    // page objects found in PDF
}

// Reader returns a reader over the PDF positioned at offset zero.
// Each call returns an independent reader.
func (r *Result) Reader() io.Reader {
	return bytes.NewReader(r.PDF)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds settings resolved by NewConverter.
type converterConfig struct {
	pageSize       string
	baseDir        string
	highlight      bool
	highlightStyle string
	date           time.Time
	timeout        time.Duration
	chrome         bool
}

// WithLogger sets the logger receiving one line per conversion.
// A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderer replaces the built-in renderer. Page size, highlighting and
// date options do not apply to custom renderers.
func WithRenderer(r Renderer) Option {
	return func(c *Converter) {
		c.renderer = r
	}
}

// WithChrome selects the headless Chrome renderer instead of the native one.
func WithChrome() Option {
	return func(c *Converter) {
		c.cfg.chrome = true
	}
}

// WithPageSize sets the paper size: "a4" (default), "letter", "legal", "a3"
// or "a5". An @page size rule in the stylesheet takes precedence.
func WithPageSize(name string) Option {
	return func(c *Converter) {
		c.cfg.pageSize = name
	}
}

// WithBaseDir resolves relative image and link paths against dir.
func WithBaseDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.baseDir = dir
	}
}

// WithHighlighting colours fenced code blocks with the named chroma style.
// An empty name selects the default style.
func WithHighlighting(style string) Option {
	return func(c *Converter) {
		c.cfg.highlight = true
		c.cfg.highlightStyle = style
	}
}

// WithDocumentDate sets the creation date recorded in the PDF metadata.
// The default is a fixed date so that identical input yields identical bytes.
func WithDocumentDate(t time.Time) Option {
	return func(c *Converter) {
		c.cfg.date = t
	}
}

// WithTimeout sets the page load timeout of the Chrome renderer.
// Panics if d <= 0.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("compactpdf: timeout must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}
