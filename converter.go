package compactpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-compactpdf/internal/pipeline"
	"github.com/alnah/go-compactpdf/internal/render"
	"github.com/alnah/go-compactpdf/internal/style"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownParser = (*pipeline.GoldmarkParser)(nil)
	_ pipeline.StyleInjector  = (*pipeline.ShellInjector)(nil)
	_ Renderer                = (*render.Engine)(nil)
	_ Renderer                = (*render.ChromeEngine)(nil)
)

const pdfMagic = "%PDF-"

// pageObject matches page dictionaries but not the /Pages tree node.
var pageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// Converter runs the Markdown to PDF pipeline with the compact stylesheet.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter using the native renderer is safe for concurrent use.
type Converter struct {
	cfg      converterConfig
	parser   pipeline.MarkdownParser
	injector pipeline.StyleInjector
	renderer Renderer
	logger   *log.Logger
}

// NewConverter creates a Converter using the native renderer, A4 paper and
// a stderr logger. Returns ErrInvalidOption for an unknown page size or
// highlighting style.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			pageSize: PageSizeA4,
			date:     render.DefaultDate,
			timeout:  defaultTimeout,
		},
		parser:   pipeline.NewGoldmarkParser(),
		injector: &pipeline.ShellInjector{},
		logger:   newLogger(os.Stderr),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.renderer != nil {
		return c, nil
	}

	if c.cfg.chrome {
		c.renderer = render.NewChromeEngine(c.cfg.timeout)
		return c, nil
	}

	ps, err := render.ParsePageSize(c.cfg.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	engineOpts := []render.EngineOption{
		render.WithPageSize(ps),
		render.WithBaseDir(c.cfg.baseDir),
		render.WithDate(c.cfg.date),
	}
	if c.cfg.highlight {
		if c.cfg.highlightStyle != "" && !render.HighlightStyleExists(c.cfg.highlightStyle) {
			return nil, fmt.Errorf("%w: unknown highlighting style %q", ErrInvalidOption, c.cfg.highlightStyle)
		}
		engineOpts = append(engineOpts, render.WithHighlighting(c.cfg.highlightStyle))
	}
	c.renderer = render.NewEngine(engineOpts...)

	return c, nil
}

// newLogger returns the default diagnostic logger.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Prefix:          "compactpdf",
	})
}

// Convert parses markdown, applies the compact stylesheet and renders a PDF.
//
// Empty or whitespace-only input returns ErrNoInput before any stage runs.
// Every other failure is logged once with its stage and kind, and Convert
// returns ErrConversionFailed, joined with the context error when the
// context ended the conversion. No partial output is ever returned.
func (c *Converter) Convert(ctx context.Context, markdown string) (*Result, error) {
	return c.convert(ctx, markdown, c.cfg.baseDir)
}

// ConvertFile reads the Markdown file at path and converts it, resolving
// relative image and link paths against the file's directory. Read errors
// are returned wrapped, not logged; conversion errors behave as in Convert.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- caller-provided path
	if err != nil {
		return nil, fmt.Errorf("reading markdown: %w", err)
	}
	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	return c.convert(ctx, string(content), baseDir)
}

func (c *Converter) convert(ctx context.Context, markdown, baseDir string) (*Result, error) {
	if strings.TrimSpace(markdown) == "" {
		c.logger.Warn("empty input, nothing to convert")
		return nil, ErrNoInput
	}

	start := time.Now()
	res, err := c.run(ctx, markdown, baseDir)
	if err != nil {
		var se *stageError
		if !errors.As(err, &se) {
			se = &stageError{kind: UnexpectedFailure, err: err}
		}
		c.logger.Error("conversion failed", "stage", se.stage, "kind", se.kind, "err", se.err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ErrConversionFailed, ctxErr)
		}
		return nil, ErrConversionFailed
	}

	c.logger.Info("conversion succeeded",
		"pages", res.Pages,
		"bytes", len(res.PDF),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// run executes the three stages, checking ctx between them.
func (c *Converter) run(ctx context.Context, markdown, baseDir string) (*Result, error) {
	fragment, err := runStage(stageParse, ParseFailure, func() (string, error) {
		return c.parser.ToHTML(ctx, markdown)
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("parsed markdown", "html_bytes", len(fragment))
	if err := ctx.Err(); err != nil {
		return nil, &stageError{stage: stageParse, kind: UnexpectedFailure, err: err}
	}

	styled, err := runStage(stageStyle, UnexpectedFailure, func() (string, error) {
		return c.style(fragment, baseDir)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &stageError{stage: stageStyle, kind: UnexpectedFailure, err: err}
	}

	pdf, err := runStage(stageRender, RenderFailure, func() ([]byte, error) {
		data, err := c.renderer.Render(ctx, styled)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(data, []byte(pdfMagic)) {
			return nil, render.ErrInvalidOutput
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		PDF:   pdf,
		HTML:  styled,
		Pages: len(pageObject.FindAllIndex(pdf, -1)),
	}, nil
}

// style resolves relative paths and wraps the fragment in the document shell.
func (c *Converter) style(fragment, baseDir string) (string, error) {
	if baseDir != "" {
		var err error
		fragment, err = pipeline.ResolveRelativePaths(fragment, baseDir)
		if err != nil {
			return "", fmt.Errorf("resolving relative paths: %w", err)
		}
	}
	return c.injector.Inject(fragment, style.Compact()), nil
}

// runStage runs fn, classifying its error as kind and any panic as
// ParseFailure in the parse stage and UnexpectedFailure elsewhere.
func runStage[T any](stage string, kind FailureKind, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicKind := UnexpectedFailure
			if stage == stageParse {
				panicKind = ParseFailure
			}
			var zero T
			out, err = zero, &stageError{stage: stage, kind: panicKind, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = fn()
	if err != nil {
		var zero T
		return zero, &stageError{stage: stage, kind: kind, err: err}
	}
	return out, nil
}

// Close releases renderer resources (the Chrome browser).
func (c *Converter) Close() error {
	if closer, ok := c.renderer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Start prepares the renderer ahead of the first conversion. For the Chrome
// renderer it launches the browser; for other renderers it does nothing.
func (c *Converter) Start() error {
	if starter, ok := c.renderer.(interface{ Start() error }); ok {
		return starter.Start()
	}
	return nil
}

// MarkdownToPDF converts markdown with a default Converter and returns the
// PDF bytes, or nil on any failure. Failures are logged to stderr.
func MarkdownToPDF(ctx context.Context, markdown string) []byte {
	c, err := NewConverter()
	if err != nil {
		return nil
	}
	defer func() { _ = c.Close() }()

	res, err := c.Convert(ctx, markdown)
	if err != nil {
		return nil
	}
	return res.PDF
}
