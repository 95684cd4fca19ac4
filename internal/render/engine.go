package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-compactpdf/internal/layout"
	"github.com/alnah/go-compactpdf/internal/style"
)

// DefaultDate is the creation date written into every PDF unless
// WithDate overrides it.
var DefaultDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Engine renders styled HTML documents to PDF without external processes.
// Its output depends only on its input and options. An Engine is safe for
// concurrent use.
type Engine struct {
	pageSize  PageSize
	baseDir   string
	highlight bool
	hlStyle   string
	date      time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPageSize sets the paper size used when no @page size rule applies.
func WithPageSize(ps PageSize) EngineOption {
	return func(e *Engine) {
		if ps.Width > 0 && ps.Height > 0 {
			e.pageSize = ps
		}
	}
}

// WithBaseDir sets the directory relative image paths are resolved against.
func WithBaseDir(dir string) EngineOption {
	return func(e *Engine) {
		e.baseDir = dir
	}
}

// WithHighlighting colours fenced code blocks that declare a language.
// An empty style name selects DefaultHighlightStyle.
func WithHighlighting(styleName string) EngineOption {
	return func(e *Engine) {
		e.highlight = true
		e.hlStyle = styleName
	}
}

// WithDate sets the creation and modification dates of the PDF.
func WithDate(t time.Time) EngineOption {
	return func(e *Engine) {
		if !t.IsZero() {
			e.date = t.UTC()
		}
	}
}

// NewEngine returns an Engine that prints on A4 by default.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{pageSize: A4, date: DefaultDate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render lays out styled and paints it as PDF bytes.
func (e *Engine) Render(ctx context.Context, styled string) ([]byte, error) {
	doc, err := e.Layout(ctx, styled)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fonts, err := LoadFonts()
	if err != nil {
		return nil, err
	}
	return paint(doc, fonts, e.date)
}

// Layout parses styled, applies its stylesheets and paginates it.
func (e *Engine) Layout(ctx context.Context, styled string) (*layout.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(styled))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}

	var sheets []*style.Stylesheet
	for _, src := range styleElements(root) {
		sheet, err := style.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStylesheet, err)
		}
		sheets = append(sheets, sheet)
	}

	fonts, err := LoadFonts()
	if err != nil {
		return nil, err
	}
	pb := resolvePage(sheets, e.pageSize)
	opts := layout.Options{
		PageWidth:  pb.width,
		PageHeight: pb.height,
		Margins:    pb.margins,
		Cascade:    style.NewCascade(append([]*style.Stylesheet{style.UserAgent()}, sheets...)...),
		Fonts:      fonts,
		Images:     newImageLoader(e.baseDir),
	}
	if e.highlight {
		opts.Highlighter = newHighlighter(e.hlStyle)
	}

	doc, err := layout.Layout(root, opts)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, ErrResourceLoad):
		return nil, err
	case errors.Is(err, layout.ErrResource):
		return nil, fmt.Errorf("%w: %v", ErrResourceLoad, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
}

// Close is a no-op; Engine holds no external resources.
func (e *Engine) Close() error {
	return nil
}

// styleElements returns the text of every <style> element in document order.
func styleElements(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Style {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				}
			}
			out = append(out, b.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
