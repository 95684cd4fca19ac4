package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// typography replaces ASCII punctuation with literal UTF-8 characters.
var typography = map[extension.TypographicPunctuation]string{
	extension.LeftSingleQuote:  "‘",
	extension.RightSingleQuote: "’",
	extension.LeftDoubleQuote:  "“",
	extension.RightDoubleQuote: "”",
	extension.EnDash:           "–",
	extension.EmDash:           "—",
	extension.Ellipsis:         "…",
	extension.LeftAngleQuote:   "«",
	extension.RightAngleQuote:  "»",
	extension.Apostrophe:       "’",
}

// MarkdownParser abstracts Markdown to HTML conversion.
type MarkdownParser interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
}

// GoldmarkParser converts Markdown to an HTML fragment using goldmark (pure Go).
// Tables, definition lists, footnotes, abbreviations, attribute lists,
// strikethrough and smart punctuation are always enabled. Raw HTML is passed
// through unchanged.
type GoldmarkParser struct {
	md           goldmark.Markdown
	preprocessor MarkdownPreprocessor
}

// NewGoldmarkParser creates a GoldmarkParser with its fixed extension set.
func NewGoldmarkParser() *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.DefinitionList,
			extension.Footnote,
			extension.Strikethrough,
			extension.NewTypographer(extension.WithTypographicSubstitutions(typography)),
			Abbreviations,
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // {#id .class} after headings
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),  // Self-closing tags
			html.WithUnsafe(), // Raw HTML is trusted input
		),
	)
	return &GoldmarkParser{md: md, preprocessor: &Preprocessor{}}
}

// ToHTML converts Markdown to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context. A panic inside goldmark is
// returned as an ErrHTMLConversion error.
func (c *GoldmarkParser) ToHTML(ctx context.Context, markdown string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pre := c.preprocessor.Preprocess(ctx, markdown)

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrHTMLConversion, r)}
			}
		}()

		pc := parser.NewContext()
		if len(pre.Abbreviations) > 0 {
			pc.Set(abbreviationsKey, pre.Abbreviations)
		}
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(pre.Markdown), &buf, parser.WithContext(pc)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
