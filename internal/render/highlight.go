package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-compactpdf/internal/layout"
	"github.com/alnah/go-compactpdf/internal/style"
)

// DefaultHighlightStyle is the chroma style used when highlighting is
// enabled without a style name.
const DefaultHighlightStyle = "github"

// Compile-time interface check.
var _ layout.Highlighter = (*chromaHighlighter)(nil)

// chromaHighlighter colours fenced code with a chroma style.
type chromaHighlighter struct {
	style *chroma.Style
}

func newHighlighter(name string) *chromaHighlighter {
	if name == "" {
		name = DefaultHighlightStyle
	}
	return &chromaHighlighter{style: styles.Get(name)}
}

// HighlightStyleExists reports whether chroma knows the named style.
func HighlightStyleExists(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

// Highlight tokenizes code. It returns nil for unknown languages and when
// the tokens would not reproduce code exactly.
func (h *chromaHighlighter) Highlight(language, code string) []layout.Token {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil
	}
	var toks []layout.Token
	var b strings.Builder
	for _, t := range it.Tokens() {
		entry := h.style.Get(t.Type)
		tok := layout.Token{
			Text:   t.Value,
			Bold:   entry.Bold == chroma.Yes,
			Italic: entry.Italic == chroma.Yes,
		}
		if entry.Colour.IsSet() {
			tok.Color = style.RGB(entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
		}
		toks = append(toks, tok)
		b.WriteString(t.Value)
	}
	got := b.String()
	if got == code+"\n" && len(toks) > 0 {
		last := &toks[len(toks)-1]
		last.Text = strings.TrimSuffix(last.Text, "\n")
		got = code
	}
	if got != code {
		return nil
	}
	return toks
}
