package render

import (
	"strings"
	"testing"

	"github.com/alnah/go-compactpdf/internal/layout"
)

func joinTokens(toks []layout.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

func TestHighlight_ReproducesCode(t *testing.T) {
	t.Parallel()

	h := newHighlighter("")
	tests := []struct {
		name     string
		language string
		code     string
	}{
		{"go", "go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}"},
		{"trailing newline", "go", "x := 1\n"},
		{"python", "python", "def f(x):\n    return x * 2"},
		{"alias", "js", "const a = [1, 2];"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			toks := h.Highlight(tt.language, tt.code)
			if toks == nil {
				t.Fatalf("Highlight(%q) = nil, want tokens", tt.language)
			}
			if got := joinTokens(toks); got != tt.code {
				t.Errorf("tokens join to %q, want %q", got, tt.code)
			}
		})
	}
}

func TestHighlight_UnknownLanguage(t *testing.T) {
	t.Parallel()

	if toks := newHighlighter("").Highlight("no-such-language", "x"); toks != nil {
		t.Errorf("Highlight() = %v, want nil", toks)
	}
}

func TestHighlight_ColorsKeywords(t *testing.T) {
	t.Parallel()

	toks := newHighlighter("monokai").Highlight("go", "func main() {}")
	for _, tok := range toks {
		if tok.Text == "func" {
			if tok.Color == (layout.Token{}).Color {
				t.Error("keyword token has no colour")
			}
			return
		}
	}
	t.Errorf("no token for keyword func in %v", toks)
}

func TestHighlightStyleExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"github", true},
		{"monokai", true},
		{"Monokai", true},
		{"no-such-style", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HighlightStyleExists(tt.name); got != tt.want {
				t.Errorf("HighlightStyleExists(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
