package pipeline

import (
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// abbreviationsKey carries the definitions found by the preprocessor into
// the goldmark parse.
var abbreviationsKey = parser.NewContextKey()

// Abbreviation is an inline node rendered as <abbr title="...">.
type Abbreviation struct {
	ast.BaseInline
	Title string
}

// KindAbbreviation is the NodeKind of Abbreviation.
var KindAbbreviation = ast.NewNodeKind("Abbreviation")

// Kind implements ast.Node.
func (n *Abbreviation) Kind() ast.NodeKind {
	return KindAbbreviation
}

// Dump implements ast.Node.
func (n *Abbreviation) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Title": n.Title}, nil)
}

// abbreviationTransformer wraps whole-word occurrences of defined
// abbreviations in Abbreviation nodes. Code spans are skipped.
type abbreviationTransformer struct{}

func (abbreviationTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	abbrs, _ := pc.Get(abbreviationsKey).(map[string]string)
	if len(abbrs) == 0 {
		return
	}
	pattern := abbreviationPattern(abbrs)
	source := reader.Source()

	var texts []*ast.Text
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeSpan, ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindHTMLBlock, KindAbbreviation:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			if t := n.(*ast.Text); !t.IsRaw() {
				texts = append(texts, t)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, t := range texts {
		splitAbbreviations(t, source, pattern, abbrs)
	}
}

// abbreviationPattern matches any defined abbreviation as a whole word,
// preferring the longest.
func abbreviationPattern(abbrs map[string]string) *regexp.Regexp {
	names := make([]string, 0, len(abbrs))
	for name := range abbrs {
		names = append(names, regexp.QuoteMeta(name))
	}
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`)
}

// splitAbbreviations replaces t with text and Abbreviation siblings.
func splitAbbreviations(t *ast.Text, source []byte, pattern *regexp.Regexp, abbrs map[string]string) {
	seg := t.Segment
	value := seg.Value(source)
	matches := pattern.FindAllIndex(value, -1)
	if len(matches) == 0 {
		return
	}

	parent := t.Parent()
	last := 0
	for _, m := range matches {
		if m[0] > last {
			parent.InsertBefore(parent, t, ast.NewTextSegment(text.NewSegment(seg.Start+last, seg.Start+m[0])))
		}
		abbr := &Abbreviation{Title: abbrs[string(value[m[0]:m[1]])]}
		abbr.AppendChild(abbr, ast.NewTextSegment(text.NewSegment(seg.Start+m[0], seg.Start+m[1])))
		parent.InsertBefore(parent, t, abbr)
		last = m[1]
	}

	// The remainder keeps the line break flags of the original text.
	rest := ast.NewTextSegment(text.NewSegment(seg.Start+last, seg.Stop))
	rest.SetSoftLineBreak(t.SoftLineBreak())
	rest.SetHardLineBreak(t.HardLineBreak())
	parent.ReplaceChild(parent, t, rest)
}

// abbreviationRenderer renders Abbreviation nodes.
type abbreviationRenderer struct{}

func (abbreviationRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAbbreviation, renderAbbreviation)
}

func renderAbbreviation(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<abbr title="`)
		_, _ = w.Write(util.EscapeHTML([]byte(n.(*Abbreviation).Title)))
		_, _ = w.WriteString(`">`)
	} else {
		_, _ = w.WriteString("</abbr>")
	}
	return ast.WalkContinue, nil
}

type abbreviations struct{}

// Abbreviations is a goldmark extension that marks up abbreviations defined
// with *[ABBR]: Expansion lines. Definitions are read from the parser
// context under abbreviationsKey.
var Abbreviations goldmark.Extender = abbreviations{}

func (abbreviations) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(abbreviationTransformer{}, 999),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(abbreviationRenderer{}, 500),
	))
}
