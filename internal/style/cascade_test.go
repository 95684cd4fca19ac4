package style

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// parseDoc parses src and returns the first element with the given id.
func parseDoc(t *testing.T, src, id string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found == nil {
		t.Fatalf("no element with id %q", id)
	}
	return found
}

// computeChain computes styles from the root down to n.
func computeChain(c *Cascade, n *html.Node) *Computed {
	var chain []*html.Node
	for e := n; e != nil; e = e.Parent {
		if e.Type == html.ElementNode {
			chain = append(chain, e)
		}
	}
	var computed *Computed
	for i := len(chain) - 1; i >= 0; i-- {
		computed = c.Compute(chain[i], computed)
	}
	return computed
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSelector_Matches(t *testing.T) {
	t.Parallel()

	const doc = `<html><body>
<div class="a b" id="outer"><ul><li id="first"><a href="#x" id="link">x</a></li><li id="last"><span id="deep">y</span></li></ul></div>
</body></html>`

	tests := []struct {
		name     string
		selector string
		id       string
		want     bool
	}{
		{name: "type", selector: "li", id: "first", want: true},
		{name: "type mismatch", selector: "p", id: "first", want: false},
		{name: "universal", selector: "*", id: "deep", want: true},
		{name: "id", selector: "#outer", id: "outer", want: true},
		{name: "classes", selector: "div.a.b", id: "outer", want: true},
		{name: "missing class", selector: ".c", id: "outer", want: false},
		{name: "descendant", selector: "div span", id: "deep", want: true},
		{name: "child", selector: "ul > li", id: "last", want: true},
		{name: "child not descendant", selector: "div > li", id: "last", want: false},
		{name: "mixed combinators", selector: "div ul > li > span", id: "deep", want: true},
		{name: "first child", selector: "li:first-child", id: "first", want: true},
		{name: "first child mismatch", selector: "li:first-child", id: "last", want: false},
		{name: "last child", selector: "li:last-child", id: "last", want: true},
		{name: "link", selector: "a:link", id: "link", want: true},
		{name: "hover never matches", selector: "a:hover", id: "link", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sheet, err := Parse(tt.selector + " { color: red }")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			n := parseDoc(t, doc, tt.id)
			if got := sheet.Rules[0].Selectors[0].Matches(n); got != tt.want {
				t.Errorf("%q matches #%s = %v, want %v", tt.selector, tt.id, got, tt.want)
			}
		})
	}
}

func TestSelector_Specificity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		want     int
	}{
		{selector: "p", want: 1},
		{selector: "ul li", want: 2},
		{selector: ".x", want: 100},
		{selector: "a:hover", want: 101},
		{selector: "#main p.x", want: 10101},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()

			sheet := MustParse(tt.selector + " { color: red }")
			if got := sheet.Rules[0].Selectors[0].Specificity(); got != tt.want {
				t.Errorf("Specificity(%q) = %d, want %d", tt.selector, got, tt.want)
			}
		})
	}
}

func TestCascade_Precedence(t *testing.T) {
	t.Parallel()

	const doc = `<html><body><p id="p" class="note">x</p><p id="q" style="color: #00ff00">y</p></body></html>`

	tests := []struct {
		name   string
		sheets []string
		id     string
		want   Color
	}{
		{
			name:   "later origin wins",
			sheets: []string{"p { color: red }", "p { color: blue }"},
			id:     "p",
			want:   RGB(0, 0, 255),
		},
		{
			name:   "specificity beats order",
			sheets: []string{"p.note { color: red } p { color: blue }"},
			id:     "p",
			want:   RGB(255, 0, 0),
		},
		{
			name:   "source order breaks ties",
			sheets: []string{"p { color: red } p { color: blue }"},
			id:     "p",
			want:   RGB(0, 0, 255),
		},
		{
			name:   "important beats later origin",
			sheets: []string{"p { color: red !important }", "p.note { color: blue }"},
			id:     "p",
			want:   RGB(255, 0, 0),
		},
		{
			name:   "style attribute beats selectors",
			sheets: []string{"#q { color: red }"},
			id:     "q",
			want:   RGB(0, 255, 0),
		},
		{
			name:   "inherited from body",
			sheets: []string{"body { color: #555 }"},
			id:     "p",
			want:   RGB(0x55, 0x55, 0x55),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var sheets []*Stylesheet
			for _, src := range tt.sheets {
				sheets = append(sheets, MustParse(src))
			}
			got := computeChain(NewCascade(sheets...), parseDoc(t, doc, tt.id))
			if got.Color != tt.want {
				t.Errorf("color = %v, want %v", got.Color, tt.want)
			}
		})
	}
}

func TestCascade_CompactStylesheet(t *testing.T) {
	t.Parallel()

	const doc = `<html><head></head><body>
<h1 id="h1">Title</h1>
<h2 id="h2">Section</h2>
<p id="p">Text with <code id="code">x</code> and <a id="a" href="https://example.com">link</a></p>
<pre id="pre"><code id="precode">y</code></pre>
<table><tr><th id="th">h</th></tr></table>
</body></html>`

	cascade := NewCascade(UserAgent(), Compact())

	t.Run("body", func(t *testing.T) {
		t.Parallel()

		body := computeChain(cascade, parseDoc(t, doc, "p").Parent)
		if body.FontSize != 9 {
			t.Errorf("body font-size = %v, want 9", body.FontSize)
		}
		if body.Margin[Top].Points(0) != 0 || body.Margin[Left].Points(0) != 0 {
			t.Errorf("body margin = %v, want 0", body.Margin)
		}
		if body.Monospace() {
			t.Error("body font should be sans")
		}
		if !approx(body.LineHeight(), 10.8) {
			t.Errorf("body line-height = %v, want 10.8", body.LineHeight())
		}
	})

	t.Run("h1", func(t *testing.T) {
		t.Parallel()

		h1 := computeChain(cascade, parseDoc(t, doc, "h1"))
		if !approx(h1.FontSize, 14.4) {
			t.Errorf("h1 font-size = %v, want 14.4", h1.FontSize)
		}
		if h1.TextAlign != "center" {
			t.Errorf("h1 text-align = %q, want center", h1.TextAlign)
		}
		if !h1.Bold {
			t.Error("h1 should be bold")
		}
		if h1.Margin[Top].Points(0) != 0 {
			t.Errorf("h1 margin-top = %v, want 0", h1.Margin[Top])
		}
		if h1.BreakAfter != "avoid" {
			t.Errorf("h1 page-break-after = %q, want avoid", h1.BreakAfter)
		}
	})

	t.Run("h2 border", func(t *testing.T) {
		t.Parallel()

		h2 := computeChain(cascade, parseDoc(t, doc, "h2"))
		b := h2.Border[Bottom]
		if !approx(b.Width, 0.375) || b.Color != RGB(0xcc, 0xcc, 0xcc) || !b.Visible() {
			t.Errorf("h2 border-bottom = %+v, want 0.375pt #cccccc", b)
		}
		if h2.Border[Top].Visible() {
			t.Error("h2 should have no top border")
		}
	})

	t.Run("inline code", func(t *testing.T) {
		t.Parallel()

		code := computeChain(cascade, parseDoc(t, doc, "code"))
		if !code.Monospace() {
			t.Error("code should be monospace")
		}
		if !approx(code.FontSize, 8.1) {
			t.Errorf("code font-size = %v, want 8.1", code.FontSize)
		}
		if code.Background != RGB(0xf0, 0xf0, 0xf0) {
			t.Errorf("code background = %v, want #f0f0f0", code.Background)
		}
	})

	t.Run("code inside pre", func(t *testing.T) {
		t.Parallel()

		code := computeChain(cascade, parseDoc(t, doc, "precode"))
		if code.Background.Opaque {
			t.Errorf("pre code background = %v, want transparent", code.Background)
		}
		if code.WhiteSpace != "pre-wrap" {
			t.Errorf("pre code white-space = %q, want pre-wrap", code.WhiteSpace)
		}
		if !approx(code.FontSize, 9*0.85) {
			t.Errorf("pre code font-size = %v, want %v", code.FontSize, 9*0.85)
		}
	})

	t.Run("link", func(t *testing.T) {
		t.Parallel()

		a := computeChain(cascade, parseDoc(t, doc, "a"))
		if a.Color != RGB(0, 0x66, 0xcc) {
			t.Errorf("a color = %v, want #0066cc", a.Color)
		}
		if a.Underline {
			t.Error("a should not be underlined in print")
		}
	})

	t.Run("table header", func(t *testing.T) {
		t.Parallel()

		th := computeChain(cascade, parseDoc(t, doc, "th"))
		if th.TextAlign != "left" {
			t.Errorf("th text-align = %q, want left", th.TextAlign)
		}
		if th.Display != "table-cell" {
			t.Errorf("th display = %q, want table-cell", th.Display)
		}
		if th.Background != RGB(0xf2, 0xf2, 0xf2) {
			t.Errorf("th background = %v, want #f2f2f2", th.Background)
		}
		if !approx(th.Padding[Left].Points(0), 3) {
			t.Errorf("th padding-left = %v, want 3pt", th.Padding[Left])
		}
	})
}

func TestCompact_PageMargin(t *testing.T) {
	t.Parallel()

	for _, prop := range []string{"margin-top", "margin-right", "margin-bottom", "margin-left"} {
		d, ok := Compact().PageDeclaration(prop)
		if !ok {
			t.Fatalf("compact stylesheet has no @page %s", prop)
		}
		if got := d.Value.Length.Points(0); !approx(got, 14.4) {
			t.Errorf("@page %s = %vpt, want 14.4pt", prop, got)
		}
	}
}

func TestCompact_StringIsVersioned(t *testing.T) {
	t.Parallel()

	if !strings.HasPrefix(Compact().String(), "/* compact v1") {
		t.Errorf("compact stylesheet should start with its version comment, got %q",
			Compact().String()[:20])
	}
	if CompactVersion != 1 {
		t.Errorf("CompactVersion = %d, want 1", CompactVersion)
	}
}

func TestLength_Absolute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Length
		want float64
	}{
		{in: Length{Value: 4, Unit: UnitPx}, want: 3},
		{in: Length{Value: 1, Unit: UnitIn}, want: 72},
		{in: Length{Value: 2.54, Unit: UnitCm}, want: 72},
		{in: Length{Value: 25.4, Unit: UnitMm}, want: 72},
		{in: Length{Value: 1, Unit: UnitPc}, want: 12},
		{in: Length{Value: 0.5, Unit: UnitEm}, want: 5},
		{in: Length{Value: 1, Unit: UnitEx}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.in.Absolute(10).Value; !approx(got, tt.want) {
				t.Errorf("%v.Absolute(10) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := (Length{Value: 50, Unit: UnitPercent}).Points(200); got != 100 {
		t.Errorf("50%% of 200 = %v, want 100", got)
	}
	if got := Auto.Points(200); got != 0 {
		t.Errorf("auto = %v, want 0", got)
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Color
	}{
		{input: "#fff", want: RGB(255, 255, 255)},
		{input: "#0066CC", want: RGB(0, 0x66, 0xcc)},
		{input: "navy", want: RGB(0, 0, 128)},
		{input: "transparent", want: Transparent},
		{input: "rgb(1, 2, 3)", want: RGB(1, 2, 3)},
		{input: "rgba(1, 2, 3, 0)", want: Transparent},
		{input: "rgb(100%, 0%, 0%)", want: RGB(255, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			decls, err := ParseDeclarations("color: " + tt.input)
			if err != nil {
				t.Fatalf("ParseDeclarations() error = %v", err)
			}
			if got := decls[0].Value.Color; got != tt.want {
				t.Errorf("color %q = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
