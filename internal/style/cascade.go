package style

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Side indexes the four box edges in CSS order.
type Side int

// Box sides.
const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Border is the computed border of one box side.
type Border struct {
	Width float64
	Style string
	Color Color
}

// Visible reports whether the border paints anything.
func (b Border) Visible() bool {
	return b.Width > 0 && b.Color.Opaque
}

// Computed holds the computed values of an element. Lengths are in points
// except percentages, which are resolved during layout, and Auto.
type Computed struct {
	Display      string
	FontFamilies []string
	FontSize     float64
	Bold         bool
	Italic       bool
	Color        Color
	Background   Color
	TextAlign    string
	WhiteSpace   string
	Underline    bool
	LineThrough  bool

	Width    Length
	Height   Length
	MaxWidth Length // Auto means none
	Margin   [4]Length
	Padding  [4]Length
	Border   [4]Border

	ListStyleType  string
	VerticalAlign  string
	BreakBefore    string
	BreakAfter     string
	BreakInside    string
	BorderCollapse bool

	// line-height is either a factor of the font size or an absolute length.
	lineHeightFactor float64
	lineHeightPt     float64
}

// Initial returns the initial values of every property.
func Initial() *Computed {
	zero := Pt(0)
	return &Computed{
		Display:          "inline",
		FontFamilies:     []string{"serif"},
		FontSize:         12,
		Color:            Black,
		Background:       Transparent,
		TextAlign:        "left",
		WhiteSpace:       "normal",
		Width:            Auto,
		Height:           Auto,
		MaxWidth:         Auto,
		Margin:           [4]Length{zero, zero, zero, zero},
		Padding:          [4]Length{zero, zero, zero, zero},
		ListStyleType:    "disc",
		VerticalAlign:    "baseline",
		BreakBefore:      "auto",
		BreakAfter:       "auto",
		BreakInside:      "auto",
		lineHeightFactor: 1.2,
	}
}

// inherit returns the initial style with inherited properties copied from parent.
func inherit(parent *Computed) *Computed {
	c := Initial()
	if parent == nil {
		return c
	}
	c.FontFamilies = parent.FontFamilies
	c.FontSize = parent.FontSize
	c.Bold = parent.Bold
	c.Italic = parent.Italic
	c.Color = parent.Color
	c.TextAlign = parent.TextAlign
	c.WhiteSpace = parent.WhiteSpace
	c.ListStyleType = parent.ListStyleType
	c.BorderCollapse = parent.BorderCollapse
	c.Underline = parent.Underline
	c.LineThrough = parent.LineThrough
	c.lineHeightFactor = parent.lineHeightFactor
	c.lineHeightPt = parent.lineHeightPt
	return c
}

// LineHeight returns the used line height in points.
func (c *Computed) LineHeight() float64 {
	if c.lineHeightFactor > 0 {
		return c.lineHeightFactor * c.FontSize
	}
	return c.lineHeightPt
}

// Monospace reports whether the first known family is a monospace face.
func (c *Computed) Monospace() bool {
	for _, f := range c.FontFamilies {
		switch strings.ToLower(f) {
		case "monospace", "courier", "courier new", "consolas", "menlo", "monaco",
			"dejavu sans mono", "liberation mono", "go mono":
			return true
		case "sans-serif", "serif", "arial", "helvetica", "times", "times new roman",
			"georgia", "verdana", "go":
			return false
		}
	}
	return false
}

// Inline reports whether the element participates in inline layout.
func (c *Computed) Inline() bool {
	return c.Display == "inline" || c.Display == "inline-block"
}

// Cascade computes element styles from an ordered list of stylesheets.
// Later sheets take precedence over earlier ones at equal importance.
type Cascade struct {
	sheets []*Stylesheet
}

// NewCascade returns a cascade over sheets in origin order.
func NewCascade(sheets ...*Stylesheet) *Cascade {
	return &Cascade{sheets: sheets}
}

// candidate is a matched declaration with its cascade sort key.
type candidate struct {
	decl        Declaration
	origin      int
	specificity int
	order       int
}

// inlineSpecificity ranks style attributes above any selector.
const inlineSpecificity = 1 << 30

// Compute returns the computed style of element n whose parent computed
// style is parent (nil for the root). Invalid style attributes are ignored.
func (cs *Cascade) Compute(n *html.Node, parent *Computed) *Computed {
	var cands []candidate
	order := 0
	for origin, sheet := range cs.sheets {
		for _, rule := range sheet.Rules {
			spec := -1
			for _, sel := range rule.Selectors {
				if s := sel.Specificity(); s > spec && sel.Matches(n) {
					spec = s
				}
			}
			if spec >= 0 {
				for _, d := range rule.Declarations {
					cands = append(cands, candidate{decl: d, origin: origin, specificity: spec, order: order})
					order++
				}
			}
		}
	}
	if inline := attr(n, "style"); inline != "" {
		if decls, err := ParseDeclarations(inline); err == nil {
			for _, d := range decls {
				cands = append(cands, candidate{decl: d, origin: len(cs.sheets), specificity: inlineSpecificity, order: order})
				order++
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.decl.Important != b.decl.Important {
			return !a.decl.Important
		}
		if a.origin != b.origin {
			return a.origin < b.origin
		}
		if a.specificity != b.specificity {
			return a.specificity < b.specificity
		}
		return a.order < b.order
	})

	winners := make(map[string]Declaration, len(cands))
	var props []string
	for _, cand := range cands {
		if _, seen := winners[cand.decl.Property]; !seen {
			props = append(props, cand.decl.Property)
		}
		winners[cand.decl.Property] = cand.decl
	}

	c := inherit(parent)
	parentSize := c.FontSize
	if d, ok := winners["font-size"]; ok {
		c.FontSize = fontSize(d.Value, parentSize)
	}
	borderColorSet := [4]bool{}
	for _, prop := range props {
		if prop == "font-size" {
			continue
		}
		if side, ok := borderColorSide(prop); ok && !winners[prop].Value.IsKeyword("currentcolor") {
			borderColorSet[side] = true
		}
		c.apply(prop, winners[prop].Value)
	}
	for i := range c.Border {
		if !borderColorSet[i] {
			c.Border[i].Color = c.Color
		}
		if c.Border[i].Style == "" || c.Border[i].Style == "none" || c.Border[i].Style == "hidden" {
			c.Border[i].Width = 0
		}
	}
	return c
}

func fontSize(v Value, parentSize float64) float64 {
	switch {
	case v.IsKeyword("smaller"):
		return parentSize / 1.2
	case v.IsKeyword("larger"):
		return parentSize * 1.2
	case v.Length.IsPercent():
		return parentSize * v.Length.Value / 100
	}
	return v.Length.Absolute(parentSize).Value
}

func borderColorSide(prop string) (Side, bool) {
	for i, s := range sides {
		if prop == "border-"+s+"-color" {
			return Side(i), true
		}
	}
	return 0, false
}

// apply sets one property from its winning value. font-size is already set.
func (c *Computed) apply(prop string, v Value) {
	switch prop {
	case "display":
		c.Display = v.Keyword
	case "font-family":
		c.FontFamilies = v.Families
	case "font-weight":
		switch v.Keyword {
		case "bold", "bolder":
			c.Bold = true
		default:
			c.Bold = false
		}
	case "font-style":
		c.Italic = v.Keyword != "normal"
	case "line-height":
		switch {
		case v.IsKeyword("normal"):
			c.lineHeightFactor, c.lineHeightPt = 1.2, 0
		case v.kind == kindNumber:
			c.lineHeightFactor, c.lineHeightPt = v.Number, 0
		case v.Length.IsPercent():
			c.lineHeightFactor, c.lineHeightPt = 0, c.FontSize*v.Length.Value/100
		default:
			c.lineHeightFactor, c.lineHeightPt = 0, v.Length.Absolute(c.FontSize).Value
		}
	case "color":
		c.Color = v.Color
	case "background-color":
		c.Background = v.Color
	case "text-align":
		switch v.Keyword {
		case "start", "justify":
			c.TextAlign = "left"
		case "end":
			c.TextAlign = "right"
		default:
			c.TextAlign = v.Keyword
		}
	case "text-decoration":
		for _, line := range strings.Fields(v.Keyword) {
			switch line {
			case "underline":
				c.Underline = true
			case "line-through":
				c.LineThrough = true
			}
		}
	case "white-space":
		c.WhiteSpace = v.Keyword
	case "width":
		c.Width = c.length(v)
	case "height":
		c.Height = c.length(v)
	case "max-width":
		c.MaxWidth = c.length(v)
	case "list-style-type":
		c.ListStyleType = v.Keyword
	case "vertical-align":
		c.VerticalAlign = v.Keyword
	case "page-break-before":
		c.BreakBefore = v.Keyword
	case "page-break-after":
		c.BreakAfter = v.Keyword
	case "page-break-inside":
		c.BreakInside = v.Keyword
	case "border-collapse":
		c.BorderCollapse = v.Keyword == "collapse"
	default:
		c.applySided(prop, v)
	}
}

func (c *Computed) applySided(prop string, v Value) {
	for i, s := range sides {
		switch prop {
		case "margin-" + s:
			c.Margin[i] = c.length(v)
		case "padding-" + s:
			c.Padding[i] = c.length(v)
		case "border-" + s + "-width":
			c.Border[i].Width = v.Length.Absolute(c.FontSize).Value
		case "border-" + s + "-style":
			c.Border[i].Style = v.Keyword
		case "border-" + s + "-color":
			c.Border[i].Color = v.Color
		}
	}
}

// length converts a length value to points, keeping percentages and mapping
// auto and none keywords to Auto.
func (c *Computed) length(v Value) Length {
	if v.kind == kindKeyword {
		return Auto
	}
	return v.Length.Absolute(c.FontSize)
}

// Anonymous returns the style of an anonymous block box generated inside
// an element with style parent.
func Anonymous(parent *Computed) *Computed {
	c := inherit(parent)
	c.Display = "block"
	return c
}
