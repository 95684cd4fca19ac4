package style

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// valueKind tags the variant held by a Value.
type valueKind int

const (
	kindKeyword valueKind = iota
	kindLength
	kindColor
	kindNumber
	kindFamilies
)

// Value is a validated declaration value.
type Value struct {
	kind     valueKind
	Keyword  string
	Length   Length
	Color    Color
	Number   float64
	Families []string
}

// IsKeyword reports whether v is the keyword k.
func (v Value) IsKeyword(k string) bool {
	return v.kind == kindKeyword && v.Keyword == k
}

func (v Value) String() string {
	switch v.kind {
	case kindLength:
		return v.Length.String()
	case kindColor:
		return v.Color.String()
	case kindNumber:
		return formatNumber(v.Number)
	case kindFamilies:
		return strings.Join(v.Families, ", ")
	}
	return v.Keyword
}

func keyword(k string) Value      { return Value{kind: kindKeyword, Keyword: k} }
func lengthValue(l Length) Value  { return Value{kind: kindLength, Length: l} }
func colorValue(c Color) Value    { return Value{kind: kindColor, Color: c} }
func numberValue(n float64) Value { return Value{kind: kindNumber, Number: n} }

// Declaration is one validated longhand property assignment.
type Declaration struct {
	Property  string
	Value     Value
	Important bool
}

func (d Declaration) String() string {
	s := d.Property + ": " + d.Value.String()
	if d.Important {
		s += " !important"
	}
	return s
}

type valueParser func([]component) (Value, error)

// longhands lists every property the cascade understands.
var longhands = map[string]valueParser{
	"display": keywords("block", "inline", "inline-block", "list-item", "none",
		"table", "table-row", "table-cell", "table-header-group",
		"table-row-group", "table-footer-group", "table-caption",
		"table-column", "table-column-group"),
	"font-family":         parseFamilies,
	"font-size":           parseFontSize,
	"font-weight":         parseFontWeight,
	"font-style":          keywords("normal", "italic", "oblique"),
	"line-height":         parseLineHeight,
	"color":               single(parseColorValue),
	"background-color":    single(parseColorValue),
	"text-align":          keywords("left", "right", "center", "justify", "start", "end"),
	"text-decoration":     parseTextDecoration,
	"white-space":         keywords("normal", "nowrap", "pre", "pre-wrap", "pre-line"),
	"width":               lengthOr("auto"),
	"height":              lengthOr("auto"),
	"max-width":           lengthOr("none"),
	"margin-top":          lengthOr("auto"),
	"margin-right":        lengthOr("auto"),
	"margin-bottom":       lengthOr("auto"),
	"margin-left":         lengthOr("auto"),
	"padding-top":         lengthOr(),
	"padding-right":       lengthOr(),
	"padding-bottom":      lengthOr(),
	"padding-left":        lengthOr(),
	"border-top-width":    single(parseBorderWidth),
	"border-right-width":  single(parseBorderWidth),
	"border-bottom-width": single(parseBorderWidth),
	"border-left-width":   single(parseBorderWidth),
	"border-top-style":    keywords(borderStyles...),
	"border-right-style":  keywords(borderStyles...),
	"border-bottom-style": keywords(borderStyles...),
	"border-left-style":   keywords(borderStyles...),
	"border-top-color":    single(parseColorValue),
	"border-right-color":  single(parseColorValue),
	"border-bottom-color": single(parseColorValue),
	"border-left-color":   single(parseColorValue),
	"list-style-type":     keywords(listStyleTypes...),
	"vertical-align":      keywords("baseline", "super", "sub", "top", "middle", "bottom", "text-top", "text-bottom"),
	"page-break-before":   keywords("auto", "always", "avoid", "left", "right"),
	"page-break-after":    keywords("auto", "always", "avoid", "left", "right"),
	"page-break-inside":   keywords("auto", "avoid"),
	"border-collapse":     keywords("collapse", "separate"),
}

// ignored properties are accepted and have no effect on print layout.
var ignored = map[string]bool{
	"border-radius": true,
	"overflow":      true,
	"overflow-x":    true,
	"overflow-y":    true,
	"word-wrap":     true,
	"overflow-wrap": true,
	"word-break":    true,
	"hyphens":       true,
	"cursor":        true,
	"transition":    true,
}

// pageProperties are the properties allowed inside @page.
var pageProperties = map[string]bool{
	"margin-top":    true,
	"margin-right":  true,
	"margin-bottom": true,
	"margin-left":   true,
	"size":          true,
}

var borderStyles = []string{"none", "hidden", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset"}

var listStyleTypes = []string{"disc", "circle", "square", "decimal", "lower-alpha",
	"upper-alpha", "lower-latin", "upper-latin", "lower-roman", "upper-roman", "none"}

var sides = [4]string{"top", "right", "bottom", "left"}

// expand validates a declaration and expands shorthands into longhands.
func expand(name string, value []component, important bool) ([]Declaration, error) {
	name = strings.ToLower(name)
	if len(value) == 0 {
		return nil, fmt.Errorf("%w: empty value for %s", ErrInvalidValue, name)
	}
	if ignored[name] {
		return nil, nil
	}
	mk := func(prop string, v Value) Declaration {
		return Declaration{Property: prop, Value: v, Important: important}
	}
	if p, ok := longhands[name]; ok {
		v, err := p(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Declaration{mk(name, v)}, nil
	}
	switch name {
	case "margin", "padding":
		allowAuto := name == "margin"
		vals, err := boxValues(value, allowAuto)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out := make([]Declaration, 4)
		for i, side := range sides {
			out[i] = mk(name+"-"+side, vals[i])
		}
		return out, nil
	case "border-width", "border-style", "border-color":
		part := strings.TrimPrefix(name, "border-")
		p := longhands["border-top-"+part]
		vals, err := boxComponents(value, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out := make([]Declaration, 4)
		for i, side := range sides {
			out[i] = mk("border-"+side+"-"+part, vals[i])
		}
		return out, nil
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		w, s, c, err := parseBorderShorthand(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		targets := sides[:]
		if name != "border" {
			targets = []string{strings.TrimPrefix(name, "border-")}
		}
		var out []Declaration
		for _, side := range targets {
			out = append(out,
				mk("border-"+side+"-width", w),
				mk("border-"+side+"-style", s),
				mk("border-"+side+"-color", c))
		}
		return out, nil
	case "background":
		v, err := parseBackground(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Declaration{mk("background-color", v)}, nil
	case "list-style":
		v, err := parseListStyle(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Declaration{mk("list-style-type", v)}, nil
	case "break-before", "break-after":
		v, err := parseBreak(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Declaration{mk("page-"+name, v)}, nil
	case "size":
		v, err := parsePageSize(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []Declaration{mk(name, v)}, nil
	}
	return nil, fmt.Errorf("%w: property %q", ErrUnsupported, name)
}

func single(p func(component) (Value, error)) valueParser {
	return func(cs []component) (Value, error) {
		if len(cs) != 1 {
			return Value{}, fmt.Errorf("%w: expected one value, got %q", ErrInvalidValue, joinComponents(cs))
		}
		return p(cs[0])
	}
}

func keywords(allowed ...string) valueParser {
	return single(func(c component) (Value, error) {
		if c.isIdent(allowed...) {
			return keyword(strings.ToLower(c.text)), nil
		}
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidValue, c.String())
	})
}

// lengthOr accepts a non-keyword length or one of the given keywords.
func lengthOr(kw ...string) valueParser {
	return single(func(c component) (Value, error) {
		if len(kw) > 0 && c.isIdent(kw...) {
			return keyword(strings.ToLower(c.text)), nil
		}
		l, err := parseLength(c)
		if err != nil {
			return Value{}, err
		}
		return lengthValue(l), nil
	})
}

func parseColorValue(c component) (Value, error) {
	col, err := parseColor(c)
	if err != nil {
		return Value{}, err
	}
	return colorValue(col), nil
}

func parseBorderWidth(c component) (Value, error) {
	switch {
	case c.isIdent("thin"):
		return lengthValue(Length{Value: 1, Unit: UnitPx}), nil
	case c.isIdent("medium"):
		return lengthValue(Length{Value: 3, Unit: UnitPx}), nil
	case c.isIdent("thick"):
		return lengthValue(Length{Value: 5, Unit: UnitPx}), nil
	}
	l, err := parseLength(c)
	if err != nil {
		return Value{}, err
	}
	if l.IsPercent() || l.Value < 0 {
		return Value{}, fmt.Errorf("%w: border width %q", ErrInvalidValue, c.String())
	}
	return lengthValue(l), nil
}

func parseFamilies(cs []component) (Value, error) {
	var families []string
	var words []string
	flush := func() error {
		if len(words) == 0 {
			return fmt.Errorf("%w: empty font family", ErrInvalidValue)
		}
		families = append(families, strings.Join(words, " "))
		words = nil
		return nil
	}
	for _, c := range cs {
		switch c.typ {
		case css.IdentToken:
			words = append(words, c.text)
		case css.StringToken:
			words = append(words, unquote(c.text))
		case css.CommaToken:
			if err := flush(); err != nil {
				return Value{}, err
			}
		default:
			return Value{}, fmt.Errorf("%w: font family %q", ErrInvalidValue, c.String())
		}
	}
	if err := flush(); err != nil {
		return Value{}, err
	}
	return Value{kind: kindFamilies, Families: families}, nil
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 7,
	"x-small":  7.5,
	"small":    10,
	"medium":   12,
	"large":    13.5,
	"x-large":  18,
	"xx-large": 24,
}

func parseFontSize(cs []component) (Value, error) {
	return single(func(c component) (Value, error) {
		if c.isIdent("smaller", "larger") {
			return keyword(strings.ToLower(c.text)), nil
		}
		if c.typ == css.IdentToken {
			if pt, ok := fontSizeKeywords[strings.ToLower(c.text)]; ok {
				return lengthValue(Pt(pt)), nil
			}
		}
		l, err := parseLength(c)
		if err != nil {
			return Value{}, err
		}
		if l.Value < 0 {
			return Value{}, fmt.Errorf("%w: negative font size", ErrInvalidValue)
		}
		return lengthValue(l), nil
	})(cs)
}

func parseFontWeight(cs []component) (Value, error) {
	return single(func(c component) (Value, error) {
		if c.isIdent("normal", "bold", "bolder", "lighter") {
			return keyword(strings.ToLower(c.text)), nil
		}
		n, err := parseNumber(c)
		if err != nil || n < 1 || n > 1000 {
			return Value{}, fmt.Errorf("%w: font weight %q", ErrInvalidValue, c.String())
		}
		if n >= 600 {
			return keyword("bold"), nil
		}
		return keyword("normal"), nil
	})(cs)
}

func parseLineHeight(cs []component) (Value, error) {
	return single(func(c component) (Value, error) {
		if c.isIdent("normal") {
			return keyword("normal"), nil
		}
		if c.typ == css.NumberToken {
			n, err := parseNumber(c)
			if err != nil {
				return Value{}, err
			}
			return numberValue(n), nil
		}
		l, err := parseLength(c)
		if err != nil {
			return Value{}, err
		}
		return lengthValue(l), nil
	})(cs)
}

func parseTextDecoration(cs []component) (Value, error) {
	if len(cs) == 1 && cs[0].isIdent("none") {
		return keyword("none"), nil
	}
	var lines []string
	for _, c := range cs {
		if !c.isIdent("underline", "line-through", "overline") {
			return Value{}, fmt.Errorf("%w: text decoration %q", ErrInvalidValue, c.String())
		}
		lines = append(lines, strings.ToLower(c.text))
	}
	return keyword(strings.Join(lines, " ")), nil
}

// boxValues expands the one-to-four value margin and padding syntax.
func boxValues(cs []component, allowAuto bool) ([4]Value, error) {
	p := lengthOr()
	if allowAuto {
		p = lengthOr("auto")
	}
	return boxComponents(cs, p)
}

func boxComponents(cs []component, p valueParser) ([4]Value, error) {
	var out [4]Value
	if len(cs) < 1 || len(cs) > 4 {
		return out, fmt.Errorf("%w: expected 1 to 4 values, got %d", ErrInvalidValue, len(cs))
	}
	vals := make([]Value, len(cs))
	for i, c := range cs {
		v, err := p([]component{c})
		if err != nil {
			return out, err
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		out = [4]Value{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		out = [4]Value{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		out = [4]Value{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		out = [4]Value{vals[0], vals[1], vals[2], vals[3]}
	}
	return out, nil
}

// parseBorderShorthand splits "width style color" in any order.
// Omitted parts reset to their initial values; a missing color means currentColor.
func parseBorderShorthand(cs []component) (width, style, color Value, err error) {
	width = lengthValue(Length{Value: 3, Unit: UnitPx})
	style = keyword("none")
	color = keyword("currentcolor")
	var seenW, seenS, seenC bool
	for _, c := range cs {
		switch {
		case !seenS && c.isIdent(borderStyles...):
			style, seenS = keyword(strings.ToLower(c.text)), true
		case !seenW && (c.isIdent("thin", "medium", "thick") || c.typ == css.DimensionToken || c.typ == css.NumberToken):
			v, werr := parseBorderWidth(c)
			if werr != nil {
				return width, style, color, werr
			}
			width, seenW = v, true
		case !seenC:
			v, cerr := parseColorValue(c)
			if cerr != nil {
				return width, style, color, cerr
			}
			color, seenC = v, true
		default:
			return width, style, color, fmt.Errorf("%w: border %q", ErrInvalidValue, joinComponents(cs))
		}
	}
	return width, style, color, nil
}

func parseBackground(cs []component) (Value, error) {
	if len(cs) == 1 && cs[0].isIdent("none") {
		return colorValue(Transparent), nil
	}
	if len(cs) != 1 {
		return Value{}, fmt.Errorf("%w: only a background color is supported", ErrUnsupported)
	}
	return parseColorValue(cs[0])
}

func parseListStyle(cs []component) (Value, error) {
	typ := keyword("disc")
	for _, c := range cs {
		switch {
		case c.isIdent(listStyleTypes...):
			typ = keyword(strings.ToLower(c.text))
		case c.isIdent("inside", "outside"):
		default:
			return Value{}, fmt.Errorf("%w: list style %q", ErrInvalidValue, c.String())
		}
	}
	return typ, nil
}

func parseBreak(cs []component) (Value, error) {
	return single(func(c component) (Value, error) {
		switch {
		case c.isIdent("page", "always", "left", "right"):
			return keyword("always"), nil
		case c.isIdent("avoid", "avoid-page"):
			return keyword("avoid"), nil
		case c.isIdent("auto"):
			return keyword("auto"), nil
		}
		return Value{}, fmt.Errorf("%w: break %q", ErrInvalidValue, c.String())
	})(cs)
}

// parsePageSize accepts a named page size with an optional orientation.
func parsePageSize(cs []component) (Value, error) {
	var name, orientation string
	for _, c := range cs {
		switch {
		case c.isIdent("a4", "a5", "a3", "letter", "legal"):
			name = strings.ToLower(c.text)
		case c.isIdent("portrait", "landscape"):
			orientation = strings.ToLower(c.text)
		case c.isIdent("auto"):
			name = "auto"
		default:
			return Value{}, fmt.Errorf("%w: page size %q", ErrUnsupported, c.String())
		}
	}
	if name == "" {
		name = "auto"
	}
	if orientation != "" {
		name += " " + orientation
	}
	return keyword(name), nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
