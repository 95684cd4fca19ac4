package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Unit identifies the unit of a Length.
type Unit int

// Length units. UnitAuto marks the "auto" keyword where a length is allowed.
const (
	UnitNone Unit = iota
	UnitPt
	UnitPx
	UnitIn
	UnitCm
	UnitMm
	UnitPc
	UnitEm
	UnitEx
	UnitPercent
	UnitAuto
)

// Conversion factors to points.
const (
	pointsPerInch = 72.0
	pointsPerPx   = 0.75
)

var unitNames = map[string]Unit{
	"pt": UnitPt,
	"px": UnitPx,
	"in": UnitIn,
	"cm": UnitCm,
	"mm": UnitMm,
	"pc": UnitPc,
	"em": UnitEm,
	"ex": UnitEx,
}

// Length is a CSS length or percentage.
type Length struct {
	Value float64
	Unit  Unit
}

// Auto is the "auto" length.
var Auto = Length{Unit: UnitAuto}

// Pt returns a length in points.
func Pt(v float64) Length {
	return Length{Value: v, Unit: UnitPt}
}

// IsAuto reports whether l is "auto".
func (l Length) IsAuto() bool {
	return l.Unit == UnitAuto
}

// IsPercent reports whether l is a percentage.
func (l Length) IsPercent() bool {
	return l.Unit == UnitPercent
}

// Absolute converts font-relative and absolute units to points.
// Percentages and auto are returned unchanged.
func (l Length) Absolute(fontSize float64) Length {
	switch l.Unit {
	case UnitPercent, UnitAuto:
		return l
	case UnitNone:
		return Pt(l.Value)
	case UnitPx:
		return Pt(l.Value * pointsPerPx)
	case UnitIn:
		return Pt(l.Value * pointsPerInch)
	case UnitCm:
		return Pt(l.Value * pointsPerInch / 2.54)
	case UnitMm:
		return Pt(l.Value * pointsPerInch / 25.4)
	case UnitPc:
		return Pt(l.Value * 12)
	case UnitEm:
		return Pt(l.Value * fontSize)
	case UnitEx:
		return Pt(l.Value * fontSize / 2)
	}
	return l
}

// Points resolves l in points. Percentages resolve against ref; auto is 0.
// Font-relative units must have been made absolute first.
func (l Length) Points(ref float64) float64 {
	switch l.Unit {
	case UnitAuto:
		return 0
	case UnitPercent:
		return ref * l.Value / 100
	case UnitPt:
		return l.Value
	}
	return l.Absolute(0).Value
}

func (l Length) String() string {
	switch l.Unit {
	case UnitAuto:
		return "auto"
	case UnitPercent:
		return formatNumber(l.Value) + "%"
	case UnitNone:
		return formatNumber(l.Value)
	}
	for name, u := range unitNames {
		if u == l.Unit {
			return formatNumber(l.Value) + name
		}
	}
	return formatNumber(l.Value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Color is an sRGB color. The zero value is transparent.
type Color struct {
	R, G, B uint8
	Opaque  bool
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Opaque: true}
}

// Black is the initial text color.
var Black = RGB(0, 0, 0)

// Transparent is the initial background color.
var Transparent = Color{}

func (c Color) String() string {
	if !c.Opaque {
		return "transparent"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var namedColors = map[string]Color{
	"black":   RGB(0, 0, 0),
	"white":   RGB(255, 255, 255),
	"red":     RGB(255, 0, 0),
	"green":   RGB(0, 128, 0),
	"blue":    RGB(0, 0, 255),
	"gray":    RGB(128, 128, 128),
	"grey":    RGB(128, 128, 128),
	"silver":  RGB(192, 192, 192),
	"maroon":  RGB(128, 0, 0),
	"navy":    RGB(0, 0, 128),
	"yellow":  RGB(255, 255, 0),
	"orange":  RGB(255, 165, 0),
	"purple":  RGB(128, 0, 128),
	"teal":    RGB(0, 128, 128),
	"olive":   RGB(128, 128, 0),
	"lime":    RGB(0, 255, 0),
	"aqua":    RGB(0, 255, 255),
	"fuchsia": RGB(255, 0, 255),
}

// component is one significant token of a declaration value.
// Function tokens carry their arguments.
type component struct {
	typ  css.TokenType
	text string
	args []component
}

func (c component) isIdent(names ...string) bool {
	if c.typ != css.IdentToken {
		return false
	}
	if len(names) == 0 {
		return true
	}
	lower := strings.ToLower(c.text)
	for _, n := range names {
		if lower == n {
			return true
		}
	}
	return false
}

func (c component) String() string {
	if c.typ != css.FunctionToken {
		return c.text
	}
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.String()
	}
	return c.text + strings.Join(parts, " ") + ")"
}

func joinComponents(cs []component) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// parseLength parses a dimension, percentage or unitless zero.
func parseLength(c component) (Length, error) {
	switch c.typ {
	case css.NumberToken:
		v, err := strconv.ParseFloat(c.text, 64)
		if err != nil || v != 0 {
			return Length{}, fmt.Errorf("%w: length %q needs a unit", ErrInvalidValue, c.text)
		}
		return Length{Unit: UnitNone}, nil
	case css.PercentageToken:
		v, err := strconv.ParseFloat(strings.TrimSuffix(c.text, "%"), 64)
		if err != nil {
			return Length{}, fmt.Errorf("%w: percentage %q", ErrInvalidValue, c.text)
		}
		return Length{Value: v, Unit: UnitPercent}, nil
	case css.DimensionToken:
		num, unit := splitDimension(c.text)
		u, ok := unitNames[strings.ToLower(unit)]
		if !ok {
			return Length{}, fmt.Errorf("%w: unit %q", ErrUnsupported, unit)
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return Length{}, fmt.Errorf("%w: length %q", ErrInvalidValue, c.text)
		}
		return Length{Value: v, Unit: u}, nil
	}
	return Length{}, fmt.Errorf("%w: expected length, got %q", ErrInvalidValue, c.String())
}

// splitDimension splits "0.2in" into "0.2" and "in".
func splitDimension(s string) (string, string) {
	i := 0
	for i < len(s) {
		ch := s[i]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '+' || ch == '-' {
			i++
			continue
		}
		if (ch == 'e' || ch == 'E') && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// parseNumber parses a unitless number.
func parseNumber(c component) (float64, error) {
	if c.typ != css.NumberToken {
		return 0, fmt.Errorf("%w: expected number, got %q", ErrInvalidValue, c.String())
	}
	v, err := strconv.ParseFloat(c.text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", ErrInvalidValue, c.text)
	}
	return v, nil
}

// parseColor parses hex, named, rgb() and rgba() colors.
func parseColor(c component) (Color, error) {
	switch c.typ {
	case css.HashToken:
		return parseHexColor(strings.TrimPrefix(c.text, "#"))
	case css.IdentToken:
		name := strings.ToLower(c.text)
		if name == "transparent" {
			return Transparent, nil
		}
		if col, ok := namedColors[name]; ok {
			return col, nil
		}
	case css.FunctionToken:
		name := strings.ToLower(c.text)
		if name == "rgb(" || name == "rgba(" {
			return parseRGBFunction(c.args)
		}
	}
	return Color{}, fmt.Errorf("%w: color %q", ErrInvalidValue, c.String())
}

func parseHexColor(hex string) (Color, error) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: color #%s", ErrInvalidValue, hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: color #%s", ErrInvalidValue, hex)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func parseRGBFunction(args []component) (Color, error) {
	var channels []float64
	for _, a := range args {
		switch a.typ {
		case css.CommaToken:
			continue
		case css.NumberToken:
			v, err := strconv.ParseFloat(a.text, 64)
			if err != nil {
				return Color{}, fmt.Errorf("%w: rgb channel %q", ErrInvalidValue, a.text)
			}
			channels = append(channels, v)
		case css.PercentageToken:
			v, err := strconv.ParseFloat(strings.TrimSuffix(a.text, "%"), 64)
			if err != nil {
				return Color{}, fmt.Errorf("%w: rgb channel %q", ErrInvalidValue, a.text)
			}
			channels = append(channels, v*255/100)
		case css.DelimToken:
			if a.text == "/" {
				continue
			}
			return Color{}, fmt.Errorf("%w: rgb channel %q", ErrInvalidValue, a.text)
		default:
			return Color{}, fmt.Errorf("%w: rgb channel %q", ErrInvalidValue, a.String())
		}
	}
	if len(channels) != 3 && len(channels) != 4 {
		return Color{}, fmt.Errorf("%w: rgb() needs 3 or 4 channels", ErrInvalidValue)
	}
	if len(channels) == 4 && channels[3] == 0 {
		return Transparent, nil
	}
	return RGB(clampChannel(channels[0]), clampChannel(channels[1]), clampChannel(channels[2])), nil
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
