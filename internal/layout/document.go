package layout

import (
	"errors"

	"github.com/alnah/go-compactpdf/internal/style"
)

// Sentinel errors for layout.
var (
	ErrResource   = errors.New("resource unavailable")
	ErrNoDocument = errors.New("document has no html element")
)

// Font identifies a face at a size. Family is "sans" or "mono".
type Font struct {
	Family string
	Bold   bool
	Italic bool
	Size   float64
}

// Style returns the fpdf style string of the face: "", "B", "I" or "BI".
func (f Font) Style() string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

// Fonts measures text. Widths and metrics are in points.
type Fonts interface {
	Width(text string, f Font) float64
	Metrics(f Font) (ascent, descent float64)
	HasGlyph(r rune, f Font) bool
}

// Image is a decoded image ready to embed.
// Format is one of "png", "jpg" or "gif".
type Image struct {
	Key    string
	Format string
	Data   []byte
	Width  int // pixels
	Height int // pixels
}

// ImageLoader resolves an <img src> value.
type ImageLoader interface {
	Load(src string) (*Image, error)
}

// Token is one highlighted fragment of source code.
type Token struct {
	Text   string
	Color  style.Color
	Bold   bool
	Italic bool
}

// Highlighter tokenizes code for a language. It returns nil when the
// language is unknown.
type Highlighter interface {
	Highlight(language, code string) []Token
}

// Options configures a layout run.
type Options struct {
	PageWidth   float64
	PageHeight  float64
	Margins     [4]float64 // top, right, bottom, left
	Cascade     *style.Cascade
	Fonts       Fonts
	Images      ImageLoader
	Highlighter Highlighter
}

// ContentWidth returns the width of the page content box.
func (o Options) ContentWidth() float64 {
	return o.PageWidth - o.Margins[style.Left] - o.Margins[style.Right]
}

// ContentHeight returns the height of the page content box.
func (o Options) ContentHeight() float64 {
	return o.PageHeight - o.Margins[style.Top] - o.Margins[style.Bottom]
}

// ItemKind tells painters how to draw an Item.
type ItemKind int

// Item kinds.
const (
	TextItem ItemKind = iota
	RectItem
	LineItem
	ImageItem
	LinkItem
)

// Item is one positioned drawing primitive. Coordinates are in points from
// the top-left corner of the page.
//
// Text items draw Text at baseline (X, Y) and are W wide.
// Rect items fill (X, Y, W, H) with Color.
// Line items stroke from (X, Y) to (X2, Y2) with Width and Color.
// Image items draw Image into (X, Y, W, H).
// Link items make (X, Y, W, H) clickable: URL for external targets, Anchor
// for internal ones.
type Item struct {
	Kind   ItemKind
	X, Y   float64
	W, H   float64
	X2, Y2 float64
	Width  float64
	Text   string
	Font   Font
	Color  style.Color
	Image  *Image
	URL    string
	Anchor string
}

// Page is one laid-out page.
type Page struct {
	Items []Item
}

// Anchor is the position of an element id.
type Anchor struct {
	Page int
	Y    float64
}

// Grid describes a laid-out table.
type Grid struct {
	Rows     int
	Cols     int
	Bordered bool
	Cells    [][]string
}

// Document is the result of layout.
type Document struct {
	Title      string
	PageWidth  float64
	PageHeight float64
	Pages      []*Page
	Grids      []Grid
	Anchors    map[string]Anchor
}

// Text returns the concatenated text items of page i, separated by spaces.
// It is meant for inspection in tests and diagnostics.
func (d *Document) Text(i int) string {
	if i < 0 || i >= len(d.Pages) {
		return ""
	}
	var out []byte
	for _, it := range d.Pages[i].Items {
		if it.Kind != TextItem {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, it.Text...)
	}
	return string(out)
}
