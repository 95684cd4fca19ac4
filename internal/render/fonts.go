package render

import (
	"bytes"
	"fmt"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/alnah/go-compactpdf/internal/layout"
)

// Compile-time interface check.
var _ layout.Fonts = (*Fonts)(nil)

// face is one embedded TrueType font with its parsed tables. ttf is a
// private copy read by font; it is never handed to fpdf.
type face struct {
	family  string
	style   string
	ttf     []byte
	font    *sfnt.Font
	upem    float64
	ascent  float64 // per em
	descent float64 // per em

	mu       sync.Mutex
	advances map[rune]float64 // per em; negative when the rune has no glyph
}

// Fonts measures text with the embedded Go fonts. It is safe for
// concurrent use.
type Fonts struct {
	faces map[string]*face
}

var embedded = []struct {
	family, style string
	ttf           []byte
}{
	{"sans", "", goregular.TTF},
	{"sans", "B", gobold.TTF},
	{"sans", "I", goitalic.TTF},
	{"sans", "BI", gobolditalic.TTF},
	{"mono", "", gomono.TTF},
	{"mono", "B", gomonobold.TTF},
	{"mono", "I", gomonoitalic.TTF},
	{"mono", "BI", gomonobolditalic.TTF},
}

// LoadFonts parses the embedded fonts once and returns the shared set.
var LoadFonts = sync.OnceValues(newFonts)

func newFonts() (*Fonts, error) {
	fs := &Fonts{faces: make(map[string]*face, len(embedded))}
	for _, e := range embedded {
		ttf := bytes.Clone(e.ttf)
		f, err := sfnt.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrFonts, e.family, e.style, err)
		}
		upem := float64(f.UnitsPerEm())
		var buf sfnt.Buffer
		m, err := f.Metrics(&buf, fixed.I(int(f.UnitsPerEm())), font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics: %v", ErrFonts, err)
		}
		fs.faces[e.family+e.style] = &face{
			family:   e.family,
			style:    e.style,
			ttf:      ttf,
			font:     f,
			upem:     upem,
			ascent:   fromFixed(m.Ascent) / upem,
			descent:  fromFixed(m.Descent) / upem,
			advances: make(map[rune]float64),
		}
	}
	return fs, nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func (fs *Fonts) face(f layout.Font) *face {
	if fc, ok := fs.faces[f.Family+f.Style()]; ok {
		return fc
	}
	return fs.faces["sans"+f.Style()]
}

// advance returns the advance width of r per em, or a negative value when
// the face has no glyph for r.
func (fc *face) advance(r rune) float64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if a, ok := fc.advances[r]; ok {
		return a
	}
	var buf sfnt.Buffer
	a := -1.0
	if idx, err := fc.font.GlyphIndex(&buf, r); err == nil && idx != 0 {
		if adv, err := fc.font.GlyphAdvance(&buf, idx, fixed.I(int(fc.upem)), font.HintingNone); err == nil {
			a = fromFixed(adv) / fc.upem
		}
	}
	fc.advances[r] = a
	return a
}

// Width returns the advance width of text in points.
func (fs *Fonts) Width(text string, f layout.Font) float64 {
	fc := fs.face(f)
	w := 0.0
	for _, r := range text {
		if a := fc.advance(r); a > 0 {
			w += a
		}
	}
	return w * f.Size
}

// Metrics returns the ascent and descent of the face at f.Size in points.
func (fs *Fonts) Metrics(f layout.Font) (float64, float64) {
	fc := fs.face(f)
	return fc.ascent * f.Size, fc.descent * f.Size
}

// HasGlyph reports whether the face draws r.
func (fs *Fonts) HasGlyph(r rune, f layout.Font) bool {
	if r == ' ' {
		return true
	}
	return fs.face(f).advance(r) >= 0
}

// register embeds every face into pdf. fpdf rewrites the font bytes it is
// given while writing the document, so each document gets its own copy.
func (fs *Fonts) register(pdf *fpdf.Fpdf) {
	for _, e := range embedded {
		pdf.AddUTF8FontFromBytes(e.family, e.style, bytes.Clone(fs.faces[e.family+e.style].ttf))
	}
}
