package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alnah/go-compactpdf/internal/style"
)

// PageSize is a paper size in points, portrait.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

// Supported paper sizes.
var (
	A3     = PageSize{"a3", 841.89, 1190.55}
	A4     = PageSize{"a4", 595.28, 841.89}
	A5     = PageSize{"a5", 420.94, 595.28}
	Letter = PageSize{"letter", 612, 792}
	Legal  = PageSize{"legal", 612, 1008}
)

var pageSizes = map[string]PageSize{
	"a3":     A3,
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"legal":  Legal,
}

// ParsePageSize returns the paper size with the given name (case-insensitive).
func ParsePageSize(name string) (PageSize, error) {
	if ps, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return ps, nil
	}
	return PageSize{}, fmt.Errorf("%w: %q (must be a3, a4, a5, letter or legal)", ErrInvalidPage, name)
}

// PageSizeNames returns the accepted paper size names, sorted.
func PageSizeNames() []string {
	return slices.Sorted(maps.Keys(pageSizes))
}

// defaultMargin applies to page sides the stylesheets leave unset.
const defaultMargin = 36.0 // 0.5in

// pageBox is the resolved geometry of every page.
type pageBox struct {
	width, height float64
	margins       [4]float64
}

// resolvePage applies the @page rules of sheets on top of the default paper
// size. Later sheets win unless an earlier declaration is important.
func resolvePage(sheets []*style.Stylesheet, fallback PageSize) pageBox {
	pb := pageBox{width: fallback.Width, height: fallback.Height}
	if d, ok := pageDeclaration(sheets, "size"); ok {
		fields := strings.Fields(d.Value.Keyword)
		if len(fields) > 0 {
			if ps, ok := pageSizes[fields[0]]; ok {
				pb.width, pb.height = ps.Width, ps.Height
			}
		}
		if len(fields) > 0 && fields[len(fields)-1] == "landscape" {
			pb.width, pb.height = pb.height, pb.width
		}
	}
	for i, side := range []string{"top", "right", "bottom", "left"} {
		pb.margins[i] = defaultMargin
		if d, ok := pageDeclaration(sheets, "margin-"+side); ok {
			pb.margins[i] = d.Value.Length.Points(pb.width)
		}
	}
	return pb
}

func pageDeclaration(sheets []*style.Stylesheet, property string) (style.Declaration, bool) {
	var found style.Declaration
	ok := false
	for _, s := range sheets {
		if d, has := s.PageDeclaration(property); has {
			if !ok || !found.Important || d.Important {
				found, ok = d, true
			}
		}
	}
	return found, ok
}
