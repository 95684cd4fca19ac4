package layout

import (
	"math"

	"github.com/alnah/go-compactpdf/internal/style"
)

// fixed returns a length in points, or 0 for percentages and auto, which
// have no intrinsic value.
func fixed(l style.Length) float64 {
	if l.IsAuto() || l.IsPercent() {
		return 0
	}
	return l.Points(0)
}

// horizontalEdges is the sum of the fixed margins, borders and paddings of
// a box on the left and right.
func horizontalEdges(cs *style.Computed) float64 {
	return fixed(cs.Margin[style.Left]) + fixed(cs.Margin[style.Right]) +
		cs.Border[style.Left].Width + cs.Border[style.Right].Width +
		fixed(cs.Padding[style.Left]) + fixed(cs.Padding[style.Right])
}

// intrinsic returns the narrowest width a box can take without overflowing
// and the width it takes when nothing wraps.
func (f *flow) intrinsic(b *box) (minW, maxW float64) {
	switch b.kind {
	case paraBox:
		return f.paragraphIntrinsic(b)
	case imageBox:
		w, _ := imageSize(b.image, b.style, b.attrW, b.attrH, math.Inf(1), f.pageH)
		minW = w
		if !b.style.MaxWidth.IsAuto() && b.style.MaxWidth.IsPercent() {
			minW = 0
		}
		e := horizontalEdges(b.style)
		return minW + e, w + e
	case tableBox:
		for _, r := range b.rows {
			var lo, hi float64
			for _, c := range r.cells {
				cl, ch := f.intrinsic(c.box)
				e := cellEdges(c.box.style, b.style.BorderCollapse)
				lo += cl + e
				hi += ch + e
			}
			minW, maxW = math.Max(minW, lo), math.Max(maxW, hi)
		}
		for _, c := range b.caption {
			lo, _ := f.intrinsic(c)
			minW = math.Max(minW, lo)
		}
	default:
		for _, c := range b.children {
			lo, hi := f.intrinsic(c)
			minW, maxW = math.Max(minW, lo), math.Max(maxW, hi)
		}
	}
	cs := b.style
	if !cs.Width.IsAuto() && !cs.Width.IsPercent() {
		minW, maxW = cs.Width.Points(0), cs.Width.Points(0)
	}
	e := horizontalEdges(cs)
	return minW + e, maxW + e
}

func (f *flow) paragraphIntrinsic(b *box) (minW, maxW float64) {
	segs, _ := f.segments(b.runs, math.Inf(1))
	lineW := 0.0
	for _, s := range segs {
		w := s.width - s.hang
		if s.wrap {
			minW = math.Max(minW, w)
		} else {
			minW = math.Max(minW, lineW+w)
		}
		maxW = math.Max(maxW, lineW+w)
		lineW += s.width
		if s.forced {
			lineW = 0
		}
	}
	return minW, maxW
}
