package layout

import (
	"math"

	"github.com/alnah/go-compactpdf/internal/style"
)

const (
	pxToPt      = 0.75
	markerSpace = 0.3 // em between a list marker and the item content
)

// marker is a list marker waiting for the first line of its item.
type marker struct {
	owner *box
	text  string
	font  Font
	color style.Color
	right float64
}

// flow turns boxes into a flat list of strips, collapsing vertical margins
// between them.
type flow struct {
	opts         *Options
	pageH        float64
	strips       []*strip
	pos, neg     float64
	pendingBreak bool
	ids          []string
	markers      []*marker
	grids        []Grid
}

func newFlow(opts *Options) *flow {
	return &flow{opts: opts, pageH: opts.ContentHeight()}
}

// sub returns an empty flow sharing the options, used for table cells.
func (f *flow) sub() *flow {
	return &flow{opts: f.opts, pageH: f.pageH}
}

func (f *flow) margin(m float64) {
	f.pos = math.Max(f.pos, m)
	f.neg = math.Min(f.neg, m)
}

func (f *flow) push(s *strip) {
	s.gap = f.pos + f.neg
	f.pos, f.neg = 0, 0
	if s.kind != closeStrip {
		if f.pendingBreak {
			s.breakBefore = true
			f.pendingBreak = false
		}
	}
	if len(f.ids) > 0 {
		s.ids = append(f.ids, s.ids...)
		f.ids = nil
	}
	if s.kind == contentStrip && len(f.markers) > 0 {
		for _, m := range f.markers {
			f.attach(m, s)
		}
		f.markers = nil
	}
	f.strips = append(f.strips, s)
}

func (f *flow) attach(m *marker, s *strip) {
	baseline := s.baseline
	if !s.line {
		baseline, _ = f.opts.Fonts.Metrics(m.font)
	}
	w := f.opts.Fonts.Width(m.text, m.font)
	s.items = append(s.items, Item{
		Kind: TextItem, X: m.right - w, Y: baseline, W: w, Text: m.text, Font: m.font, Color: m.color,
	})
}

func forcedBreak(v string) bool {
	switch v {
	case "page", "always", "left", "right":
		return true
	}
	return false
}

func avoidBreak(v string) bool {
	return v == "avoid" || v == "avoid-page"
}

func (f *flow) boxes(bs []*box, x, avail float64) {
	for _, b := range bs {
		f.box(b, x, avail)
	}
}

func (f *flow) box(b *box, x, avail float64) {
	f.ids = append(f.ids, b.ids...)
	if b.kind == paraBox {
		f.paragraph(b, x, avail)
		return
	}
	cs := b.style
	if forcedBreak(cs.BreakBefore) {
		f.pendingBreak = true
	}
	start := len(f.strips)
	f.margin(cs.Margin[style.Top].Points(avail))
	if b.kind == tableBox {
		f.table(b, x, avail)
	} else {
		f.block(b, x, avail)
	}
	if avoidBreak(cs.BreakAfter) {
		for _, s := range f.strips[start:] {
			s.keep = true
		}
	}
	f.margin(cs.Margin[style.Bottom].Points(avail))
	if forcedBreak(cs.BreakAfter) {
		f.pendingBreak = true
	}
}

// geometry is the horizontal placement of a box: its border box and its
// content box.
type geometry struct {
	x, w   float64
	cx, cw float64
}

// place resolves widths and horizontal margins of a box inside a containing
// block of width avail starting at x. sized reports whether the width and
// max-width properties apply.
func place(cs *style.Computed, x, avail float64, sized bool) geometry {
	mL, mR := cs.Margin[style.Left], cs.Margin[style.Right]
	left, right := mL.Points(avail), mR.Points(avail)
	edges := cs.Border[style.Left].Width + cs.Padding[style.Left].Points(avail) +
		cs.Padding[style.Right].Points(avail) + cs.Border[style.Right].Width

	cw := avail - left - right - edges
	constrained := false
	if sized && !cs.Width.IsAuto() {
		cw, constrained = cs.Width.Points(avail), true
	}
	if sized && !cs.MaxWidth.IsAuto() {
		if mw := cs.MaxWidth.Points(avail); cw > mw {
			cw, constrained = mw, true
		}
	}
	cw = math.Max(0, cw)
	if constrained {
		rest := avail - cw - edges
		switch {
		case mL.IsAuto() && mR.IsAuto():
			left = math.Max(0, rest/2)
		case mL.IsAuto():
			left = math.Max(0, rest-right)
		}
	}
	bx := x + left
	return geometry{
		x:  bx,
		w:  edges + cw,
		cx: bx + cs.Border[style.Left].Width + cs.Padding[style.Left].Points(avail),
		cw: cw,
	}
}

// block lays out a block, list item or image box between its margins.
func (f *flow) block(b *box, x, avail float64) {
	cs := b.style
	g := place(cs, x, avail, b.kind != imageBox)
	d := &decor{x: g.x, w: g.w, bg: cs.Background, border: cs.Border}
	edgeTop := cs.Border[style.Top].Width + cs.Padding[style.Top].Points(avail)
	edgeBottom := cs.Padding[style.Bottom].Points(avail) + cs.Border[style.Bottom].Width
	decorated := d.paints() || edgeTop > 0 || edgeBottom > 0
	if decorated {
		f.push(&strip{kind: openStrip, height: edgeTop, decor: d})
	}

	if b.kind == listItemBox && b.marker != "" {
		font := fontFor(cs)
		f.markers = append(f.markers, &marker{
			owner: b,
			text:  sanitize(b.marker, font, f.opts.Fonts),
			font:  font,
			color: cs.Color,
			right: g.cx - cs.FontSize*markerSpace,
		})
	}

	switch b.kind {
	case imageBox:
		w, h := imageSize(b.image, cs, b.attrW, b.attrH, g.cw, f.pageH)
		f.push(&strip{kind: contentStrip, height: h, items: []Item{{
			Kind: ImageItem, X: g.cx, W: w, H: h, Image: b.image,
		}}})
	default:
		f.boxes(b.children, g.cx, g.cw)
	}

	if n := len(f.markers); n > 0 && f.markers[n-1].owner == b {
		asc, desc := f.opts.Fonts.Metrics(fontFor(cs))
		half := (cs.LineHeight() - asc - desc) / 2
		f.push(&strip{kind: contentStrip, height: cs.LineHeight(), baseline: asc + half, line: true})
	}
	if decorated {
		f.push(&strip{kind: closeStrip, height: edgeBottom, decor: d})
	}
}

// paragraph breaks the runs of an anonymous paragraph into line strips.
func (f *flow) paragraph(b *box, x, avail float64) {
	segs, orphans := f.segments(b.runs, avail)
	for _, line := range f.breakLines(segs, avail) {
		f.push(f.lineStrip(line, b.style, x, avail))
	}
	f.ids = append(f.ids, orphans...)
}

// imageSize returns the drawn size of an image in points. Pixels convert
// at 96 dpi; the result never exceeds availW or maxH.
func imageSize(img *Image, cs *style.Computed, attrW, attrH, availW, maxH float64) (float64, float64) {
	natW, natH := float64(img.Width)*pxToPt, float64(img.Height)*pxToPt
	w, h := attrW*pxToPt, attrH*pxToPt
	if !cs.Width.IsAuto() && !(cs.Width.IsPercent() && math.IsInf(availW, 1)) {
		w = cs.Width.Points(availW)
	}
	if !cs.Height.IsAuto() && !cs.Height.IsPercent() {
		h = cs.Height.Points(0)
	}
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = natH
		if natW > 0 {
			h = natH * w / natW
		}
	case h > 0:
		w = natW
		if natH > 0 {
			w = natW * h / natH
		}
	default:
		w, h = natW, natH
	}
	if !cs.MaxWidth.IsAuto() && !(cs.MaxWidth.IsPercent() && math.IsInf(availW, 1)) {
		if mw := cs.MaxWidth.Points(availW); w > mw && w > 0 {
			h *= mw / w
			w = mw
		}
	}
	if w > availW && w > 0 {
		h *= availW / w
		w = availW
	}
	if maxH > 0 && h > maxH {
		w *= maxH / h
		h = maxH
	}
	return w, h
}
