package layout

import "github.com/alnah/go-compactpdf/internal/style"

type stripKind int

const (
	contentStrip stripKind = iota
	openStrip              // top border and padding of a decorated box
	closeStrip             // bottom padding and border of a decorated box
)

// strip is the unit of pagination: a line box, a table row, an image, or
// the opening or closing edge of a box. Item coordinates are relative to
// the top of the strip.
type strip struct {
	kind        stripKind
	gap         float64 // collapsed margin above the strip
	height      float64
	baseline    float64
	line        bool
	items       []Item
	decor       *decor
	ids         []string
	breakBefore bool
	keep        bool     // keep with the next content strip
	repeat      []*strip // strips repeated at the top of a continuation page
}

// decor is the background and border of one box, painted per page fragment.
type decor struct {
	x, w     float64
	bg       style.Color
	border   [4]style.Border
	centered bool // borders straddle the edge instead of lying inside it
}

func (d *decor) paints() bool {
	if d.bg.Opaque {
		return true
	}
	for _, b := range d.border {
		if b.Visible() {
			return true
		}
	}
	return false
}

// fragment is the part of a decorated box that lies on one page.
type fragment struct {
	decor *decor
	start float64
	index int
	first bool
}

// paginator distributes strips over pages of a fixed content height.
type paginator struct {
	height  float64
	top     float64
	pages   []*Page
	page    *Page
	y       float64
	atTop   bool
	open    []*fragment
	anchors map[string]Anchor
}

func newPaginator(height, top float64) *paginator {
	p := &paginator{height: height, top: top, anchors: map[string]Anchor{}}
	p.startPage()
	return p
}

// paginate lays strips onto pages whose content box starts at top and is
// height tall. An infinite height yields a single page.
func paginate(strips []*strip, height, top float64) *paginator {
	p := newPaginator(height, top)
	for i, s := range strips {
		if s.breakBefore && !p.atTop {
			p.newPage()
		}
		gap := s.gap
		if p.atTop {
			gap = 0
		}
		if !p.atTop && s.kind != closeStrip {
			need := gap + s.height
			if s.kind == openStrip || s.keep {
				need = p.keepExtent(strips, i, gap)
			}
			if p.y+need > p.height+epsilon {
				p.newPage()
				gap = 0
				for _, h := range s.repeat {
					p.place(h, 0)
				}
			}
		}
		p.place(s, gap)
	}
	for len(p.open) > 0 {
		p.closeFragment(p.open[len(p.open)-1], p.y, true)
		p.open = p.open[:len(p.open)-1]
	}
	return p
}

// keepExtent measures strip i together with the strips it must stay with,
// up to the next content strip that is not itself kept. A chain taller than
// a page only claims the strip itself.
func (p *paginator) keepExtent(strips []*strip, i int, gap float64) float64 {
	total := gap + strips[i].height
	for j := i; j < len(strips); j++ {
		s := strips[j]
		if j > i {
			if s.breakBefore {
				break
			}
			total += s.gap + s.height
		}
		if s.kind == contentStrip && !s.keep {
			break
		}
	}
	if total > p.height {
		return gap + strips[i].height
	}
	return total
}

func (p *paginator) place(s *strip, gap float64) {
	p.y += gap
	for _, id := range s.ids {
		if _, ok := p.anchors[id]; !ok {
			p.anchors[id] = Anchor{Page: len(p.pages) - 1, Y: p.top + p.y}
		}
	}
	if s.kind == openStrip {
		p.open = append(p.open, &fragment{decor: s.decor, start: p.y, index: len(p.page.Items), first: true})
	}
	offset := p.top + p.y
	for _, it := range s.items {
		it.Y += offset
		if it.Kind == LineItem {
			it.Y2 += offset
		}
		p.page.Items = append(p.page.Items, it)
	}
	p.y += s.height
	if s.kind == closeStrip && len(p.open) > 0 {
		f := p.open[len(p.open)-1]
		p.open = p.open[:len(p.open)-1]
		p.closeFragment(f, p.y, true)
	}
	if s.kind == contentStrip || s.height > 0 {
		p.atTop = false
	}
}

func (p *paginator) startPage() {
	p.page = &Page{}
	p.pages = append(p.pages, p.page)
	p.y = 0
	p.atTop = true
}

// newPage ends the current page. Open boxes are closed innermost first and
// continue at the top of the next page.
func (p *paginator) newPage() {
	for i := len(p.open) - 1; i >= 0; i-- {
		p.closeFragment(p.open[i], p.y, false)
	}
	p.startPage()
	for _, f := range p.open {
		f.start, f.index, f.first = 0, 0, false
	}
}

// closeFragment paints the background and borders of a box fragment below
// the content recorded since the fragment opened.
func (p *paginator) closeFragment(f *fragment, end float64, last bool) {
	d := f.decor
	top, bottom := p.top+f.start, p.top+end
	if bottom-top <= 0 && !f.first {
		return
	}
	var items []Item
	if d.bg.Opaque && bottom > top {
		items = append(items, Item{Kind: RectItem, X: d.x, Y: top, W: d.w, H: bottom - top, Color: d.bg})
	}
	for side, b := range d.border {
		if !b.Visible() {
			continue
		}
		inset := b.Width / 2
		if d.centered {
			inset = 0
		}
		line := Item{Kind: LineItem, Width: b.Width, Color: b.Color}
		switch style.Side(side) {
		case style.Top:
			if !f.first {
				continue
			}
			line.X, line.Y, line.X2, line.Y2 = d.x, top+inset, d.x+d.w, top+inset
		case style.Bottom:
			if !last {
				continue
			}
			line.X, line.Y, line.X2, line.Y2 = d.x, bottom-inset, d.x+d.w, bottom-inset
		case style.Left:
			line.X, line.Y, line.X2, line.Y2 = d.x+inset, top, d.x+inset, bottom
		case style.Right:
			line.X, line.Y, line.X2, line.Y2 = d.x+d.w-inset, top, d.x+d.w-inset, bottom
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		return
	}
	idx := min(f.index, len(p.page.Items))
	out := make([]Item, 0, len(p.page.Items)+len(items))
	out = append(out, p.page.Items[:idx]...)
	out = append(out, items...)
	out = append(out, p.page.Items[idx:]...)
	p.page.Items = out
}
