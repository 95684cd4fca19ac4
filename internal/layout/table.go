package layout

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/alnah/go-compactpdf/internal/style"
)

// table lays out a table as one strip per row. Header rows repeat at the
// top of every page the table continues on.
func (f *flow) table(b *box, x, avail float64) {
	cs := b.style
	for _, c := range b.caption {
		f.box(c, x, avail)
	}
	f.grids = append(f.grids, grid(b))

	collapse := cs.BorderCollapse
	ts := *cs
	if collapse {
		for i := range ts.Border {
			ts.Border[i].Width = 0
		}
		ts.Padding = [4]style.Length{style.Pt(0), style.Pt(0), style.Pt(0), style.Pt(0)}
	}
	ncols := columnCount(b.rows)
	mins, maxs := f.columnWidths(b.rows, ncols, collapse)
	sumMax := 0.0
	for _, m := range maxs {
		sumMax += m
	}

	g := place(&ts, x, avail, true)
	if cs.Width.IsAuto() && sumMax < g.cw {
		shrunk := ts
		shrunk.Width = style.Pt(sumMax)
		g = place(&shrunk, x, avail, true)
	}
	widths := distribute(mins, maxs, g.cw)

	d := &decor{x: g.x, w: g.w, bg: cs.Background, border: cs.Border, centered: collapse}
	edgeTop := ts.Border[style.Top].Width + ts.Padding[style.Top].Points(avail)
	edgeBottom := ts.Padding[style.Bottom].Points(avail) + ts.Border[style.Bottom].Width
	f.push(&strip{kind: openStrip, height: edgeTop, decor: d})

	var headers []*strip
	for _, r := range b.rows {
		s := f.row(r, g.cx, widths, collapse)
		if r.header {
			s.keep = true
			headers = append(headers, s)
		} else {
			s.repeat = headers
		}
		f.push(s)
	}
	f.push(&strip{kind: closeStrip, height: edgeBottom, decor: d})
}

func columnCount(rows []*row) int {
	n := 0
	for _, r := range rows {
		c := 0
		for _, cl := range r.cells {
			c += cl.colspan
		}
		n = max(n, c)
	}
	return n
}

// cellEdges returns the horizontal padding and border of a cell.
func cellEdges(cs *style.Computed, collapse bool) float64 {
	e := cs.Padding[style.Left].Points(0) + cs.Padding[style.Right].Points(0)
	if !collapse {
		e += cs.Border[style.Left].Width + cs.Border[style.Right].Width
	}
	return e
}

// columnWidths returns the minimum and maximum content widths of each
// column. Spanning cells spread their excess evenly over their columns.
func (f *flow) columnWidths(rows []*row, ncols int, collapse bool) ([]float64, []float64) {
	mins := make([]float64, ncols)
	maxs := make([]float64, ncols)
	type spanning struct {
		col, span  int
		minW, maxW float64
	}
	var spans []spanning
	for _, r := range rows {
		col := 0
		for _, c := range r.cells {
			lo, hi := f.intrinsic(c.box)
			e := cellEdges(c.box.style, collapse)
			lo, hi = lo+e, hi+e
			if c.colspan == 1 {
				mins[col] = math.Max(mins[col], lo)
				maxs[col] = math.Max(maxs[col], hi)
			} else {
				spans = append(spans, spanning{col, c.colspan, lo, hi})
			}
			col += c.colspan
		}
	}
	for _, s := range spans {
		curMin, curMax := 0.0, 0.0
		for i := s.col; i < s.col+s.span; i++ {
			curMin += mins[i]
			curMax += maxs[i]
		}
		for i := s.col; i < s.col+s.span; i++ {
			if s.minW > curMin {
				mins[i] += (s.minW - curMin) / float64(s.span)
			}
			if s.maxW > curMax {
				maxs[i] += (s.maxW - curMax) / float64(s.span)
			}
			maxs[i] = math.Max(maxs[i], mins[i])
		}
	}
	return mins, maxs
}

// distribute fits column widths into total.
func distribute(mins, maxs []float64, total float64) []float64 {
	n := len(mins)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	var sumMin, sumMax float64
	for i := range mins {
		sumMin += mins[i]
		sumMax += maxs[i]
	}
	switch {
	case sumMax <= total:
		extra := total - sumMax
		for i := range out {
			if sumMax > 0 {
				out[i] = maxs[i] + extra*maxs[i]/sumMax
			} else {
				out[i] = total / float64(n)
			}
		}
	case sumMin <= total:
		ratio := (total - sumMin) / (sumMax - sumMin)
		for i := range out {
			out[i] = mins[i] + (maxs[i]-mins[i])*ratio
		}
	default:
		for i := range out {
			out[i] = mins[i] * total / sumMin
		}
	}
	return out
}

// row lays out the cells of one table row into a single strip.
func (f *flow) row(r *row, x float64, widths []float64, collapse bool) *strip {
	type laidCell struct {
		c       *cell
		x, w    float64
		items   []Item
		content float64
	}
	var cells []laidCell
	s := &strip{kind: contentStrip, ids: r.ids}
	height := 0.0
	col := 0
	cx := x
	for _, c := range r.cells {
		w := 0.0
		for i := col; i < col+c.colspan && i < len(widths); i++ {
			w += widths[i]
		}
		col += c.colspan
		cs := c.box.style
		padL, padR := cs.Padding[style.Left].Points(w), cs.Padding[style.Right].Points(w)
		padT, padB := cs.Padding[style.Top].Points(w), cs.Padding[style.Bottom].Points(w)
		bL, bR, bT, bB := cs.Border[style.Left].Width, cs.Border[style.Right].Width, cs.Border[style.Top].Width, cs.Border[style.Bottom].Width
		if collapse {
			bL, bR, bT, bB = 0, 0, 0, 0
		}

		inner := f.sub()
		inner.boxes(c.box.children, cx+bL+padL, math.Max(0, w-bL-bR-padL-padR))
		p := paginate(inner.strips, math.Inf(1), 0)
		f.grids = append(f.grids, inner.grids...)
		s.ids = append(s.ids, slices.Sorted(maps.Keys(p.anchors))...)
		s.ids = append(s.ids, inner.ids...)
		s.ids = append(s.ids, c.box.ids...)

		lc := laidCell{c: c, x: cx, w: w, items: p.pages[0].Items, content: p.y}
		height = math.Max(height, bT+padT+p.y+padB+bB)
		cells = append(cells, lc)
		cx += w
	}
	s.height = height

	for _, lc := range cells {
		cs := lc.c.box.style
		bg := cs.Background
		if !bg.Opaque {
			bg = r.style.Background
		}
		if bg.Opaque {
			s.items = append(s.items, Item{Kind: RectItem, X: lc.x, W: lc.w, H: height, Color: bg})
		}
	}
	for _, lc := range cells {
		cs := lc.c.box.style
		top := cs.Padding[style.Top].Points(lc.w)
		if !collapse {
			top += cs.Border[style.Top].Width
		}
		if cs.VerticalAlign == "middle" {
			inner := height - cs.Padding[style.Bottom].Points(lc.w) - top
			if !collapse {
				inner -= cs.Border[style.Bottom].Width
			}
			top += math.Max(0, (inner-lc.content)/2)
		}
		for _, it := range lc.items {
			it.Y += top
			if it.Kind == LineItem {
				it.Y2 += top
			}
			s.items = append(s.items, it)
		}
	}
	for _, lc := range cells {
		s.items = append(s.items, cellBorders(lc.c.box.style, lc.x, lc.w, height, collapse)...)
	}
	return s
}

// cellBorders strokes the borders of a cell box. Collapsed borders are
// centered on the grid lines.
func cellBorders(cs *style.Computed, x, w, h float64, collapse bool) []Item {
	var items []Item
	for side, b := range cs.Border {
		if !b.Visible() {
			continue
		}
		inset := b.Width / 2
		if collapse {
			inset = 0
		}
		it := Item{Kind: LineItem, Width: b.Width, Color: b.Color}
		switch style.Side(side) {
		case style.Top:
			it.X, it.Y, it.X2, it.Y2 = x, inset, x+w, inset
		case style.Bottom:
			it.X, it.Y, it.X2, it.Y2 = x, h-inset, x+w, h-inset
		case style.Left:
			it.X, it.Y, it.X2, it.Y2 = x+inset, 0, x+inset, h
		case style.Right:
			it.X, it.Y, it.X2, it.Y2 = x+w-inset, 0, x+w-inset, h
		}
		items = append(items, it)
	}
	return items
}

// grid records the shape and text of a table.
func grid(b *box) Grid {
	g := Grid{Rows: len(b.rows), Cols: columnCount(b.rows)}
	for _, bd := range b.style.Border {
		g.Bordered = g.Bordered || bd.Visible()
	}
	for _, r := range b.rows {
		var cells []string
		for _, c := range r.cells {
			for _, bd := range c.box.style.Border {
				g.Bordered = g.Bordered || bd.Visible()
			}
			cells = append(cells, boxText(c.box))
		}
		g.Cells = append(g.Cells, cells)
	}
	return g
}

// boxText returns the text content of a box with white space collapsed.
func boxText(b *box) string {
	var parts []string
	var walk func(*box)
	walk = func(b *box) {
		for _, r := range b.runs {
			if r.kind == textRun {
				parts = append(parts, r.text)
			} else if r.kind == breakRun {
				parts = append(parts, " ")
			}
		}
		for _, c := range b.caption {
			walk(c)
		}
		for _, c := range b.children {
			walk(c)
		}
		for _, r := range b.rows {
			for _, c := range r.cells {
				walk(c.box)
			}
		}
	}
	walk(b)
	return strings.Join(strings.Fields(strings.Join(parts, "")), " ")
}
