package layout

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/alnah/go-compactpdf/internal/style"
)

const (
	objectReplacement = "\uFFFC"
	tabSize           = 8
	epsilon           = 1e-6
)

// piece is the part of a run that falls into one line-break segment.
type piece struct {
	run   *run
	text  string
	textW float64
	lead  float64
	trail float64
	ids   []string
	imgW  float64
	imgH  float64
}

func (p *piece) width() float64 {
	return p.lead + p.textW + p.trail
}

// segment is an unbreakable sequence of pieces ending at a line-break
// opportunity.
type segment struct {
	pieces []*piece
	forced bool
	wrap   bool
	width  float64
	hang   float64 // trailing white space that may overflow the line
}

// runRange locates a run inside the combined paragraph text.
type runRange struct {
	start, end int
	run        *run
	ids        []string
}

// segments prepares the paragraph runs: collapses white space, substitutes
// missing glyphs and splits the text at Unicode line-break opportunities.
// Ids of runs that render nothing are returned separately.
func (f *flow) segments(runs []*run, avail float64) ([]*segment, []string) {
	var b strings.Builder
	var ranges []runRange
	var orphanIDs []string
	prevSpace := true
	col := 0
	for _, r := range runs {
		var text string
		switch r.kind {
		case breakRun:
			text = "\n"
			prevSpace, col = true, 0
		case imageRun:
			text = objectReplacement
			prevSpace = false
		default:
			text = collapseSpace(r.text, r.style.WhiteSpace, &prevSpace, &col)
			text = sanitize(text, r.font, f.opts.Fonts)
		}
		ids := append(orphanIDs, r.ids...)
		orphanIDs = nil
		if text == "" {
			orphanIDs = ids
			continue
		}
		start := b.Len()
		b.WriteString(text)
		ranges = append(ranges, runRange{start: start, end: b.Len(), run: r, ids: ids})
	}
	combined := b.String()

	var segs []*segment
	state := -1
	offset := 0
	ri := 0
	rest := combined
	for len(rest) > 0 {
		var seg string
		seg, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		end := offset + len(seg)
		s := &segment{forced: strings.HasSuffix(seg, "\n")}
		for ri < len(ranges) && ranges[ri].start < end {
			rr := &ranges[ri]
			from := max(rr.start, offset)
			to := min(rr.end, end)
			p := f.newPiece(rr, combined[from:to], avail)
			if from == rr.start {
				p.lead = rr.run.lead
				p.ids = rr.ids
			}
			if to == rr.end {
				p.trail = rr.run.trail
				ri++
			}
			s.pieces = append(s.pieces, p)
			if to < rr.end {
				break
			}
		}
		if len(s.pieces) > 0 {
			s.wrap = wraps(s.pieces[0].run.style.WhiteSpace)
			for _, p := range s.pieces {
				s.width += p.width()
			}
			last := s.pieces[len(s.pieces)-1]
			if last.run.style.WhiteSpace != "pre" && last.run.kind == textRun {
				trimmed := strings.TrimRight(last.text, " ")
				if trimmed != last.text {
					s.hang = last.textW - f.opts.Fonts.Width(trimmed, last.run.font)
				}
			}
		}
		segs = append(segs, s)
		offset = end
	}
	return segs, orphanIDs
}

func (f *flow) newPiece(rr *runRange, text string, avail float64) *piece {
	p := &piece{run: rr.run}
	switch rr.run.kind {
	case imageRun:
		p.imgW, p.imgH = imageSize(rr.run.image, rr.run.style, rr.run.attrW, rr.run.attrH, avail, f.pageH)
		p.textW = p.imgW
	case breakRun:
	default:
		p.text = strings.TrimSuffix(text, "\n")
		p.textW = f.opts.Fonts.Width(p.text, rr.run.font)
	}
	return p
}

func wraps(whiteSpace string) bool {
	return whiteSpace != "nowrap" && whiteSpace != "pre"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

// collapseSpace applies the white-space property to text. prevSpace carries the
// collapsing state across runs; col tracks the column for tab expansion.
func collapseSpace(text, mode string, prevSpace *bool, col *int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var b strings.Builder
	switch mode {
	case "pre", "pre-wrap":
		for _, r := range text {
			switch r {
			case '\t':
				n := tabSize - *col%tabSize
				b.WriteString(strings.Repeat(" ", n))
				*col += n
			case '\n':
				b.WriteRune(r)
				*col = 0
			default:
				b.WriteRune(r)
				*col++
			}
		}
		*prevSpace = false
		return b.String()
	}
	keepNewlines := mode == "pre-line"
	pending := false
	for _, r := range text {
		switch {
		case r == '\n' && keepNewlines:
			pending = false
			b.WriteRune(r)
			*prevSpace = true
		case isSpace(r):
			pending = true
		default:
			if pending && !*prevSpace {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			pending, *prevSpace = false, false
		}
	}
	if pending && !*prevSpace {
		b.WriteByte(' ')
		*prevSpace = true
	}
	return b.String()
}

// breakLines fills lines greedily. Each returned line carries whether it
// ended with a forced break.
func (f *flow) breakLines(segs []*segment, avail float64) [][]*piece {
	var lines [][]*piece
	var cur []*piece
	curW := 0.0
	push := func() {
		lines = append(lines, cur)
		cur, curW = nil, 0
	}
	for _, s := range segs {
		if len(cur) > 0 && s.wrap && curW+s.width-s.hang > avail+epsilon {
			push()
		}
		if len(cur) == 0 && s.wrap && s.width-s.hang > avail+epsilon {
			chunks := f.splitGraphemes(s.pieces, avail)
			for _, ch := range chunks[:len(chunks)-1] {
				cur = ch
				push()
			}
			cur = chunks[len(chunks)-1]
			for _, p := range cur {
				curW += p.width()
			}
		} else {
			cur = append(cur, s.pieces...)
			curW += s.width
		}
		if s.forced {
			push()
		}
	}
	if len(cur) > 0 {
		push()
	}
	return lines
}

// splitGraphemes breaks an over-long word between grapheme clusters.
func (f *flow) splitGraphemes(pieces []*piece, avail float64) [][]*piece {
	var chunks [][]*piece
	var cur []*piece
	curW := 0.0
	for _, p := range pieces {
		if p.run.kind != textRun || p.text == "" {
			if len(cur) > 0 && curW+p.width() > avail+epsilon {
				chunks = append(chunks, cur)
				cur, curW = nil, 0
			}
			cur = append(cur, p)
			curW += p.width()
			continue
		}
		rest := p.text
		state := -1
		var part strings.Builder
		first := true
		emit := func(last bool) {
			if part.Len() == 0 {
				return
			}
			np := &piece{run: p.run, text: part.String()}
			np.textW = f.opts.Fonts.Width(np.text, p.run.font)
			if first {
				np.lead, np.ids = p.lead, p.ids
				first = false
			}
			if last {
				np.trail = p.trail
			}
			cur = append(cur, np)
			curW += np.width()
			part.Reset()
		}
		for len(rest) > 0 {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			cw := f.opts.Fonts.Width(cluster, p.run.font)
			partW := f.opts.Fonts.Width(part.String(), p.run.font)
			lead := 0.0
			if first {
				lead = p.lead
			}
			if (len(cur) > 0 || part.Len() > 0) && curW+lead+partW+cw > avail+epsilon {
				emit(false)
				if len(cur) > 0 {
					chunks = append(chunks, cur)
					cur, curW = nil, 0
				}
			}
			part.WriteString(cluster)
		}
		emit(true)
	}
	return append(chunks, cur)
}

// lineStrip positions the pieces of one line and returns its strip.
func (f *flow) lineStrip(line []*piece, para *style.Computed, x, avail float64) *strip {
	line = trimLine(line, f.opts.Fonts)

	strutFont := fontFor(para)
	asc, desc := f.opts.Fonts.Metrics(strutFont)
	half := (para.LineHeight() - asc - desc) / 2
	top, bottom := asc+half, desc+half
	for _, p := range line {
		var a, d float64
		if p.run.kind == imageRun {
			a, d = p.imgH-p.run.shift, p.run.shift
		} else {
			pa, pd := f.opts.Fonts.Metrics(p.run.font)
			h := (p.run.style.LineHeight() - pa - pd) / 2
			a, d = pa+h-p.run.shift, pd+h+p.run.shift
		}
		top = math.Max(top, a)
		bottom = math.Max(bottom, d)
	}

	width := 0.0
	for _, p := range line {
		width += p.width()
	}
	switch para.TextAlign {
	case "center":
		x += math.Max(0, (avail-width)/2)
	case "right":
		x += math.Max(0, avail-width)
	}

	s := &strip{kind: contentStrip, height: top + bottom, baseline: top, line: true}
	var backgrounds, texts, decorations []Item
	var links []Item
	var lastText *piece
	cursor := x
	for i, p := range line {
		s.ids = append(s.ids, p.ids...)
		start := cursor
		textX := cursor + p.lead
		cursor += p.width()
		r := p.run
		base := top + r.shift

		if r.span != nil && (i == 0 || line[i-1].run.span != r.span) {
			end := i
			for end+1 < len(line) && line[end+1].run.span == r.span {
				end++
			}
			spanEnd := start
			for _, q := range line[i : end+1] {
				spanEnd += q.width()
			}
			if r.span.style.Background.Opaque {
				sa, sd := f.opts.Fonts.Metrics(r.span.font)
				padT := r.span.style.Padding[style.Top].Points(0)
				padB := r.span.style.Padding[style.Bottom].Points(0)
				backgrounds = append(backgrounds, Item{
					Kind: RectItem, X: start, Y: base - sa - padT,
					W: spanEnd - start, H: sa + sd + padT + padB,
					Color: r.span.style.Background,
				})
			}
		}

		if r.link != "" && (i == 0 || line[i-1].run.link != r.link) {
			end := i
			linkEnd := start
			for end < len(line) && line[end].run.link == r.link {
				linkEnd += line[end].width()
				end++
			}
			links = append(links, linkItem(r.link, start, 0, linkEnd-start, s.height))
		}

		switch r.kind {
		case imageRun:
			texts = append(texts, Item{
				Kind: ImageItem, X: textX, Y: base - p.imgH, W: p.imgW, H: p.imgH, Image: r.image,
			})
			continue
		case breakRun:
			continue
		}
		if p.text == "" {
			continue
		}
		switch {
		case i > 0 && lastText == line[i-1] && lastText.run == r && p.lead == 0 && lastText.trail == 0:
			texts[len(texts)-1].Text += p.text
			texts[len(texts)-1].W += p.textW
		case strings.TrimSpace(p.text) == "":
			lastText = nil
			continue
		default:
			texts = append(texts, Item{
				Kind: TextItem, X: textX, Y: base, W: p.textW, Text: p.text,
				Font: r.font, Color: r.style.Color,
			})
		}
		lastText = p
		thickness := math.Max(0.5, r.font.Size*0.05)
		if r.style.Underline {
			y := base + r.font.Size*0.12
			decorations = append(decorations, Item{
				Kind: LineItem, X: textX, Y: y, X2: textX + p.textW, Y2: y, Width: thickness, Color: r.style.Color,
			})
		}
		if r.style.LineThrough {
			y := base - r.font.Size*0.28
			decorations = append(decorations, Item{
				Kind: LineItem, X: textX, Y: y, X2: textX + p.textW, Y2: y, Width: thickness, Color: r.style.Color,
			})
		}
	}
	s.items = append(s.items, backgrounds...)
	s.items = append(s.items, texts...)
	s.items = append(s.items, decorations...)
	s.items = append(s.items, links...)
	return s
}

// trimLine removes trailing white space that must not be painted or
// counted for alignment.
func trimLine(line []*piece, fonts Fonts) []*piece {
	for len(line) > 0 {
		last := line[len(line)-1]
		if last.run.kind != textRun || last.run.style.WhiteSpace == "pre" {
			return line
		}
		trimmed := strings.TrimRight(last.text, " ")
		if trimmed == last.text {
			return line
		}
		cp := *last
		cp.text = trimmed
		cp.textW = fonts.Width(trimmed, last.run.font)
		line = append(line[:len(line)-1:len(line)-1], &cp)
		if trimmed != "" || cp.lead > 0 || cp.trail > 0 || len(cp.ids) > 0 {
			return line
		}
		line = line[:len(line)-1]
	}
	return line
}

// linkItem returns a link annotation; "#id" targets become internal links.
func linkItem(href string, x, y, w, h float64) Item {
	it := Item{Kind: LinkItem, X: x, Y: y, W: w, H: h}
	if anchor, ok := strings.CutPrefix(href, "#"); ok {
		it.Anchor = anchor
	} else {
		it.URL = href
	}
	return it
}
