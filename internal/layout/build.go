package layout

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-compactpdf/internal/style"
)

type boxKind int

const (
	blockBox boxKind = iota
	paraBox
	listItemBox
	tableBox
	imageBox
)

// box is a block-level box of the box tree.
type box struct {
	kind     boxKind
	style    *style.Computed
	children []*box
	runs     []*run // paraBox
	marker   string // listItemBox
	ids      []string

	// tableBox
	caption []*box
	rows    []*row

	// imageBox
	image *Image
	attrW float64
	attrH float64
}

type row struct {
	style  *style.Computed
	cells  []*cell
	header bool
	ids    []string
}

type cell struct {
	box     *box
	colspan int
}

type runKind int

const (
	textRun runKind = iota
	breakRun
	imageRun
)

// span is a decorated inline element such as code with a background.
type span struct {
	style *style.Computed
	font  Font
}

// run is a piece of inline content sharing one style.
type run struct {
	kind  runKind
	text  string
	style *style.Computed
	font  Font
	link  string
	span  *span
	lead  float64
	trail float64
	shift float64
	ids   []string

	image *Image
	attrW float64
	attrH float64
}

// builder turns a styled DOM into a box tree.
type builder struct {
	opts *Options
}

// inlineCtx carries inherited inline state down the DOM.
type inlineCtx struct {
	link  string
	span  *span
	shift float64
}

// container collects the block children of one element, wrapping loose
// inline content in anonymous paragraph boxes.
type container struct {
	b          *builder
	style      *style.Computed
	boxes      []*box
	para       *box
	pendingIDs []string
	lead       float64
}

func (b *builder) newContainer(cs *style.Computed) *container {
	return &container{b: b, style: cs}
}

func (c *container) paragraph() *box {
	if c.para == nil {
		c.para = &box{kind: paraBox, style: style.Anonymous(c.style)}
	}
	return c.para
}

func (c *container) addRun(r *run) {
	p := c.paragraph()
	r.ids = append(r.ids, c.pendingIDs...)
	c.pendingIDs = nil
	r.lead += c.lead
	c.lead = 0
	p.runs = append(p.runs, r)
}

func (c *container) flush() {
	if c.para == nil {
		return
	}
	p := c.para
	c.para = nil
	if !significant(p.runs) {
		for _, r := range p.runs {
			c.pendingIDs = append(c.pendingIDs, r.ids...)
		}
		return
	}
	c.boxes = append(c.boxes, p)
}

func (c *container) addBlock(bx *box) {
	c.flush()
	bx.ids = append(c.pendingIDs, bx.ids...)
	c.pendingIDs = nil
	c.boxes = append(c.boxes, bx)
}

// finish returns the collected boxes. Orphan ids attach to the last box.
func (c *container) finish() []*box {
	c.flush()
	if len(c.pendingIDs) > 0 && len(c.boxes) > 0 {
		last := c.boxes[len(c.boxes)-1]
		last.ids = append(last.ids, c.pendingIDs...)
		c.pendingIDs = nil
	}
	return c.boxes
}

// significant reports whether runs render anything beyond collapsible space.
func significant(runs []*run) bool {
	for _, r := range runs {
		switch r.kind {
		case breakRun, imageRun:
			return true
		}
		switch r.style.WhiteSpace {
		case "pre", "pre-wrap":
			if r.text != "" {
				return true
			}
		default:
			if strings.TrimLeft(r.text, " \t\n\r\f") != "" {
				return true
			}
		}
	}
	return false
}

// children builds the block-level children of element n with style cs.
func (b *builder) children(n *html.Node, cs *style.Computed) ([]*box, error) {
	c := b.newContainer(cs)
	if err := c.content(n, cs, inlineCtx{}); err != nil {
		return nil, err
	}
	return c.finish(), nil
}

// content walks the children of n, whose computed style is cs.
func (c *container) content(n *html.Node, cs *style.Computed, ctx inlineCtx) error {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.TextNode:
			c.text(ch, cs, ctx)
		case html.ElementNode:
			if err := c.element(ch, cs, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *container) text(n *html.Node, cs *style.Computed, ctx inlineCtx) {
	if lang := codeLanguage(n); lang != "" && c.b.opts.Highlighter != nil {
		if toks := c.b.opts.Highlighter.Highlight(lang, n.Data); toks != nil {
			for _, t := range toks {
				ts := *cs
				if t.Color.Opaque {
					ts.Color = t.Color
				}
				ts.Bold = ts.Bold || t.Bold
				ts.Italic = ts.Italic || t.Italic
				c.addRun(c.b.textRun(t.Text, &ts, ctx))
			}
			return
		}
	}
	c.addRun(c.b.textRun(n.Data, cs, ctx))
}

func (b *builder) textRun(text string, cs *style.Computed, ctx inlineCtx) *run {
	return &run{
		kind:  textRun,
		text:  text,
		style: cs,
		font:  fontFor(cs),
		link:  ctx.link,
		span:  ctx.span,
		shift: ctx.shift,
	}
}

// codeLanguage returns X when n is the text of <pre><code class="language-X">.
func codeLanguage(n *html.Node) string {
	code := n.Parent
	if code == nil || code.Data != "code" || code.Parent == nil || code.Parent.Data != "pre" {
		return ""
	}
	for _, class := range strings.Fields(attr(code, "class")) {
		if lang, ok := strings.CutPrefix(class, "language-"); ok {
			return lang
		}
	}
	return ""
}

func (c *container) element(n *html.Node, parent *style.Computed, ctx inlineCtx) error {
	cs := c.b.opts.Cascade.Compute(n, parent)
	if cs.Display == "none" {
		return nil
	}
	id := attr(n, "id")

	switch n.Data {
	case "br":
		c.addRun(&run{kind: breakRun, style: cs, font: fontFor(cs), ids: idList(id)})
		return nil
	case "img":
		img, err := c.b.loadImage(n)
		if err != nil {
			return err
		}
		w, h := attrSize(n)
		if cs.Inline() {
			c.addRun(&run{
				kind: imageRun, style: cs, font: fontFor(cs), link: ctx.link,
				shift: ctx.shift, image: img, attrW: w, attrH: h, ids: idList(id),
			})
			return nil
		}
		c.addBlock(&box{kind: imageBox, style: cs, image: img, attrW: w, attrH: h, ids: idList(id)})
		return nil
	}

	if cs.Inline() {
		if id != "" {
			c.pendingIDs = append(c.pendingIDs, id)
		}
		inner := ctx
		if n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				inner.link = href
			}
		}
		switch cs.VerticalAlign {
		case "super":
			inner.shift -= parent.FontSize * 0.35
		case "sub":
			inner.shift += parent.FontSize * 0.2
		}
		var sp *span
		if decorated(cs) {
			sp = &span{style: cs, font: fontFor(cs)}
			inner.span = sp
			c.lead += inlineExtent(cs, style.Left)
		}
		before := c.runCount()
		if err := c.content(n, cs, inner); err != nil {
			return err
		}
		if sp != nil {
			if c.para != nil && c.runCount() > before {
				last := c.para.runs[len(c.para.runs)-1]
				last.trail += inlineExtent(cs, style.Right)
			} else {
				c.lead = 0
			}
		}
		return nil
	}

	bx, err := c.b.block(n, cs)
	if err != nil {
		return err
	}
	if bx != nil {
		if id != "" {
			bx.ids = append(bx.ids, id)
		}
		c.addBlock(bx)
	}
	return nil
}

func (c *container) runCount() int {
	if c.para == nil {
		return 0
	}
	return len(c.para.runs)
}

// block builds the box of a block-level element.
func (b *builder) block(n *html.Node, cs *style.Computed) (*box, error) {
	switch cs.Display {
	case "table":
		return b.table(n, cs)
	case "list-item":
		kids, err := b.children(n, cs)
		if err != nil {
			return nil, err
		}
		return &box{kind: listItemBox, style: cs, children: kids, marker: markerText(n, cs)}, nil
	}
	kids, err := b.children(n, cs)
	if err != nil {
		return nil, err
	}
	return &box{kind: blockBox, style: cs, children: kids}, nil
}

func (b *builder) table(n *html.Node, cs *style.Computed) (*box, error) {
	t := &box{kind: tableBox, style: cs}
	var addRows func(parent *html.Node, ps *style.Computed, header bool) error
	addRows = func(parent *html.Node, ps *style.Computed, header bool) error {
		for ch := parent.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			chs := b.opts.Cascade.Compute(ch, ps)
			switch chs.Display {
			case "none":
			case "table-caption":
				kids, err := b.children(ch, chs)
				if err != nil {
					return err
				}
				t.caption = append(t.caption, &box{kind: blockBox, style: chs, children: kids})
			case "table-header-group":
				if err := addRows(ch, chs, true); err != nil {
					return err
				}
			case "table-row-group", "table-footer-group":
				if err := addRows(ch, chs, false); err != nil {
					return err
				}
			case "table-row":
				r, err := b.row(ch, chs, header)
				if err != nil {
					return err
				}
				t.rows = append(t.rows, r)
			}
		}
		return nil
	}
	if err := addRows(n, cs, false); err != nil {
		return nil, err
	}
	return t, nil
}

func (b *builder) row(n *html.Node, cs *style.Computed, header bool) (*row, error) {
	r := &row{style: cs, header: header, ids: idList(attr(n, "id"))}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode {
			continue
		}
		chs := b.opts.Cascade.Compute(ch, cs)
		if chs.Display == "none" {
			continue
		}
		kids, err := b.children(ch, chs)
		if err != nil {
			return nil, err
		}
		colspan := 1
		if v, err := strconv.Atoi(attr(ch, "colspan")); err == nil && v > 1 {
			colspan = v
		}
		bx := &box{kind: blockBox, style: chs, children: kids, ids: idList(attr(ch, "id"))}
		r.cells = append(r.cells, &cell{box: bx, colspan: colspan})
	}
	return r, nil
}

func (b *builder) loadImage(n *html.Node) (*Image, error) {
	src := attr(n, "src")
	if src == "" {
		return nil, fmt.Errorf("%w: image without src", ErrResource)
	}
	if b.opts.Images == nil {
		return nil, fmt.Errorf("%w: no image loader for %q", ErrResource, src)
	}
	img, err := b.opts.Images.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResource, err)
	}
	return img, nil
}

// decorated reports whether an inline element paints a box around its text.
func decorated(cs *style.Computed) bool {
	if cs.Background.Opaque {
		return true
	}
	for _, s := range []style.Side{style.Left, style.Right} {
		if cs.Border[s].Visible() || cs.Padding[s].Points(0) > 0 {
			return true
		}
	}
	return false
}

// inlineExtent is the horizontal padding plus border on one side.
func inlineExtent(cs *style.Computed, side style.Side) float64 {
	return cs.Padding[side].Points(0) + cs.Border[side].Width
}

// fontFor maps a computed style onto one of the embedded faces.
func fontFor(cs *style.Computed) Font {
	family := "sans"
	if cs.Monospace() {
		family = "mono"
	}
	return Font{Family: family, Bold: cs.Bold, Italic: cs.Italic, Size: cs.FontSize}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func idList(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// attrSize reads the width and height attributes of an image in pixels.
func attrSize(n *html.Node) (float64, float64) {
	parse := func(key string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSuffix(attr(n, key), "px"), 64)
		if err != nil || v <= 0 {
			return 0
		}
		return v
	}
	return parse("width"), parse("height")
}
