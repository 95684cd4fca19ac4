package layout

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-compactpdf/internal/style"
)

// Layout computes the styled box tree of doc and paginates it.
// It fails with ErrNoDocument when doc has no <html> element and with
// ErrResource when an image cannot be loaded.
func Layout(doc *html.Node, opts Options) (*Document, error) {
	root := findElement(doc, "html")
	if root == nil {
		return nil, ErrNoDocument
	}
	if opts.Cascade == nil || opts.Fonts == nil {
		return nil, errors.New("layout: cascade and fonts are required")
	}

	cs := opts.Cascade.Compute(root, nil)
	b := &builder{opts: &opts}
	kids, err := b.children(root, cs)
	if err != nil {
		return nil, err
	}

	f := newFlow(&opts)
	f.box(&box{kind: blockBox, style: cs, children: kids, ids: idList(attr(root, "id"))},
		opts.Margins[style.Left], opts.ContentWidth())
	if len(f.ids) > 0 || len(f.markers) > 0 {
		f.push(&strip{kind: contentStrip})
	}
	p := paginate(f.strips, opts.ContentHeight(), opts.Margins[style.Top])

	return &Document{
		Title:      title(root),
		PageWidth:  opts.PageWidth,
		PageHeight: opts.PageHeight,
		Pages:      p.pages,
		Grids:      f.grids,
		Anchors:    p.anchors,
	}, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// title returns the whitespace-collapsed text of the document <title>.
func title(root *html.Node) string {
	head := findElement(root, "head")
	if head == nil {
		return ""
	}
	t := findElement(head, "title")
	if t == nil {
		return ""
	}
	var b strings.Builder
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
