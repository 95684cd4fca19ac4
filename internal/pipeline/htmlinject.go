package pipeline

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-compactpdf/internal/style"
)

// defaultTitle is used when the fragment has no <h1>.
const defaultTitle = "Document"

// StyleInjector wraps an HTML fragment in a complete document carrying a
// stylesheet.
type StyleInjector interface {
	Inject(fragment string, sheet *style.Stylesheet) string
}

// ShellInjector produces a standalone HTML5 document with the stylesheet in
// a <style> block inside <head>. It is pure templating and cannot fail.
type ShellInjector struct{}

// Inject builds the styled document. The title is the text of the first
// <h1> of fragment.
func (s *ShellInjector) Inject(fragment string, sheet *style.Stylesheet) string {
	var b strings.Builder
	b.Grow(len(fragment) + len(sheet.String()) + 160)
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	b.WriteString(html.EscapeString(documentTitle(fragment)))
	b.WriteString("</title>\n<style>")
	b.WriteString(sanitizeCSS(sheet.String()))
	b.WriteString("</style></head><body>")
	b.WriteString(fragment)
	b.WriteString("</body></html>")
	return b.String()
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// documentTitle returns the whitespace-collapsed text of the first <h1>.
func documentTitle(fragment string) string {
	if !strings.Contains(strings.ToLower(fragment), "<h1") {
		return defaultTitle
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), &nethtml.Node{
		Type:     nethtml.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return defaultTitle
	}
	for _, n := range nodes {
		if h := findElement(n, atom.H1); h != nil {
			if title := strings.Join(strings.Fields(textContent(h)), " "); title != "" {
				return title
			}
			return defaultTitle
		}
	}
	return defaultTitle
}

func findElement(n *nethtml.Node, a atom.Atom) *nethtml.Node {
	if n.Type == nethtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
