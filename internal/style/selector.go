package style

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

type combinator int

const (
	descendant combinator = iota
	child
)

// compound is a sequence of simple selectors without combinators.
type compound struct {
	tag     string
	id      string
	classes []string
	pseudos []string
}

// Selector is a complex selector: compounds joined by combinators.
// combinators[i] joins parts[i] and parts[i+1].
type Selector struct {
	parts       []compound
	combinators []combinator
	text        string
}

func (s Selector) String() string {
	return s.text
}

// Specificity weights ids, then classes and pseudo-classes, then type selectors.
func (s Selector) Specificity() int {
	var ids, classes, tags int
	for _, p := range s.parts {
		if p.id != "" {
			ids++
		}
		classes += len(p.classes) + len(p.pseudos)
		if p.tag != "" {
			tags++
		}
	}
	return ids*10000 + classes*100 + tags
}

// pseudoClasses that can be evaluated on a static document.
// Interactive states are accepted and never match.
var pseudoClasses = map[string]bool{
	"link":        true,
	"first-child": true,
	"last-child":  true,
	"root":        true,
	"hover":       true,
	"active":      true,
	"focus":       true,
	"visited":     true,
}

// parseSelectorList parses a comma-separated selector list from prelude tokens.
func parseSelectorList(toks []token) ([]Selector, error) {
	var out []Selector
	start := 0
	for i := 0; i <= len(toks); i++ {
		if i < len(toks) && toks[i].typ != css.CommaToken {
			continue
		}
		sel, err := parseSelector(trimSpace(toks[start:i]))
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
		start = i + 1
	}
	return out, nil
}

func parseSelector(toks []token) (Selector, error) {
	if len(toks) == 0 {
		return Selector{}, fmt.Errorf("%w: empty selector", ErrSyntax)
	}
	sel := Selector{text: joinTokens(toks)}
	cur := compound{}
	empty := true
	pending := -1
	push := func() error {
		if empty {
			return fmt.Errorf("%w: dangling combinator in %q", ErrSyntax, sel.text)
		}
		if len(sel.parts) > 0 {
			sel.combinators = append(sel.combinators, combinator(pending))
		}
		sel.parts = append(sel.parts, cur)
		cur, empty, pending = compound{}, true, -1
		return nil
	}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.typ {
		case css.WhitespaceToken:
			if !empty {
				if err := push(); err != nil {
					return Selector{}, err
				}
			}
			if pending < 0 {
				pending = int(descendant)
			}
		case css.IdentToken:
			if !empty {
				return Selector{}, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, t.data, sel.text)
			}
			cur.tag = strings.ToLower(t.data)
			empty = false
		case css.HashToken:
			cur.id = strings.TrimPrefix(t.data, "#")
			empty = false
		case css.DelimToken:
			switch t.data {
			case "*":
				empty = false
			case ".":
				if i+1 >= len(toks) || toks[i+1].typ != css.IdentToken {
					return Selector{}, fmt.Errorf("%w: class name expected in %q", ErrSyntax, sel.text)
				}
				i++
				cur.classes = append(cur.classes, toks[i].data)
				empty = false
			case ">":
				if !empty {
					if err := push(); err != nil {
						return Selector{}, err
					}
				}
				if len(sel.parts) == 0 {
					return Selector{}, fmt.Errorf("%w: leading combinator in %q", ErrSyntax, sel.text)
				}
				pending = int(child)
			case "+", "~":
				return Selector{}, fmt.Errorf("%w: sibling combinator in %q", ErrUnsupported, sel.text)
			default:
				return Selector{}, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, t.data, sel.text)
			}
		case css.ColonToken:
			if i+1 >= len(toks) {
				return Selector{}, fmt.Errorf("%w: pseudo-class expected in %q", ErrSyntax, sel.text)
			}
			next := toks[i+1]
			switch next.typ {
			case css.ColonToken:
				return Selector{}, fmt.Errorf("%w: pseudo-element in %q", ErrUnsupported, sel.text)
			case css.FunctionToken:
				return Selector{}, fmt.Errorf("%w: functional pseudo-class in %q", ErrUnsupported, sel.text)
			case css.IdentToken:
				name := strings.ToLower(next.data)
				if name == "before" || name == "after" || name == "first-line" || name == "first-letter" {
					return Selector{}, fmt.Errorf("%w: pseudo-element in %q", ErrUnsupported, sel.text)
				}
				if !pseudoClasses[name] {
					return Selector{}, fmt.Errorf("%w: pseudo-class %q", ErrUnsupported, name)
				}
				cur.pseudos = append(cur.pseudos, name)
				empty = false
				i++
			default:
				return Selector{}, fmt.Errorf("%w: pseudo-class expected in %q", ErrSyntax, sel.text)
			}
		case css.LeftBracketToken:
			return Selector{}, fmt.Errorf("%w: attribute selector in %q", ErrUnsupported, sel.text)
		default:
			return Selector{}, fmt.Errorf("%w: unexpected %q in %q", ErrSyntax, t.data, sel.text)
		}
	}
	if err := push(); err != nil {
		return Selector{}, err
	}
	return sel, nil
}

// Matches reports whether the element n matches s.
func (s Selector) Matches(n *html.Node) bool {
	return s.matchFrom(len(s.parts)-1, n)
}

func (s Selector) matchFrom(i int, n *html.Node) bool {
	if !s.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch s.combinators[i-1] {
	case child:
		p := parentElement(n)
		return p != nil && s.matchFrom(i-1, p)
	default:
		for p := parentElement(n); p != nil; p = parentElement(p) {
			if s.matchFrom(i-1, p) {
				return true
			}
		}
		return false
	}
}

func (c compound) matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if c.tag != "" && c.tag != n.Data {
		return false
	}
	if c.id != "" && attr(n, "id") != c.id {
		return false
	}
	if len(c.classes) > 0 {
		have := strings.Fields(attr(n, "class"))
		for _, want := range c.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	for _, p := range c.pseudos {
		if !matchPseudo(p, n) {
			return false
		}
	}
	return true
}

func matchPseudo(name string, n *html.Node) bool {
	switch name {
	case "link":
		return n.Data == "a" && hasAttr(n, "href")
	case "first-child":
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode {
				return false
			}
		}
		return parentElement(n) != nil
	case "last-child":
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode {
				return false
			}
		}
		return parentElement(n) != nil
	case "root":
		return parentElement(n) == nil
	}
	return false
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
