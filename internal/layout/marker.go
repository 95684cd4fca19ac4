package layout

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-compactpdf/internal/style"
)

// markerText returns the list marker of list item n, or "" for none.
func markerText(n *html.Node, cs *style.Computed) string {
	switch cs.ListStyleType {
	case "none":
		return ""
	case "disc":
		return "•"
	case "circle":
		return "◦"
	case "square":
		return "▪"
	}
	ord := ordinal(n)
	switch cs.ListStyleType {
	case "lower-alpha", "lower-latin":
		return alpha(ord) + "."
	case "upper-alpha", "upper-latin":
		return strings.ToUpper(alpha(ord)) + "."
	case "lower-roman":
		return roman(ord) + "."
	case "upper-roman":
		return strings.ToUpper(roman(ord)) + "."
	}
	return strconv.Itoa(ord) + "."
}

// ordinal returns the counter value of a list item, honouring the start
// attribute of an enclosing <ol>.
func ordinal(n *html.Node) int {
	start := 1
	if p := n.Parent; p != nil && p.Data == "ol" {
		if v, err := strconv.Atoi(attr(p, "start")); err == nil {
			start = v
		}
	}
	count := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == "li" {
			count++
		}
	}
	return start + count
}

// alpha renders 1 as "a", 26 as "z", 27 as "aa".
func alpha(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var romanTable = []struct {
	value int
	digit string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// roman renders n in lower-case roman numerals. Values outside 1..3999 fall
// back to decimal.
func roman(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.digit)
			n -= r.value
		}
	}
	return b.String()
}
