package layout

import "strings"

// substitutes maps runes often missing from the embedded faces to look-alikes.
var substitutes = map[rune]string{
	'↩':      "←",
	'↪':      "→",
	'⇒':      "=>",
	'⇐':      "<=",
	'✓':      "v",
	'✔':      "v",
	'✗':      "x",
	'✘':      "x",
	'★':      "*",
	'☆':      "*",
	'◦':      "o",
	'▪':      "-",
	'\u2011': "-",
	'\u2212': "-",
	'\u2043': "-",
	'\u2007': " ",
	'\u2009': " ",
	'\u202F': " ",
}

// dropped reports runes that are never drawn: variation selectors, joiners
// and control characters.
func dropped(r rune) bool {
	switch {
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	case r == 0x200B, r == 0x200C, r == 0x200D, r == 0x2060, r == 0xFEFF, r == 0x00AD:
		return true
	case r < 0x20 && r != '\n':
		return true
	case r >= 0x7F && r < 0xA0:
		return true
	}
	return false
}

// sanitize replaces runes the font cannot draw so that measured and painted
// text agree.
func sanitize(s string, f Font, fonts Fonts) string {
	clean := true
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case dropped(r):
		case fonts.HasGlyph(r, f):
			b.WriteRune(r)
		default:
			b.WriteString(substitute(r, f, fonts))
		}
	}
	return b.String()
}

func substitute(r rune, f Font, fonts Fonts) string {
	sub, ok := substitutes[r]
	if !ok {
		return "?"
	}
	for _, sr := range sub {
		if !fonts.HasGlyph(sr, f) {
			return "?"
		}
	}
	return sub
}
