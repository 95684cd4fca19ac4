package style

import "github.com/alnah/go-compactpdf/internal/assets"

// CompactVersion identifies the revision of the compact stylesheet.
// Bump it whenever compact.css changes output.
const CompactVersion = 1

// Stylesheet is a parsed stylesheet. It is never mutated after parsing and
// is safe to share between goroutines.
type Stylesheet struct {
	source string
	Rules  []Rule
	Page   []Declaration
}

// Rule is a qualified rule: a selector list and its declarations.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
	order        int
}

// String returns the stylesheet source text.
func (s *Stylesheet) String() string {
	if s == nil {
		return ""
	}
	return s.source
}

// PageDeclaration returns the last @page declaration for property.
func (s *Stylesheet) PageDeclaration(property string) (Declaration, bool) {
	var found Declaration
	ok := false
	for _, d := range s.Page {
		if d.Property != property {
			continue
		}
		if ok && found.Important && !d.Important {
			continue
		}
		found, ok = d, true
	}
	return found, ok
}

// Parsed once at package initialization.
var (
	compact = MustParse(assets.MustLoadStyle(assets.CompactStyleName))
	ua      = MustParse(assets.MustLoadStyle(assets.UserAgentStyleName))
)

// Compact returns the fixed stylesheet applied to every document.
func Compact() *Stylesheet {
	return compact
}

// UserAgent returns the HTML defaults applied before author stylesheets.
func UserAgent() *Stylesheet {
	return ua
}
