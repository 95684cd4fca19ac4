package style

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// token is one lexed CSS token. Comments are dropped during lexing.
type token struct {
	typ  css.TokenType
	data string
}

// Parse parses a stylesheet. Every syntax error, unsupported construct and
// invalid value is reported; nothing is silently dropped.
func Parse(src string) (*Stylesheet, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	sheet := &Stylesheet{source: src}
	if err := p.parseRules(sheet, false); err != nil {
		return nil, err
	}
	return sheet, nil
}

// MustParse is like Parse but panics on error. It is meant for embedded
// stylesheets that are known to be valid.
func MustParse(src string) *Stylesheet {
	sheet, err := Parse(src)
	if err != nil {
		panic("style: " + err.Error())
	}
	return sheet
}

// ParseDeclarations parses the content of a style attribute.
func ParseDeclarations(src string) ([]Declaration, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	decls, err := p.parseDeclarations(false, false)
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.peek().data)
	}
	return decls, nil
}

func tokenize(src string) ([]token, error) {
	l := css.NewLexer(parse.NewInputString(src))
	var toks []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			return toks, nil
		case css.CommentToken:
			continue
		case css.BadStringToken, css.BadURLToken:
			return nil, fmt.Errorf("%w: malformed token %q", ErrSyntax, string(data))
		}
		toks = append(toks, token{typ: tt, data: string(data)})
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek() token {
	if p.eof() {
		return token{typ: css.ErrorToken}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek().typ {
		case css.WhitespaceToken, css.CDOToken, css.CDCToken:
			p.pos++
		default:
			return
		}
	}
}

// parseRules reads rules until EOF, or until a closing brace when nested.
func (p *parser) parseRules(sheet *Stylesheet, nested bool) error {
	for {
		p.skipSpace()
		if p.eof() {
			if nested {
				return fmt.Errorf("%w: unterminated block", ErrSyntax)
			}
			return nil
		}
		t := p.peek()
		switch t.typ {
		case css.RightBraceToken:
			if !nested {
				return fmt.Errorf("%w: unexpected '}'", ErrSyntax)
			}
			p.pos++
			return nil
		case css.AtKeywordToken:
			if err := p.parseAtRule(sheet); err != nil {
				return err
			}
		default:
			if err := p.parseQualifiedRule(sheet); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseQualifiedRule(sheet *Stylesheet) error {
	var prelude []token
	for {
		if p.eof() {
			return fmt.Errorf("%w: rule without block", ErrSyntax)
		}
		t := p.next()
		if t.typ == css.LeftBraceToken {
			break
		}
		if t.typ == css.SemicolonToken || t.typ == css.RightBraceToken {
			return fmt.Errorf("%w: unexpected %q in selector", ErrSyntax, t.data)
		}
		prelude = append(prelude, t)
	}
	selectors, err := parseSelectorList(prelude)
	if err != nil {
		return err
	}
	decls, err := p.parseDeclarations(true, false)
	if err != nil {
		return fmt.Errorf("%s: %w", joinTokens(trimSpace(prelude)), err)
	}
	sheet.Rules = append(sheet.Rules, Rule{
		Selectors:    selectors,
		Declarations: decls,
		order:        len(sheet.Rules),
	})
	return nil
}

func (p *parser) parseAtRule(sheet *Stylesheet) error {
	name := strings.ToLower(strings.TrimPrefix(p.next().data, "@"))
	var prelude []token
	for !p.eof() {
		t := p.peek()
		if t.typ == css.LeftBraceToken || t.typ == css.SemicolonToken {
			break
		}
		prelude = append(prelude, p.next())
	}
	if p.eof() {
		return fmt.Errorf("%w: unterminated @%s", ErrSyntax, name)
	}
	prelude = trimSpace(prelude)
	block := p.next().typ == css.LeftBraceToken

	switch name {
	case "charset":
		if block {
			return fmt.Errorf("%w: @charset with a block", ErrSyntax)
		}
		return nil
	case "page":
		if !block {
			return fmt.Errorf("%w: @page without a block", ErrSyntax)
		}
		if len(prelude) > 0 {
			return fmt.Errorf("%w: @page selector %q", ErrUnsupported, joinTokens(prelude))
		}
		decls, err := p.parseDeclarations(true, true)
		if err != nil {
			return fmt.Errorf("@page: %w", err)
		}
		sheet.Page = append(sheet.Page, decls...)
		return nil
	case "media":
		if !block {
			return fmt.Errorf("%w: @media without a block", ErrSyntax)
		}
		applies, err := mediaApplies(prelude)
		if err != nil {
			return err
		}
		if applies {
			return p.parseRules(sheet, true)
		}
		return p.skipBlock()
	}
	return fmt.Errorf("%w: at-rule @%s", ErrUnsupported, name)
}

// mediaApplies evaluates a media type list against print output.
func mediaApplies(prelude []token) (bool, error) {
	if len(prelude) == 0 {
		return true, nil
	}
	applies := false
	for _, t := range prelude {
		switch t.typ {
		case css.WhitespaceToken, css.CommaToken:
		case css.IdentToken:
			switch strings.ToLower(t.data) {
			case "print", "all":
				applies = true
			case "only":
			case "not":
				return false, fmt.Errorf("%w: negated media query", ErrUnsupported)
			}
		default:
			return false, fmt.Errorf("%w: media query %q", ErrUnsupported, joinTokens(prelude))
		}
	}
	return applies, nil
}

func (p *parser) skipBlock() error {
	depth := 1
	for !p.eof() {
		switch p.next().typ {
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: unterminated block", ErrSyntax)
}

// parseDeclarations reads "name: value [!important]" pairs. When braced, it
// consumes the closing brace.
func (p *parser) parseDeclarations(braced, page bool) ([]Declaration, error) {
	var out []Declaration
	for {
		p.skipSpace()
		if p.eof() {
			if braced {
				return nil, fmt.Errorf("%w: unterminated declaration block", ErrSyntax)
			}
			return out, nil
		}
		t := p.next()
		switch t.typ {
		case css.SemicolonToken:
			continue
		case css.RightBraceToken:
			if !braced {
				return nil, fmt.Errorf("%w: unexpected '}'", ErrSyntax)
			}
			return out, nil
		case css.CustomPropertyNameToken:
			return nil, fmt.Errorf("%w: custom property %q", ErrUnsupported, t.data)
		case css.IdentToken:
		default:
			return nil, fmt.Errorf("%w: property name expected, got %q", ErrSyntax, t.data)
		}
		name := strings.ToLower(t.data)
		p.skipSpace()
		if p.next().typ != css.ColonToken {
			return nil, fmt.Errorf("%w: ':' expected after %q", ErrSyntax, name)
		}
		raw, err := p.readValue()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		value, important, err := components(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if page && !pageProperties[expandedName(name)] || !page && name == "size" {
			return nil, fmt.Errorf("%w: property %q in this context", ErrUnsupported, name)
		}
		decls, err := expand(name, value, important)
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
}

// expandedName maps the margin shorthand onto one of its longhands so that
// context checks treat both alike.
func expandedName(name string) string {
	if name == "margin" {
		return "margin-top"
	}
	return name
}

// readValue collects tokens up to the next top-level ';' or '}'.
// The terminator is left unread.
func (p *parser) readValue() ([]token, error) {
	var out []token
	depth := 0
	for !p.eof() {
		t := p.peek()
		switch t.typ {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
			}
		case css.LeftBraceToken:
			return nil, fmt.Errorf("%w: unexpected '{' in value", ErrSyntax)
		case css.SemicolonToken, css.RightBraceToken:
			if depth == 0 {
				return out, nil
			}
			return nil, fmt.Errorf("%w: unclosed function", ErrSyntax)
		}
		out = append(out, p.next())
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unclosed function", ErrSyntax)
	}
	return out, nil
}

// components groups value tokens into components and strips !important.
func components(toks []token) ([]component, bool, error) {
	toks = trimSpace(toks)
	important := false
	if n := len(toks); n >= 2 && toks[n-1].typ == css.IdentToken &&
		strings.EqualFold(toks[n-1].data, "important") {
		bang := n - 2
		for bang >= 0 && toks[bang].typ == css.WhitespaceToken {
			bang--
		}
		if bang >= 0 && toks[bang].typ == css.DelimToken && toks[bang].data == "!" {
			important = true
			toks = trimSpace(toks[:bang])
		}
	}
	cs, rest, err := groupComponents(toks)
	if err != nil {
		return nil, false, err
	}
	if len(rest) > 0 {
		return nil, false, fmt.Errorf("%w: unbalanced ')'", ErrSyntax)
	}
	return cs, important, nil
}

// groupComponents consumes tokens until an unmatched ')' and returns the
// remaining tokens starting at that parenthesis.
func groupComponents(toks []token) ([]component, []token, error) {
	var out []component
	for len(toks) > 0 {
		t := toks[0]
		toks = toks[1:]
		switch t.typ {
		case css.WhitespaceToken:
			continue
		case css.RightParenthesisToken:
			return out, append([]token{t}, toks...), nil
		case css.FunctionToken:
			args, rest, err := groupComponents(toks)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) == 0 {
				return nil, nil, fmt.Errorf("%w: unclosed %s", ErrSyntax, t.data)
			}
			out = append(out, component{typ: t.typ, text: t.data, args: args})
			toks = rest[1:]
		case css.LeftParenthesisToken, css.LeftBracketToken:
			return nil, nil, fmt.Errorf("%w: unexpected %q in value", ErrSyntax, t.data)
		case css.DelimToken:
			if t.data == "!" {
				return nil, nil, fmt.Errorf("%w: misplaced '!'", ErrSyntax)
			}
			out = append(out, component{typ: t.typ, text: t.data})
		default:
			out = append(out, component{typ: t.typ, text: t.data})
		}
	}
	return out, nil, nil
}

func trimSpace(toks []token) []token {
	for len(toks) > 0 && toks[0].typ == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].typ == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func joinTokens(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.typ == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(t.data)
	}
	return b.String()
}
