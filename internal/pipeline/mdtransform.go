package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Abbreviation definition: *[HTML]: Hyper Text Markup Language
	abbrDefinition = regexp.MustCompile(`^ {0,3}\*\[([^\]]+)\]:[ \t]*(.*?)[ \t]*$`)

	// Opening or closing code fence of at least three backticks or tildes
	codeFence = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// Preprocessed is Markdown ready for the parser together with the
// abbreviations removed from it.
type Preprocessed struct {
	Markdown      string
	Abbreviations map[string]string // abbreviation -> expansion
}

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	Preprocess(ctx context.Context, content string) Preprocessed
}

// Preprocessor normalizes line endings and extracts abbreviation
// definitions. Fenced code is left untouched.
type Preprocessor struct{}

// Preprocess applies all transformations to prepare Markdown for conversion.
func (p *Preprocessor) Preprocess(ctx context.Context, content string) Preprocessed {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return Preprocessed{Markdown: content}
	}

	content = normalizeLineEndings(content)
	md, abbrs := extractAbbreviations(content)
	return Preprocessed{Markdown: md, Abbreviations: abbrs}
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// extractAbbreviations removes definition lines outside fenced code and
// returns them keyed by abbreviation. Later definitions win; an empty
// expansion cancels an earlier one.
func extractAbbreviations(content string) (string, map[string]string) {
	if !strings.Contains(content, "*[") {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	abbrs := make(map[string]string)
	fence := ""
	for _, line := range lines {
		if m := codeFence.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
			case closesFence(line, fence):
				fence = ""
			}
			kept = append(kept, line)
			continue
		}
		if fence == "" {
			if m := abbrDefinition.FindStringSubmatch(line); m != nil {
				name := strings.TrimSpace(m[1])
				if m[2] == "" {
					delete(abbrs, name)
				} else {
					abbrs[name] = m[2]
				}
				continue
			}
		}
		kept = append(kept, line)
	}
	if len(abbrs) == 0 {
		abbrs = nil
	}
	return strings.Join(kept, "\n"), abbrs
}

// closesFence reports whether line closes a fence opened with open: same
// character, at least as long, nothing but spaces after it.
func closesFence(line, open string) bool {
	trimmed := strings.TrimSpace(line)
	run := strings.TrimLeft(trimmed, open[:1])
	return run == "" && len(trimmed) >= len(open)
}
