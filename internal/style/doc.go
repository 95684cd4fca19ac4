// Package style parses CSS stylesheets and computes element styles.
//
// Only the subset of CSS needed for print layout is understood: type, class
// and id selectors with descendant and child combinators, a handful of
// pseudo-classes, @page and @media blocks, and the box, text and table
// properties listed in properties.go. Anything else is rejected with
// ErrUnsupported rather than silently ignored, so a stylesheet either renders
// as written or fails loudly.
//
// The compact document stylesheet and the HTML defaults sheet are parsed once
// at package initialization and shared read-only by every conversion:
//
//	cascade := style.NewCascade(style.UserAgent(), style.Compact())
//	computed := cascade.Compute(node, parentStyle)
package style
