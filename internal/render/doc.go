// Package render turns styled HTML documents into PDF bytes.
//
// Engine is the default renderer. It parses the document, applies its
// <style> elements through the style cascade, paginates with the layout
// package and paints the result with fpdf using the embedded Go fonts.
// Creation dates are fixed and catalogs sorted, so the same input always
// produces the same bytes.
//
// ChromeEngine prints the same document with headless Chrome through
// go-rod. It honours the document's @page rules but its output carries
// Chrome's own timestamps.
//
// Both renderers return nil bytes on any failure; errors wrap one of the
// sentinels in errors.go.
package render
