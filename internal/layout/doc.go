// Package layout paginates a styled HTML document into positioned drawing
// items.
//
// Layout runs in three passes. The builder walks the DOM with computed
// styles and produces a tree of block boxes whose inline content is kept as
// runs. The flow then lays every box out at its final width and flattens
// the tree into strips: line boxes, table rows, images and the top and
// bottom edges of decorated boxes. Finally the paginator stacks strips onto
// pages, breaking where a strip no longer fits, repeating table headers and
// painting backgrounds and borders per page fragment.
//
// Text measurement is delegated to the Fonts interface so that the same
// layout drives the PDF painter and the tests, which use fixed-width fonts.
package layout
