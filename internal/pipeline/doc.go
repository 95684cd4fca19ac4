// Package pipeline implements the Markdown-to-styled-HTML stages of a
// conversion:
//   - Markdown preprocessing (line endings, abbreviation definitions)
//   - Markdown to HTML fragment conversion via goldmark
//   - Resolution of relative image and link paths
//   - Wrapping the fragment in a document shell with the compact stylesheet
//
// PDF rendering is handled separately by the render package. Every stage here
// is a pure function of its input: no stage reads files or the clock.
package pipeline
