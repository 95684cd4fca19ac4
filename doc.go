// Package compactpdf converts Markdown documents to compact, print-ready PDF.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := compactpdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, "# Jane Doe\n\nSoftware engineer.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("resume.pdf", result.PDF, 0o644)
//
// MarkdownToPDF does the same in one call and returns nil on failure.
//
// # Conversion Pipeline
//
// A conversion runs three stages:
//
//  1. Parsing: Markdown to an HTML fragment via goldmark, with tables,
//     fenced code, footnotes, definition lists, abbreviations, attributes
//     and smart typography.
//  2. Styling: the fragment is wrapped in an HTML document embedding the
//     fixed compact stylesheet.
//  3. Rendering: the native engine lays the document out and paints it with
//     fpdf. Identical input yields byte-identical output.
//
// Failures are logged once through charmbracelet/log with their stage and
// kind (parse, render, unexpected); the caller only sees ErrConversionFailed.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := compactpdf.NewConverter(
//	    compactpdf.WithPageSize("letter"),
//	    compactpdf.WithBaseDir("/path/to/markdown"),
//	    compactpdf.WithHighlighting("github"),
//	    compactpdf.WithLogger(logger),
//	)
//
// WithChrome switches to headless Chrome (go-rod), which needs a browser and
// produces output that differs between runs.
//
// # Parallel Processing
//
// Converter is safe for concurrent use with the native renderer. For batch
// conversion with per-worker converters, use ConverterPool:
//
//	pool := compactpdf.NewConverterPool(compactpdf.ResolvePoolSize(0, false), func() (*compactpdf.Converter, error) {
//	    return compactpdf.NewConverter()
//	})
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
package compactpdf
