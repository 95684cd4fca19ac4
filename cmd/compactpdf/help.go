package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: compactpdf [flags] [file.md | dir | -]...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown to compact, print-ready PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file.md    Markdown file (.md or .markdown)")
	fmt.Fprintln(w, "  dir        Directory, converted recursively")
	fmt.Fprintln(w, "  -          Read markdown from standard input")
	fmt.Fprintln(w, "             (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single input) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --html                Also write the styled HTML")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --renderer <s>        Renderer: native (default), chrome")
	fmt.Fprintln(w, "      --page-size <s>       Page size: a4 (default), letter, legal, a3, a5")
	fmt.Fprintln(w, "      --highlight[=style]   Colour fenced code (default style: github)")
	fmt.Fprintln(w, "      --no-highlight        Disable code highlighting")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout, e.g. 30s, 2m")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug diagnostics and timing")
	fmt.Fprintln(w, "      --print-config        Print the effective configuration")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  COMPACTPDF_CONFIG, COMPACTPDF_RENDERER, COMPACTPDF_PAGE_SIZE,")
	fmt.Fprintln(w, "  COMPACTPDF_TIMEOUT, COMPACTPDF_WORKERS, COMPACTPDF_INPUT_DIR,")
	fmt.Fprintln(w, "  COMPACTPDF_OUTPUT_DIR, COMPACTPDF_LOG_LEVEL")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 conversion failed, 2 usage, 3 I/O, 4 browser")
}
