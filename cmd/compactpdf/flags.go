package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-compactpdf/internal/config"
	"github.com/alnah/go-compactpdf/internal/render"
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// cliFlags holds every command-line flag.
type cliFlags struct {
	output      string
	config      string
	quiet       bool
	verbose     bool
	workers     int
	timeout     string
	renderer    string
	pageSize    string
	highlight   string
	noHighlight bool
	html        bool
	printConfig bool
	version     bool
	help        bool

	args []string
	fs   *flag.FlagSet
}

// parseFlags parses command-line arguments, excluding the program name.
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("compactpdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug diagnostics and timing")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout, e.g. 30s, 2m")
	fs.StringVar(&f.renderer, "renderer", "", "renderer: native, chrome")
	fs.StringVar(&f.pageSize, "page-size", "", "page size: a4, letter, legal, a3, a5")
	fs.StringVar(&f.highlight, "highlight", "", "colour fenced code with a chroma style")
	fs.Lookup("highlight").NoOptDefVal = render.DefaultHighlightStyle
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable code highlighting")
	fs.BoolVar(&f.html, "html", false, "also write the styled HTML next to each PDF")
	fs.BoolVar(&f.printConfig, "print-config", false, "print the effective configuration and exit")
	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.quiet && f.verbose {
		return nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	if fs.Changed("highlight") && f.noHighlight {
		return nil, fmt.Errorf("%w: --highlight and --no-highlight are mutually exclusive", ErrUsage)
	}

	f.args = fs.Args()
	f.fs = fs
	return f, nil
}

// changed reports whether the named flag was set on the command line.
func (f *cliFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// mergeFlags merges explicitly set flags into cfg. CLI values win.
func mergeFlags(f *cliFlags, cfg *config.Config) {
	if f.changed("renderer") {
		cfg.Renderer = f.renderer
	}
	if f.changed("page-size") {
		cfg.Page.Size = f.pageSize
	}
	if f.changed("highlight") {
		cfg.Highlight.Enabled = true
		cfg.Highlight.Style = f.highlight
	}
	if f.noHighlight {
		cfg.Highlight.Enabled = false
	}
	if f.changed("workers") {
		cfg.Workers = f.workers
	}
	if f.changed("timeout") {
		cfg.Timeout = f.timeout
	}
}
