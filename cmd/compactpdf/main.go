package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS value,
	// in which case the runtime default applies.
	_, _ = maxprocs.Set(maxprocs.Logger(procsLogger(os.Args[1:], os.Stderr)))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// procsLogger reports the GOMAXPROCS adjustment only in verbose mode.
func procsLogger(args []string, w io.Writer) func(string, ...any) {
	if slices.Contains(args, "-v") || slices.Contains(args, "--verbose") {
		return func(format string, a ...any) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
	return func(string, ...any) {}
}

// runMain parses args, runs the conversion and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch {
	case flags.help:
		printUsage(env.Stdout)
		return ExitSuccess
	case flags.version:
		fmt.Fprintf(env.Stdout, "compactpdf %s\n", Version)
		return ExitSuccess
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := run(ctx, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}
