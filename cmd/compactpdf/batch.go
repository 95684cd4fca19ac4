package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	compactpdf "github.com/alnah/go-compactpdf"
	"github.com/alnah/go-compactpdf/internal/fileutil"
	"github.com/alnah/go-compactpdf/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrWritePDF      = errors.New("failed to write PDF file")
	ErrWriteHTML     = errors.New("failed to write HTML file")
	ErrConverterInit = errors.New("failed to initialize converter")
)

// documentConverter is the part of *compactpdf.Converter the batch uses.
type documentConverter interface {
	Convert(ctx context.Context, markdown string) (*compactpdf.Result, error)
	ConvertFile(ctx context.Context, path string) (*compactpdf.Result, error)
}

// Compile-time interface implementation check.
var _ documentConverter = (*compactpdf.Converter)(nil)

// batchOptions groups settings shared by every document in a batch.
type batchOptions struct {
	timeout time.Duration
	html    bool
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently with converters from pool.
func convertBatch(ctx context.Context, pool *compactpdf.ConverterPool, files []FileToConvert, opts batchOptions) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))
	results := make([]ConversionResult, len(files))
	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Go(func() {
			conv, err := pool.Acquire()
			if err != nil {
				// No converter for this worker: fail whatever it would have taken.
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].displayName(),
						Err:       fmt.Errorf("%w: %w", ErrConverterInit, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].displayName(),
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], opts)
			}
		})
	}

	wg.Wait()
	return results
}

// convertFile converts one document and writes its outputs.
func convertFile(ctx context.Context, conv documentConverter, f FileToConvert, opts batchOptions) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.displayName(),
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var (
		res *compactpdf.Result
		err error
	)
	if f.FromStdin {
		res, err = conv.Convert(ctx, string(f.Content))
	} else {
		res, err = conv.ConvertFile(ctx, f.InputPath)
	}
	if err != nil {
		return fail(err)
	}

	if outDir := filepath.Dir(f.OutputPath); outDir != "" {
		if err := os.MkdirAll(outDir, dirPermissions); err != nil {
			return fail(fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory()))
		}
	}

	if opts.html {
		htmlPath := fileutil.ReplaceExt(f.OutputPath, ".html")
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlPath, []byte(res.HTML), filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrWriteHTML, err))
		}
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.PDF, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWritePDF, err))
	}

	result.Pages = res.Pages
	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure summary.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)\n", r.InputPath, r.OutputPath, r.Pages, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}

// batchError reports failed conversions. It unwraps to the first failure so
// exit codes reflect its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.first
}

// newBatchError returns nil when every conversion succeeded.
func newBatchError(results []ConversionResult) error {
	var first error
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
		}
	}
	if failed == 0 {
		return nil
	}
	return &batchError{failed: failed, total: len(results), first: first}
}
