package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	compactpdf "github.com/alnah/go-compactpdf"
	"github.com/alnah/go-compactpdf/internal/render"
)

// ---------------------------------------------------------------------------
// TestConvertBatch - Worker pool conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []FileToConvert
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		in := writeFile(t, filepath.Join(dir, name+".md"), "# "+name+"\n")
		files = append(files, FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, "out", name+".pdf")})
	}

	renderer := &stubRenderer{}
	pool := stubPool(2, renderer)
	defer pool.Close()

	results := convertBatch(context.Background(), pool, files, batchOptions{timeout: time.Minute})

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d error = %v", i, r.Err)
			continue
		}
		if r.InputPath != files[i].InputPath {
			t.Errorf("result %d InputPath = %q, want %q (order must match input)", i, r.InputPath, files[i].InputPath)
		}
		if r.Pages != 1 {
			t.Errorf("result %d Pages = %d, want 1", i, r.Pages)
		}
		assertPDF(t, files[i].OutputPath)
	}
	if renderer.calls != len(files) {
		t.Errorf("renderer calls = %d, want %d", renderer.calls, len(files))
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	pool := stubPool(1, &stubRenderer{})
	defer pool.Close()

	if got := convertBatch(context.Background(), pool, nil, batchOptions{}); got != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", got)
	}
}

func TestConvertBatch_ConverterInitFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
	files := []FileToConvert{
		{InputPath: in, OutputPath: filepath.Join(dir, "doc.pdf")},
		{InputPath: in, OutputPath: filepath.Join(dir, "doc2.pdf")},
	}

	initErr := render.ErrBrowserConnect
	pool := compactpdf.NewConverterPool(1, func() (*compactpdf.Converter, error) {
		return nil, initErr
	})
	defer pool.Close()

	results := convertBatch(context.Background(), pool, files, batchOptions{})
	for i, r := range results {
		if !errors.Is(r.Err, ErrConverterInit) || !errors.Is(r.Err, render.ErrBrowserConnect) {
			t.Errorf("result %d error = %v, want ErrConverterInit wrapping ErrBrowserConnect", i, r.Err)
		}
	}
	if _, err := os.Stat(files[0].OutputPath); !os.IsNotExist(err) {
		t.Error("no PDF should be written when the converter cannot start")
	}
}

func TestConvertBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
	files := []FileToConvert{{InputPath: in, OutputPath: filepath.Join(dir, "doc.pdf")}}

	renderer := &stubRenderer{}
	pool := stubPool(1, renderer)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := convertBatch(ctx, pool, files, batchOptions{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
	if renderer.calls != 0 {
		t.Errorf("renderer calls = %d, want 0", renderer.calls)
	}
}

// ---------------------------------------------------------------------------
// TestConvertFile - Single document conversion and output writing
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	conv, err := compactpdf.NewConverter(compactpdf.WithRenderer(&stubRenderer{}), compactpdf.WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("writes PDF into new directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
		out := filepath.Join(dir, "nested", "deeper", "doc.pdf")

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, batchOptions{})
		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		assertPDF(t, out)
		if _, err := os.Stat(filepath.Join(dir, "nested", "deeper", "doc.html")); !os.IsNotExist(err) {
			t.Error("HTML should only be written with --html")
		}
	})

	t.Run("writes HTML when requested", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
		out := filepath.Join(dir, "doc.pdf")

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, batchOptions{html: true})
		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		html, err := os.ReadFile(filepath.Join(dir, "doc.html"))
		if err != nil {
			t.Fatalf("reading HTML: %v", err)
		}
		if !strings.Contains(string(html), "<h1") {
			t.Errorf("HTML missing heading: %s", html)
		}
	})

	t.Run("converts stdin content", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "stdin.pdf")
		f := FileToConvert{InputPath: stdinArg, OutputPath: out, Content: []byte("# From stdin\n"), FromStdin: true}

		r := convertFile(context.Background(), conv, f, batchOptions{})
		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		if r.InputPath != "<stdin>" {
			t.Errorf("InputPath = %q, want <stdin>", r.InputPath)
		}
		assertPDF(t, out)
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		r := convertFile(context.Background(), conv, FileToConvert{
			InputPath:  filepath.Join(dir, "gone.md"),
			OutputPath: filepath.Join(dir, "gone.pdf"),
		}, batchOptions{})
		if !errors.Is(r.Err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", r.Err)
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
		// A directory occupies the output path.
		out := filepath.Join(dir, "taken.pdf")
		if err := os.Mkdir(out, 0o750); err != nil {
			t.Fatal(err)
		}

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, batchOptions{})
		if !errors.Is(r.Err, ErrWritePDF) {
			t.Errorf("error = %v, want ErrWritePDF", r.Err)
		}
	})
}

func TestConvertFile_RenderFailureWritesNothing(t *testing.T) {
	t.Parallel()

	conv, err := compactpdf.NewConverter(compactpdf.WithRenderer(&stubRenderer{err: errRender}), compactpdf.WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "doc.md"), "# Doc\n")
	out := filepath.Join(dir, "doc.pdf")

	r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, batchOptions{html: true})
	if !errors.Is(r.Err, compactpdf.ErrConversionFailed) {
		t.Errorf("error = %v, want ErrConversionFailed", r.Err)
	}
	for _, p := range []string{out, filepath.Join(dir, "doc.html")} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should not exist after a failed conversion", p)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.pdf", Pages: 2, Duration: 12 * time.Millisecond},
		{InputPath: "b.md", Err: compactpdf.ErrConversionFailed},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		notStdout  []string
	}{
		{
			name:       "default",
			wantStdout: []string{"Created a.pdf", "1 succeeded, 1 failed"},
		},
		{
			name:       "verbose",
			verbose:    true,
			wantStdout: []string{"a.md -> a.pdf (2 pages, 12ms)"},
		},
		{
			name:      "quiet",
			quiet:     true,
			notStdout: []string{"Created", "succeeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv("")
			summary := printResults(results, tt.quiet, tt.verbose, env)

			if summary.Succeeded != 1 || summary.Failed != 1 {
				t.Errorf("summary = %+v, want 1 succeeded, 1 failed", summary)
			}
			if !strings.Contains(stderr.String(), "FAILED b.md: conversion failed") {
				t.Errorf("stderr = %q, want failure line", stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q, want %q", stdout.String(), want)
				}
			}
			for _, not := range tt.notStdout {
				if strings.Contains(stdout.String(), not) {
					t.Errorf("stdout = %q, should not contain %q", stdout.String(), not)
				}
			}
		})
	}
}

func TestNewBatchError(t *testing.T) {
	t.Parallel()

	if err := newBatchError([]ConversionResult{{InputPath: "a.md"}}); err != nil {
		t.Errorf("all succeeded: error = %v, want nil", err)
	}

	err := newBatchError([]ConversionResult{
		{InputPath: "a.md"},
		{InputPath: "b.md", Err: ErrWritePDF},
		{InputPath: "c.md", Err: compactpdf.ErrConversionFailed},
	})
	if err == nil {
		t.Fatal("error = nil, want batch error")
	}
	if err.Error() != "2 of 3 conversion(s) failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrWritePDF) {
		t.Error("batch error should unwrap to the first failure")
	}
}
