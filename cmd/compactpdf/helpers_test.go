package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	compactpdf "github.com/alnah/go-compactpdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// fixedNow is the injected clock used by CLI tests.
var fixedNow = time.Date(2024, 1, 31, 15, 45, 2, 0, time.UTC)

const fakePDF = "%PDF-1.4\n1 0 obj << /Type /Page >> endobj\n%%EOF\n"

// testEnv returns an Environment with captured output and the given
// environment variables.
func testEnv(stdin string, environ ...string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:     func() time.Time { return fixedNow },
		Stdin:   strings.NewReader(stdin),
		Stdout:  &stdout,
		Stderr:  &stderr,
		Environ: func() []string { return environ },
	}, &stdout, &stderr
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// assertPDF fails unless path holds a PDF.
func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("%s does not start with %%PDF-", path)
	}
}

// stubRenderer returns fakePDF or err.
type stubRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubRenderer) Render(_ context.Context, _ string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(fakePDF), nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// stubPool returns a pool of converters backed by r, logging nowhere.
func stubPool(size int, r compactpdf.Renderer) *compactpdf.ConverterPool {
	return compactpdf.NewConverterPool(size, func() (*compactpdf.Converter, error) {
		return compactpdf.NewConverter(
			compactpdf.WithRenderer(r),
			compactpdf.WithLogger(discardLogger()),
		)
	})
}

var errRender = errors.New("render exploded")
