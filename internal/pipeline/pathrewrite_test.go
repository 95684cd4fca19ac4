package pipeline

// Notes:
// - Error branches of html.ParseFragment/Render are not exercised: the html
//   package does not fail on in-memory input.
// - Path traversal tests check the observable behavior (path not rewritten).

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testBaseDir() string {
	if runtime.GOOS == "windows" {
		return `C:\docs`
	}
	return "/docs"
}

// ---------------------------------------------------------------------------
// TestResolveRelativePaths - Rewriting rules
// ---------------------------------------------------------------------------

func TestResolveRelativePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		baseDir      string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "relative image with dot slash",
			html:         `<img src="./images/logo.png"/>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="file://`, `images/logo.png"`},
		},
		{
			name:         "relative image without dot slash",
			html:         `<p><img src="photo.jpg" alt="me"/></p>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="file://`, `alt="me"`},
		},
		{
			name:         "relative link rewritten",
			html:         `<a href="portfolio.pdf">Portfolio</a>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`href="file://`},
		},
		{
			name:         "absolute path unchanged",
			html:         `<img src="/abs/logo.png">`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="/abs/logo.png"`},
		},
		{
			name:         "https URL unchanged",
			html:         `<img src="https://example.com/logo.png">`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="https://example.com/logo.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,ABC123">`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="data:image/png;base64,ABC123"`},
		},
		{
			name:         "mailto unchanged",
			html:         `<a href="mailto:jane@example.com">mail</a>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`href="mailto:jane@example.com"`},
		},
		{
			name:         "anchor unchanged",
			html:         `<a href="#fn:1">1</a>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`href="#fn:1"`},
		},
		{
			name:         "protocol-relative URL unchanged",
			html:         `<img src="//cdn.example.com/logo.png">`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="//cdn.example.com/logo.png"`},
		},
		{
			name:         "empty baseDir returns unchanged",
			html:         `<img src="./logo.png">`,
			baseDir:      "",
			wantContains: []string{`src="./logo.png"`},
		},
		{
			name:         "script src not rewritten",
			html:         `<script src="./script.js"></script>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`src="./script.js"`},
		},
		{
			name:         "nested and multiple images",
			html:         `<div><p><img src="a.png"><img src="b.png"></p></div>`,
			baseDir:      testBaseDir(),
			wantContains: []string{`a.png"`, `b.png"`},
			wantExcludes: []string{`src="a.png"`, `src="b.png"`},
		},
		{
			name:         "text without markup unchanged",
			html:         `plain text`,
			baseDir:      testBaseDir(),
			wantContains: []string{`plain text`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveRelativePaths(tt.html, tt.baseDir)
			if err != nil {
				t.Fatalf("ResolveRelativePaths() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ResolveRelativePaths() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("ResolveRelativePaths() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestResolveRelativePaths_UnchangedKeepsInput(t *testing.T) {
	t.Parallel()

	in := `<p>see <a href="https://example.com">site</a><br/></p>`
	got, err := ResolveRelativePaths(in, testBaseDir())
	if err != nil {
		t.Fatalf("ResolveRelativePaths() error = %v", err)
	}
	if got != in {
		t.Errorf("ResolveRelativePaths() = %q, want input unchanged", got)
	}
}

func TestResolveRelativePaths_PathTraversal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		html         string
		wantContains string
	}{
		{
			name:         "parent directory traversal blocked",
			html:         `<img src="../../../etc/passwd">`,
			wantContains: `src="../../../etc/passwd"`,
		},
		{
			name:         "double dot in middle blocked",
			html:         `<img src="images/../../../etc/passwd">`,
			wantContains: `src="images/../../../etc/passwd"`,
		},
		{
			name:         "valid subdirectory allowed",
			html:         `<img src="images/../photo.png">`,
			wantContains: `src="file://`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveRelativePaths(tt.html, testBaseDir())
			if err != nil {
				t.Fatalf("ResolveRelativePaths() error = %v", err)
			}
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("ResolveRelativePaths() = %q, want to contain %q", got, tt.wantContains)
			}
		})
	}
}

func TestResolveRelativePaths_RealDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := ResolveRelativePaths(`<img src="my%20photo.png">`, dir)
	if err != nil {
		t.Fatalf("ResolveRelativePaths() error = %v", err)
	}
	want := pathToFileURL(filepath.Join(dir, "my photo.png"))
	if !strings.Contains(got, want) {
		t.Errorf("ResolveRelativePaths() = %q, want to contain %q", got, want)
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix path layout")
	}
	if got := pathToFileURL("/docs/a b.png"); got != "file:///docs/a%20b.png" {
		t.Errorf("pathToFileURL() = %q, want %q", got, "file:///docs/a%20b.png")
	}
}
