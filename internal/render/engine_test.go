package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-compactpdf/internal/style"
)

// styledDoc wraps body in a document carrying the compact stylesheet.
func styledDoc(title, body string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" + title +
		"</title><style>" + style.Compact().String() + "</style></head><body>" +
		body + "</body></html>"
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		opts []EngineOption
	}{
		{
			name: "paragraphs",
			body: "<h1>Jane Doe</h1><p>Engineer – “quoted” … done</p>",
		},
		{
			name: "table",
			body: "<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>",
		},
		{
			name: "lists and code",
			body: "<ul><li>one</li><li>two</li></ul><pre><code class=\"language-go\">x := 1\n</code></pre>",
		},
		{
			name: "highlighted code",
			body: "<pre><code class=\"language-go\">func main() {}\n</code></pre>",
			opts: []EngineOption{WithHighlighting("")},
		},
		{
			name: "links",
			body: "<h2 id=\"exp\">Experience</h2><p><a href=\"#exp\">up</a> <a href=\"https://example.com\">site</a></p>",
		},
		{
			name: "letter",
			body: "<p>x</p>",
			opts: []EngineOption{WithPageSize(Letter)},
		},
		{
			name: "uncovered glyphs",
			body: "<p>中文 😀 ok</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf, err := NewEngine(tt.opts...).Render(context.Background(), styledDoc("T", tt.body))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
				t.Errorf("output starts with %q, want %%PDF-", pdf[:min(8, len(pdf))])
			}
		})
	}
}

func TestEngine_RenderIsDeterministic(t *testing.T) {
	t.Parallel()

	doc := styledDoc("Resume", "<h1>Resume</h1><h2>Skills</h2><ul><li>Go</li><li>SQL</li></ul>"+
		"<table><tr><th>Year</th><th>Role</th></tr><tr><td>2024</td><td>Engineer</td></tr></table>"+
		"<p><strong>bold</strong> <em>italic</em> <code>mono</code></p>")
	e := NewEngine()

	first, err := e.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("first Render() error = %v", err)
	}

	for i := range 5 {
		engine := e
		if i%2 == 1 {
			engine = NewEngine()
		}
		got, err := engine.Render(context.Background(), doc)
		if err != nil {
			t.Fatalf("Render() #%d error = %v", i+2, err)
		}
		if !bytes.Equal(first, got) {
			t.Errorf("Render() #%d differs from the first render (len %d vs %d)", i+2, len(got), len(first))
		}
	}
}

func TestEngine_DateChangesOutput(t *testing.T) {
	t.Parallel()

	doc := styledDoc("T", "<p>x</p>")
	a, err := NewEngine().Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := NewEngine(WithDate(time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC))).Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("documents with different dates should differ")
	}
}

func TestEngine_Layout(t *testing.T) {
	t.Parallel()

	src := "<html><head><title>My CV</title><style>@page { size: letter; margin: 0.5in }</style></head>" +
		"<body><table><tr><td>a</td><td>b</td><td>c</td></tr><tr><td>d</td><td>e</td><td>f</td></tr></table></body></html>"
	doc, err := NewEngine().Layout(context.Background(), src)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if doc.Title != "My CV" {
		t.Errorf("Title = %q, want %q", doc.Title, "My CV")
	}
	if doc.PageWidth != 612 || doc.PageHeight != 792 {
		t.Errorf("page = %vx%v, want 612x792", doc.PageWidth, doc.PageHeight)
	}
	if len(doc.Grids) != 1 {
		t.Fatalf("grids = %d, want 1", len(doc.Grids))
	}
	if g := doc.Grids[0]; g.Rows != 2 || g.Cols != 3 {
		t.Errorf("grid = %dx%d, want 2x3", g.Rows, g.Cols)
	}
}

func TestEngine_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "unknown property",
			doc:     "<style>p { colr: red }</style><p>x</p>",
			wantErr: ErrStylesheet,
		},
		{
			name:    "syntax error",
			doc:     "<style>p { color: red</style><p>x</p>",
			wantErr: ErrStylesheet,
		},
		{
			name:    "missing image",
			doc:     "<p><img src=\"does-not-exist.png\"></p>",
			wantErr: ErrResourceLoad,
		},
		{
			name:    "remote image",
			doc:     "<img src=\"https://example.com/a.png\">",
			wantErr: ErrResourceLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pdf, err := NewEngine(WithBaseDir(t.TempDir())).Render(context.Background(), tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if pdf != nil {
				t.Error("Render() returned bytes on failure")
			}
		})
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Render(ctx, styledDoc("T", "<p>x</p>"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestEngine_Options(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithPageSize(PageSize{}), WithDate(time.Time{}))
	if e.pageSize != A4 {
		t.Errorf("zero page size should keep A4, got %+v", e.pageSize)
	}
	if !e.date.Equal(DefaultDate) {
		t.Errorf("zero date should keep DefaultDate, got %v", e.date)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStyleElements(t *testing.T) {
	t.Parallel()

	src := "<html><head><style>a{}</style></head><body><style>b{}</style><p>x</p></body></html>"
	doc, err := NewEngine().Layout(context.Background(), src)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if !strings.Contains(doc.Text(0), "x") {
		t.Errorf("page text = %q, want to contain x", doc.Text(0))
	}
}
