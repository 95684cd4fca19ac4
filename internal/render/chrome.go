package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-compactpdf/internal/fileutil"
	"github.com/alnah/go-compactpdf/internal/process"
)

// DefaultChromeTimeout bounds page loading when the caller sets no deadline.
const DefaultChromeTimeout = 30 * time.Second

// ChromeEngine renders styled HTML with headless Chrome through go-rod.
// Page size and margins come from the document's @page rules. Output is
// not byte-stable across runs because Chrome stamps the current date.
// Rod downloads Chromium on first use when no browser is found.
type ChromeEngine struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewChromeEngine returns a ChromeEngine. The browser starts on the first
// Render call.
func NewChromeEngine(timeout time.Duration) *ChromeEngine {
	if timeout <= 0 {
		timeout = DefaultChromeTimeout
	}
	return &ChromeEngine{timeout: timeout}
}

func (c *ChromeEngine) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser != nil {
		return c.browser, nil
	}

	l := launcher.New()
	// Pre-installed browser for containers
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		c.kill(l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	c.launcher, c.browser = l, browser
	return browser, nil
}

// Start launches the browser ahead of the first Render so that a missing or
// broken Chrome is reported before any conversion runs.
func (c *ChromeEngine) Start() error {
	_, err := c.ensureBrowser()
	return err
}

// Render loads styled from a temporary file and prints it to PDF. Images
// must be referenced by absolute path or URL.
func (c *ChromeEngine) Render(ctx context.Context, styled string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile("", styled, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer cleanup()

	browser, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(abs)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PreferCSSPageSize: true,
		PrintBackground:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return nil, ErrInvalidOutput
	}
	return data, nil
}

// Close shuts the browser down and kills its process group.
func (c *ChromeEngine) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.kill(c.launcher)
	c.browser, c.launcher = nil, nil
	return err
}

// kill stops Chrome and the helper processes it spawned.
func (c *ChromeEngine) kill(l *launcher.Launcher) {
	if l == nil {
		return
	}
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	l.Kill()
}
