package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they use t.Setenv()
//   and replace the package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		inContainer bool
		ci          string
		browserBin  string
		contains    []string
		excludes    []string
	}{
		{
			name:     "in CI without browser",
			ci:       "true",
			contains: []string{"hint:", "ROD_BROWSER_BIN", "--renderer native"},
		},
		{
			name:        "in Docker without browser",
			inContainer: true,
			contains:    []string{"ROD_BROWSER_BIN", "Docker/CI"},
		},
		{
			name:     "desktop without browser",
			contains: []string{"--renderer native"},
			excludes: []string{"Docker/CI"},
		},
		{
			name:        "browser configured",
			inContainer: true,
			ci:          "true",
			browserBin:  "/usr/bin/chrome",
			excludes:    []string{"hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.inContainer }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("JENKINS_URL", "")
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("ForBrowserConnect() = %q, want to contain %q", hint, want)
				}
			}
			for _, exclude := range tt.excludes {
				if strings.Contains(hint, exclude) {
					t.Errorf("ForBrowserConnect() = %q, should not contain %q", hint, exclude)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestForTimeout(t *testing.T) {
	t.Parallel()

	hint := ForTimeout()
	if !strings.Contains(hint, "--timeout") {
		t.Errorf("ForTimeout() = %q, want --timeout mention", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{"empty paths", []string{}, "--config"},
		{"with user path", []string{"./foo.yaml", "~/.config/compactpdf/foo.yaml"}, "create ~/.config/compactpdf/foo.yaml"},
		{"no user path", []string{"./foo.yaml"}, "--config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("ForConfigNotFound() = %q, want to contain %q", hint, tt.contains)
			}
		})
	}
}

func TestForOutputDirectory(t *testing.T) {
	t.Parallel()

	if hint := ForOutputDirectory(); !strings.Contains(hint, "parent directory") {
		t.Errorf("ForOutputDirectory() = %q, want parent directory mention", hint)
	}
}

func TestListHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func([]string) string
		list []string
		want string
	}{
		{"highlight empty", ForHighlightStyle, nil, ""},
		{"highlight styles", ForHighlightStyle, []string{"github", "monokai"}, "\n  hint: known styles include github, monokai"},
		{"page size empty", ForPageSize, nil, ""},
		{"page sizes", ForPageSize, []string{"a4", "letter"}, "\n  hint: available: a4, letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.fn(tt.list); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	for _, h := range []string{ForTimeout(), ForOutputDirectory(), ForConfigNotFound(nil)} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
