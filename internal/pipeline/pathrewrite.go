package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveRelativePaths rewrites relative image sources and link targets of
// an HTML fragment to absolute file:// URLs under baseDir, so the styled
// document renders the same wherever it is written. If baseDir is empty the
// fragment is returned unchanged.
//
// Targets that escape baseDir, anchors, absolute paths and anything with a
// URL scheme (https:, data:, mailto:) are left alone.
func ResolveRelativePaths(fragment, baseDir string) (string, error) {
	if baseDir == "" || !strings.Contains(fragment, "<") {
		return fragment, nil
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	})
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		changed = rewriteNode(n, absDir) || changed
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteNode rewrites img[src] and a[href] in the subtree rooted at n and
// reports whether anything changed.
func rewriteNode(n *html.Node, baseDir string) bool {
	changed := false
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			changed = rewriteAttr(n, "src", baseDir)
		case atom.A:
			changed = rewriteAttr(n, "href", baseDir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		changed = rewriteNode(c, baseDir) || changed
	}
	return changed
}

func rewriteAttr(n *html.Node, key, baseDir string) bool {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		ref, err := url.PathUnescape(attr.Val)
		if err != nil {
			continue
		}
		abs := filepath.Join(baseDir, filepath.FromSlash(ref))
		if !isPathUnderDir(abs, baseDir) {
			continue
		}
		n.Attr[i].Val = pathToFileURL(abs)
		return true
	}
	return false
}

// isRelativePath reports whether path is a relative file reference.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x -> /C:/x
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
