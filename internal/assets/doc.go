// Package assets embeds the stylesheets used to render documents.
//
// Two stylesheets ship with the binary:
//
//	styles/
//	├── compact.css   # document stylesheet (page margins, type scale, tables)
//	└── ua.css        # HTML rendering defaults applied before compact.css
//
// Both are compiled in with go:embed. They are read once at process start by
// the style package and never reloaded.
package assets
