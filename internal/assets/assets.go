package assets

// Names of the embedded stylesheets.
const (
	CompactStyleName   = "compact"
	UserAgentStyleName = "ua"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// MustLoadStyle is like LoadStyle but panics on error.
// Only used for stylesheets compiled into the binary.
func MustLoadStyle(name string) string {
	css, err := LoadStyle(name)
	if err != nil {
		panic("assets: " + err.Error())
	}
	return css
}
