package assets

// StyleLoader loads a stylesheet by bare name, e.g. "compact".
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}
