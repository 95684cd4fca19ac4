package style

import "errors"

// Sentinel errors for stylesheet parsing.
var (
	ErrSyntax       = errors.New("CSS syntax error")
	ErrUnsupported  = errors.New("unsupported CSS construct")
	ErrInvalidValue = errors.New("invalid CSS value")
)
