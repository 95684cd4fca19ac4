package compactpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrNoInput          = errors.New("markdown content is empty")
	ErrConversionFailed = errors.New("conversion failed")
	ErrInvalidOption    = errors.New("invalid converter option")
	ErrPoolClosed       = errors.New("converter pool is closed")
)

// FailureKind classifies why a conversion failed. It appears in the
// diagnostic log line, never in the error returned to the caller.
type FailureKind string

// Failure kinds.
const (
	ParseFailure      FailureKind = "parse"
	RenderFailure     FailureKind = "render"
	UnexpectedFailure FailureKind = "unexpected"
)

// Pipeline stage names used in diagnostics.
const (
	stageParse  = "parse"
	stageStyle  = "style"
	stageRender = "render"
)

// stageError records where and how a conversion failed.
type stageError struct {
	stage string
	kind  FailureKind
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s stage: %s failure: %v", e.stage, e.kind, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}
