package render

import "errors"

// Sentinel errors for rendering.
var (
	ErrDocument       = errors.New("styled document is not valid HTML")
	ErrStylesheet     = errors.New("stylesheet rejected")
	ErrResourceLoad   = errors.New("failed to load resource")
	ErrFonts          = errors.New("failed to load embedded fonts")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrInvalidOutput  = errors.New("renderer produced invalid PDF")
	ErrInvalidPage    = errors.New("invalid page size")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
)
