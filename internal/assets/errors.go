package assets

import "errors"

// Sentinel errors for stylesheet loading.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetName = errors.New("invalid asset name") // separators, dots or empty
)
