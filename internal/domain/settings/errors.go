package settings

import "errors"

// Sentinel kinds for settings errors.
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUnknownFormat   = errors.New("unknown settings format")
	ErrDecode          = errors.New("decode settings failed")
)
