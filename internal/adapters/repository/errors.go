package repository

import "errors"

// Sentinel kinds for line board errors.
var (
	ErrNotFound     = errors.New("line not found")
	ErrInvalidLimit = errors.New("invalid line board limit")
	ErrInvalidLine  = errors.New("invalid line")
)
