package lessons

import "errors"

// ErrNotFound is returned for an unknown lesson ID.
var ErrNotFound = errors.New("lesson not found")
