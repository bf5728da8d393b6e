package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("attempt queue full")
	ErrUnknownOrder = errors.New("unknown line order")
	ErrEmptyText    = errors.New("nothing to say")
)
