package speech

import "errors"

// Sentinel kinds for speech errors.
var (
	ErrRecognitionUnavailable = errors.New("speech recognition unavailable")
	ErrRecognitionFailed      = errors.New("speech recognition failed")
	ErrRecognitionAborted     = errors.New("speech recognition aborted")
	ErrNoRecognizer           = errors.New("no recognizer configured")
)
