package playback

import "errors"

// Sentinel kinds for playback errors.
var (
	ErrRunning  = errors.New("playback already running")
	ErrFinished = errors.New("playback finished")
)
