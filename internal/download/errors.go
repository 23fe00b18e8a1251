package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrNoURL is returned when a request carries no URL.
	ErrNoURL = errors.New("no url given")

	// ErrWorkDir is returned when the work directory cannot be prepared.
	ErrWorkDir = errors.New("work directory unavailable")
)
