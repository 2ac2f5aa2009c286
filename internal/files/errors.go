// Package files holds the building blocks of document retrieval: URL rewriting,
// filename sanitizing, remote fetching and local fallback resolution.
package files

import "errors"

var (
	// ErrRemoteFetchFailed covers network errors, timeouts and non-2xx responses.
	ErrRemoteFetchFailed = errors.New("remote fetch failed")
	// ErrLocalFileNotFound is returned when no candidate location holds the file.
	ErrLocalFileNotFound = errors.New("local file not found")
	// ErrStreamWriteFailed marks a failed write after the response was committed.
	ErrStreamWriteFailed = errors.New("stream write failed")
)
