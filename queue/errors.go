package queue

import (
	"errors"

	"github.com/poiesic/docuchat/core"
)

var (
	// ErrInvalidMaxAttempts indicates maxAttempts <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrQueueClosed indicates a submit after Close.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrNilPipeline indicates a nil pipeline was passed to New.
	ErrNilPipeline = errors.New("pipeline cannot be nil")

	// ErrUnknownResource indicates a status lookup for a resource
	// that was never enqueued.
	ErrUnknownResource = errors.New("no task recorded for resource")
)

// IsRetryable reports whether err is worth another attempt. Classified
// errors defer to their kind; unclassified errors are assumed transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if kind := core.KindOf(err); kind != 0 {
		return kind.Retryable()
	}
	return true
}
