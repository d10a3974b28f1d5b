// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyMessage indicates a chat message with empty content.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrMissingResourceID indicates a request without a resource identifier.
	ErrMissingResourceID = errors.New("resource ID is required")

	// ErrMissingThreadID indicates a request without a thread identifier.
	ErrMissingThreadID = errors.New("thread ID is required")

	// ErrMissingFileKey indicates an ingestion request without a file key.
	ErrMissingFileKey = errors.New("file key is required")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrInvalidTimestamp indicates a timestamp in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrThreadInactive indicates an operation on a deactivated thread.
	ErrThreadInactive = errors.New("thread is no longer active")
)

// Kind classifies a failure inside the ingestion pipeline or the
// conversation workflow. Every external call is wrapped and mapped to
// exactly one kind with a human-readable message.
type Kind int

const (
	// KindFetch: the file could not be staged. Terminal, queue-retry eligible.
	KindFetch Kind = iota + 1
	// KindUnsupportedFormat: the file type has no processing route.
	// Terminal skipped, never retried.
	KindUnsupportedFormat
	// KindExtraction: the extraction adapter failed. Terminal failed.
	KindExtraction
	// KindChunking: the chunker failed. Terminal failed.
	KindChunking
	// KindStorage: the embedding/storage gateway failed. Terminal failed.
	KindStorage
	// KindInvalidInput: rejected before any workflow side effect.
	KindInvalidInput
	// KindRetrieval: similarity search failed. Soft failure.
	KindRetrieval
	// KindGeneration: the text-generation backend failed. Soft failure.
	KindGeneration
	// KindStreamTimeout: the streaming wall-clock timeout fired. Soft failure.
	KindStreamTimeout
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch_error"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindExtraction:
		return "extraction_error"
	case KindChunking:
		return "chunking_error"
	case KindStorage:
		return "storage_error"
	case KindInvalidInput:
		return "invalid_input"
	case KindRetrieval:
		return "retrieval_error"
	case KindGeneration:
		return "generation_error"
	case KindStreamTimeout:
		return "stream_timeout"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind is eligible for
// queue-level retry. Retries never happen inside the pipeline itself.
func (k Kind) Retryable() bool {
	switch k {
	case KindFetch, KindExtraction, KindChunking, KindStorage:
		return true
	default:
		return false
	}
}

// ProcessingError is a classified failure with a human-readable message.
type ProcessingError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewError creates a classified error wrapping an optional cause.
func NewError(kind Kind, message string, err error) *ProcessingError {
	return &ProcessingError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, or 0 if err carries none.
func KindOf(err error) Kind {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
