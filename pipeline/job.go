package pipeline

import "github.com/poiesic/docuchat/core"

// Job is the unit of ingestion work. It is owned exclusively by one
// pipeline run for its lifetime and is not persisted; only the final
// Result is reported to the caller.
type Job struct {
	// FileKey is the opaque storage locator the fetcher resolves.
	FileKey string

	// ResourceID namespaces the stored chunks.
	ResourceID string

	// Status is the current state machine position.
	Status core.JobStatus

	// FilePath is the local staging path, set after fetch.
	FilePath string

	// FileType is the detected extension-derived type, set after fetch.
	FileType string

	// IsSupportedFormat reports whether FileType appears in the routing
	// table.
	IsSupportedFormat bool

	// Route selects the extraction adapter, set during routing.
	Route core.Route

	// Segments holds the extracted text, set after extraction.
	Segments []core.Segment

	// Chunks holds the split records, set after chunking.
	Chunks []*core.Chunk

	// ErrorMessage carries the human-readable reason for failed or
	// skipped terminal states.
	ErrorMessage string

	storeResult *StoreResult
}

// NewJob creates a pending job for a file.
func NewJob(fileKey, resourceID string) *Job {
	return &Job{
		FileKey:    fileKey,
		ResourceID: resourceID,
		Status:     core.StatusPending,
	}
}

// Result is what a pipeline run reports back to its caller.
type Result struct {
	// Status is stored, failed, or skipped.
	Status core.JobStatus

	// ResourceID echoes the job's resource namespace.
	ResourceID string

	// FileType is the detected file type, when fetch got that far.
	FileType string

	// ChunkCount is the number of chunks persisted on success.
	ChunkCount int

	// StoredIDs are the storage identifiers of the persisted chunks.
	StoredIDs []core.ID

	// Message is non-empty for failed and skipped results.
	Message string
}
