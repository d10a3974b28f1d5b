package badger

import (
	"github.com/poiesic/docuchat/storage"
)

// Repositories bundles the BadgerDB-backed stores sharing one backend.
type Repositories struct {
	Chunks      storage.ChunkRepository
	Checkpoints storage.CheckpointStore
	Threads     storage.ThreadRepository

	backend *Backend
}

// Close closes the shared backend and with it every repository.
func (r *Repositories) Close() error {
	return r.backend.Close()
}

// NewRepositories opens a BadgerDB backend at filePath and wires all
// repositories onto it.
func NewRepositories(filePath string) (*Repositories, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newRepositories(backend)
}

// NewMemoryRepositories creates repositories over an in-memory backend.
// Intended for tests; nothing is persisted.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newRepositories(backend)
}

func newRepositories(backend *Backend) (*Repositories, error) {
	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &Repositories{
		Chunks:      chunks,
		Checkpoints: NewCheckpointStore(backend),
		Threads:     NewThreadRepository(backend),
		backend:     backend,
	}, nil
}
