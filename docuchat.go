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


package docuchat

import (
	"log/slog"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/ai/openai"
	"github.com/poiesic/docuchat/chat"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/extract"
	"github.com/poiesic/docuchat/pipeline"
	"github.com/poiesic/docuchat/queue"
	"github.com/poiesic/docuchat/rag"
	"github.com/poiesic/docuchat/storage"
	"github.com/poiesic/docuchat/storage/badger"
	"github.com/poiesic/docuchat/storage/memory"
	"github.com/poiesic/docuchat/vector"
)

// System wires storage, AI services, the ingestion queue, and the
// conversation workflow into one unit with a shared lifecycle.
type System struct {
	backend     *badger.Backend
	chunks      storage.ChunkRepository
	checkpoints storage.CheckpointStore
	threadRepo  storage.ThreadRepository
	provider    ai.AIProvider
	queue       *queue.Queue
	workflow    *chat.Workflow
	threads     *chat.Threads
	engine      *rag.Engine
	logger      *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	inMemory   bool
	ephemeral  bool
	fileRoot   string
	stagingDir string
	queueOpts  []queue.Option
	engineOpts []rag.Option
}

// WithAIConfig overrides the default AI backend configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing WithAIConfig.
// Useful for tests with the mock provider.
func WithProvider(provider ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all state in memory. Nothing survives Close.
func WithInMemoryStorage() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithEphemeralHistory keeps conversation history in process memory
// instead of the durable checkpoint store.
func WithEphemeralHistory() SystemOption {
	return func(o *systemOptions) {
		o.ephemeral = true
	}
}

// WithFileRoot sets the directory file keys resolve against.
func WithFileRoot(root string) SystemOption {
	return func(o *systemOptions) {
		o.fileRoot = root
	}
}

// WithStagingDir sets where fetched files are staged during processing.
func WithStagingDir(dir string) SystemOption {
	return func(o *systemOptions) {
		o.stagingDir = dir
	}
}

// WithQueueOptions forwards options to the ingestion queue.
func WithQueueOptions(opts ...queue.Option) SystemOption {
	return func(o *systemOptions) {
		o.queueOpts = append(o.queueOpts, opts...)
	}
}

// WithEngineOptions forwards options to the RAG engine.
func WithEngineOptions(opts ...rag.Option) SystemOption {
	return func(o *systemOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// NewSystem opens storage at filePath and wires the full processing and
// conversation stack. The returned System owns every component and
// releases them all on Close.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		fileRoot: ".",
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	backend, degraded, err := openBackend(filePath, options.inMemory, logger)
	if err != nil {
		return nil, err
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	checkpointBackend := backend
	if options.ephemeral || degraded {
		checkpointBackend = nil
	}
	checkpoints := openCheckpointStore(checkpointBackend, logger)
	threadRepo := badger.NewThreadRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunks.Close()
			backend.Close()
			return nil, err
		}
	}

	fetcher, err := pipeline.NewLocalFetcher(options.fileRoot, options.stagingDir)
	if err != nil {
		provider.Close()
		chunks.Close()
		backend.Close()
		return nil, err
	}

	registry := extract.NewRegistry()
	if describer, ok := provider.Generator().(ai.ImageDescriber); ok {
		registry.Register(core.RouteImage, extract.NewImageAdapter(describer))
	}

	gateway := vector.NewGateway(provider.Embedder(), chunks)

	// The queue outlives pipeline construction, so progress routes
	// through an indirection filled in below.
	var q *queue.Queue
	pipe := pipeline.New(fetcher, registry, pipeline.NewChunker(), gateway,
		pipeline.WithProgress(func(resourceID, stage string, percent int) {
			if q != nil {
				q.Observe(resourceID, stage, percent)
			}
		}))

	q, err = queue.New(pipe, options.queueOpts...)
	if err != nil {
		provider.Close()
		chunks.Close()
		backend.Close()
		return nil, err
	}

	retriever := vector.NewRetriever(provider.Embedder(), chunks)
	engine := rag.NewEngine(retriever, provider.Generator(), options.engineOpts...)
	workflow := chat.NewWorkflow(checkpoints, threadRepo, engine)
	threads := chat.NewThreads(threadRepo)

	return &System{
		backend:     backend,
		chunks:      chunks,
		checkpoints: checkpoints,
		threadRepo:  threadRepo,
		provider:    provider,
		queue:       q,
		workflow:    workflow,
		threads:     threads,
		engine:      engine,
		logger:      logger,
	}, nil
}

// openBackend opens durable storage at filePath. Startup survives a
// durable open failure: the system degrades to an in-memory backend so
// documents can still be processed and conversations still run, at the
// cost of losing everything on restart. The returned degraded flag
// routes checkpoints to the non-durable store so Durable() stays
// honest.
func openBackend(filePath string, inMemory bool, logger *slog.Logger) (*badger.Backend, bool, error) {
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err == nil {
		return backend, false, nil
	}
	logger.Error("durable storage unavailable, degrading to in-memory storage",
		"path", filePath, "err", err)

	backend, err = badger.OpenBackend("", true)
	if err != nil {
		return nil, false, err
	}
	return backend, true, nil
}

// openCheckpointStore prefers durable checkpoints and degrades to the
// in-memory store rather than failing startup. Conversations then work
// for the life of the process but history is lost on restart.
func openCheckpointStore(backend *badger.Backend, logger *slog.Logger) storage.CheckpointStore {
	if backend == nil {
		logger.Warn("using in-memory checkpoint store, conversation history will not survive restarts")
		return memory.NewCheckpointStore()
	}
	return badger.NewCheckpointStore(backend)
}

// Close releases every component in reverse construction order.
func (s *System) Close() error {
	s.queue.Close()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.checkpoints.Close(); err != nil {
		s.logger.Error("error closing checkpoint store", "err", err)
	}
	if err := s.chunks.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Queue returns the ingestion queue.
func (s *System) Queue() *queue.Queue {
	return s.queue
}

// Workflow returns the conversation workflow.
func (s *System) Workflow() *chat.Workflow {
	return s.workflow
}

// Threads returns the thread manager.
func (s *System) Threads() *chat.Threads {
	return s.threads
}

// Engine returns the RAG engine for direct one-shot queries.
func (s *System) Engine() *rag.Engine {
	return s.engine
}

// ChunkRepository exposes the chunk store for maintenance tooling.
func (s *System) ChunkRepository() storage.ChunkRepository {
	return s.chunks
}
