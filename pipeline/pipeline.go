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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/extract"
)

// ProgressFunc receives coarse progress events as the job moves through
// stages. Implementations must be fast; the pipeline calls them inline.
type ProgressFunc func(resourceID, stage string, percent int)

// Pipeline drives one ingestion job through the status state machine:
//
//	pending → file_fetched → routed → extracted → chunked → stored
//
// with failed and skipped as the failure terminals. Every edge is
// traversed at most once per run; the pipeline performs no internal
// retries, so state transitions stay auditable. Retry is the task
// queue's responsibility.
type Pipeline struct {
	fetcher  Fetcher
	registry *extract.Registry
	chunker  *Chunker
	gateway  Gateway
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress installs a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New creates a pipeline over the given stages.
func New(fetcher Fetcher, registry *extract.Registry, chunker *Chunker, gateway Gateway, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		registry: registry,
		chunker:  chunker,
		gateway:  gateway,
		logger:   slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the job to a terminal state and reports the result. The
// staged file is removed before returning, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, job *Job) *Result {
	defer p.cleanup(job)

	for !job.Status.Terminal() {
		switch job.Status {
		case core.StatusPending:
			p.fetch(ctx, job)
		case core.StatusFileFetched:
			p.route(job)
		case core.StatusRouted:
			p.extract(ctx, job)
		case core.StatusExtracted:
			p.chunk(job)
		case core.StatusChunked:
			p.store(ctx, job)
		default:
			p.fail(job, core.NewError(core.KindExtraction, "job in unknown state "+job.Status.String(), nil))
		}
	}

	return p.result(job)
}

func (p *Pipeline) fetch(ctx context.Context, job *Job) {
	p.emit(job, "fetch", 10)

	path, meta, err := p.fetcher.Fetch(ctx, job.FileKey)
	if err != nil {
		p.fail(job, err)
		return
	}
	job.FilePath = path

	job.Status = core.StatusFileFetched
	p.logger.Debug("file fetched", "fileKey", job.FileKey, "path", path, "bytes", meta.Size)
}

func (p *Pipeline) route(job *Job) {
	p.emit(job, "route", 25)

	job.FileType = DetectFileType(job.FileKey)
	job.IsSupportedFormat = IsSupported(job.FileType)
	job.Route = RouteFor(job.FileType, job.IsSupportedFormat)

	if job.Route == core.RouteUnsupported {
		job.Status = core.StatusSkipped
		job.ErrorMessage = "File type not supported for AI processing: " + job.FileType
		p.logger.Info("job skipped", "fileKey", job.FileKey, "fileType", job.FileType)
		return
	}

	job.Status = core.StatusRouted
	p.logger.Debug("job routed", "fileKey", job.FileKey, "route", job.Route)
}

func (p *Pipeline) extract(ctx context.Context, job *Job) {
	p.emit(job, "extract", 50)

	adapter, ok := p.registry.For(job.Route)
	if !ok {
		p.fail(job, core.NewError(core.KindExtraction, "no extraction adapter registered for "+job.Route.String(), nil))
		return
	}

	segments, err := adapter.Extract(ctx, job.FilePath)
	if err != nil {
		p.fail(job, err)
		return
	}
	job.Segments = segments

	job.Status = core.StatusExtracted
	p.logger.Debug("content extracted", "fileKey", job.FileKey, "segments", len(segments))
}

func (p *Pipeline) chunk(job *Job) {
	p.emit(job, "chunk", 70)

	chunks, err := p.chunker.Chunk(job)
	if err != nil {
		p.fail(job, err)
		return
	}
	job.Chunks = chunks

	job.Status = core.StatusChunked
	p.logger.Debug("content chunked", "fileKey", job.FileKey, "chunks", len(chunks))
}

func (p *Pipeline) store(ctx context.Context, job *Job) {
	p.emit(job, "store", 90)

	res := p.gateway.Store(ctx, job.ResourceID, job.Chunks)
	if !res.Success {
		err := res.Err
		if core.KindOf(err) == 0 {
			err = core.NewError(core.KindStorage, "gateway rejected chunks", err)
		}
		p.fail(job, err)
		return
	}

	job.Status = core.StatusStored
	p.emit(job, "done", 100)
	p.logger.Info("job stored", "fileKey", job.FileKey, "resourceId", job.ResourceID, "chunks", res.StoredCount)

	job.Chunks = job.Chunks[:0]
	job.storeResult = res
}

// fail maps any error onto the failed terminal with a readable message.
func (p *Pipeline) fail(job *Job, err error) {
	job.Status = core.StatusFailed
	job.ErrorMessage = "Processing failed: " + errMessage(err)
	p.logger.Error("job failed", "fileKey", job.FileKey, "kind", core.KindOf(err), "err", err)
}

func (p *Pipeline) result(job *Job) *Result {
	result := &Result{
		Status:     job.Status,
		ResourceID: job.ResourceID,
		FileType:   job.FileType,
		Message:    job.ErrorMessage,
	}
	if job.storeResult != nil {
		result.ChunkCount = job.storeResult.StoredCount
		result.StoredIDs = job.storeResult.IDs
	}
	return result
}

func (p *Pipeline) cleanup(job *Job) {
	if job.FilePath == "" {
		return
	}
	if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove staged file", "path", job.FilePath, "err", err)
	}
	job.FilePath = ""
}

func (p *Pipeline) emit(job *Job, stage string, percent int) {
	if p.progress != nil {
		p.progress(job.ResourceID, stage, percent)
	}
}

func errMessage(err error) string {
	var perr *core.ProcessingError
	if errors.As(err, &perr) {
		return perr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}
