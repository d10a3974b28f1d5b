package pipeline

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/poiesic/docuchat/core"
)

// FileMetadata describes a fetched file: what the router and progress
// reporting need to know before extraction.
type FileMetadata struct {
	Size      int64
	Extension string
	MIMEType  string
}

// Fetcher resolves a file key to a local staging path. The staged file
// belongs to the pipeline run and is removed when the job terminates.
type Fetcher interface {
	// Fetch stages the file identified by fileKey and returns its local
	// path and metadata. Missing or unreadable files fail with a
	// core.ProcessingError of kind KindFetch.
	Fetch(ctx context.Context, fileKey string) (string, *FileMetadata, error)
}

// LocalFetcher stages files from a local root directory, the storage
// backend for single-node deployments. An S3 or blob-store fetcher
// satisfies the same interface.
type LocalFetcher struct {
	root    string
	staging string
}

var _ Fetcher = (*LocalFetcher)(nil)

// NewLocalFetcher creates a fetcher reading from root and staging copies
// under stagingDir. An empty stagingDir uses the OS temp directory.
func NewLocalFetcher(root, stagingDir string) (*LocalFetcher, error) {
	if stagingDir == "" {
		dir, err := os.MkdirTemp("", "docuchat-staging-")
		if err != nil {
			return nil, core.NewError(core.KindFetch, "failed to create staging directory", err)
		}
		stagingDir = dir
	} else if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, core.NewError(core.KindFetch, "failed to create staging directory", err)
	}
	return &LocalFetcher{root: root, staging: stagingDir}, nil
}

// Fetch copies the file into the staging directory and probes its
// metadata.
func (f *LocalFetcher) Fetch(ctx context.Context, fileKey string) (string, *FileMetadata, error) {
	if fileKey == "" {
		return "", nil, core.NewError(core.KindFetch, "file key is empty", core.ErrMissingFileKey)
	}

	source := filepath.Join(f.root, filepath.Clean("/"+fileKey))
	in, err := os.Open(source)
	if err != nil {
		return "", nil, core.NewError(core.KindFetch, "file not available: "+fileKey, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", nil, core.NewError(core.KindFetch, "failed to stat file: "+fileKey, err)
	}

	out, err := os.CreateTemp(f.staging, "job-*"+filepath.Ext(fileKey))
	if err != nil {
		return "", nil, core.NewError(core.KindFetch, "failed to stage file", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", nil, core.NewError(core.KindFetch, "failed to stage file", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", nil, core.NewError(core.KindFetch, "failed to stage file", err)
	}

	ext := filepath.Ext(fileKey)
	meta := &FileMetadata{
		Size:      info.Size(),
		Extension: ext,
		MIMEType:  mime.TypeByExtension(ext),
	}
	return out.Name(), meta, nil
}
