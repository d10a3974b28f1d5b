package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/core"
)

// ImageAdapter indexes images by asking a vision-capable model to describe
// them. It is not part of the default registry: register it when the
// configured generation model accepts image input.
type ImageAdapter struct {
	describer ai.ImageDescriber
}

var _ Adapter = (*ImageAdapter)(nil)

// NewImageAdapter creates an image adapter backed by a vision model.
func NewImageAdapter(describer ai.ImageDescriber) *ImageAdapter {
	return &ImageAdapter{describer: describer}
}

// Extract returns the model's description of the image as one segment.
func (a *ImageAdapter) Extract(ctx context.Context, path string) ([]core.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, extractionError("failed to read image file", err)
	}

	description, err := a.describer.DescribeImage(ctx, imageMIMEType(path), data)
	if err != nil {
		return nil, extractionError("failed to describe image", err)
	}
	if strings.TrimSpace(description) == "" {
		return nil, nil
	}
	return []core.Segment{{Text: description, Metadata: map[string]string{"kind": "image-description"}}}, nil
}

func imageMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
