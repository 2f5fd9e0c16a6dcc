package pipeline

import (
	"context"
	"image"

	"github.com/jo-hoe/passportphoto/internal/backend/facedetection"
)

// Frame carries one photo through the processing steps
type Frame struct {
	// Key identifies the source upload and is used for caching
	Key        string
	Image      image.Image
	Face       *facedetection.Box
	Size       string
	Background string
	Watermark  bool
}

// Step defines the interface for all photo processing steps
type Step interface {
	Name() string
	Apply(ctx context.Context, frame *Frame) error
}
