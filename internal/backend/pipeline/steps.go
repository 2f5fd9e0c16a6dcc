package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/passportphoto/internal/backend/facedetection"
	"github.com/jo-hoe/passportphoto/internal/backend/imageprocessing"
)

// FaceLocator finds a face for a keyed image
type FaceLocator interface {
	Locate(ctx context.Context, key string, img image.Image) (*facedetection.Box, error)
}

type LocateFaceStep struct {
	locator FaceLocator
}

func NewLocateFaceStep(locator FaceLocator) *LocateFaceStep {
	return &LocateFaceStep{locator: locator}
}

func (s *LocateFaceStep) Name() string { return "LocateFace" }

func (s *LocateFaceStep) Apply(ctx context.Context, frame *Frame) error {
	box, err := s.locator.Locate(ctx, frame.Key, frame.Image)
	if err != nil {
		return fmt.Errorf("failed to locate face: %w", err)
	}
	frame.Face = box
	if box == nil {
		slog.Debug("LocateFaceStep: no face found, using full image", "key", frame.Key)
	} else {
		slog.Debug("LocateFaceStep: face found", "key", frame.Key, "box", box.Rect().String())
	}
	return nil
}

type ComposeStep struct {
	composer *imageprocessing.Composer
}

func NewComposeStep(composer *imageprocessing.Composer) *ComposeStep {
	return &ComposeStep{composer: composer}
}

func (s *ComposeStep) Name() string { return "Compose" }

func (s *ComposeStep) Apply(_ context.Context, frame *Frame) error {
	var face *image.Rectangle
	if frame.Face != nil {
		r := frame.Face.Rect()
		face = &r
	}
	out, err := s.composer.Compose(frame.Image, face, frame.Size)
	if err != nil {
		return err
	}
	frame.Image = out
	return nil
}

type BackgroundStep struct {
	replacer *imageprocessing.BackgroundReplacer
}

func NewBackgroundStep(replacer *imageprocessing.BackgroundReplacer) *BackgroundStep {
	return &BackgroundStep{replacer: replacer}
}

func (s *BackgroundStep) Name() string { return "Background" }

func (s *BackgroundStep) Apply(ctx context.Context, frame *Frame) error {
	out, err := s.replacer.Replace(ctx, frame.Image, frame.Background)
	if err != nil {
		return err
	}
	frame.Image = out
	return nil
}

// WatermarkStep accepts the watermark flag without drawing anything
type WatermarkStep struct{}

func (s *WatermarkStep) Name() string { return "Watermark" }

func (s *WatermarkStep) Apply(_ context.Context, frame *Frame) error {
	if frame.Watermark {
		slog.Debug("WatermarkStep: watermark requested, rendering not supported", "key", frame.Key)
	}
	return nil
}
