package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/jo-hoe/passportphoto/internal/backend/facedetection"
	"github.com/jo-hoe/passportphoto/internal/backend/imageprocessing"
	"github.com/jo-hoe/passportphoto/internal/backend/matting"
)

type fixedLocator struct {
	box  *facedetection.Box
	err  error
	keys []string
}

func (f *fixedLocator) Locate(_ context.Context, key string, _ image.Image) (*facedetection.Box, error) {
	f.keys = append(f.keys, key)
	return f.box, f.err
}

func TestLocateFaceStep(t *testing.T) {
	locator := &fixedLocator{box: &facedetection.Box{X: 1, Y: 2, Width: 3, Height: 4}}
	frame := &Frame{Key: "abc.jpg", Image: image.NewRGBA(image.Rect(0, 0, 10, 10))}

	if err := NewLocateFaceStep(locator).Apply(context.Background(), frame); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if frame.Face == nil || frame.Face.Width != 3 {
		t.Errorf("Expected face to be stored on frame, got %+v", frame.Face)
	}
	if len(locator.keys) != 1 || locator.keys[0] != "abc.jpg" {
		t.Errorf("Expected locator to be called with key abc.jpg, got %v", locator.keys)
	}
}

func TestLocateFaceStep_Error(t *testing.T) {
	sentinel := errors.New("detector down")
	frame := &Frame{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	err := NewLocateFaceStep(&fixedLocator{err: sentinel}).Apply(context.Background(), frame)
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped detector error, got %v", err)
	}
}

func TestFullPipeline(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 500))
	for y := 0; y < 500; y++ {
		for x := 0; x < 400; x++ {
			src.Set(x, y, color.RGBA{100, 100, 100, 255})
		}
	}

	invoker := NewInvoker(
		NewLocateFaceStep(&fixedLocator{box: &facedetection.Box{X: 150, Y: 150, Width: 100, Height: 120}}),
		NewComposeStep(imageprocessing.NewComposer(imageprocessing.DefaultSizes())),
		NewBackgroundStep(imageprocessing.NewBackgroundReplacer(&matting.PassthroughRemover{})),
		&WatermarkStep{},
	)

	frame := &Frame{Key: "a.jpg", Image: src, Size: "eu", Background: "white", Watermark: true}
	if err := invoker.Execute(context.Background(), frame); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if frame.Image.Bounds().Dx() != 413 || frame.Image.Bounds().Dy() != 531 {
		t.Errorf("Expected 413x531, got %dx%d", frame.Image.Bounds().Dx(), frame.Image.Bounds().Dy())
	}
}

func TestFullPipeline_InvalidSize(t *testing.T) {
	invoker := NewInvoker(
		NewLocateFaceStep(&fixedLocator{}),
		NewComposeStep(imageprocessing.NewComposer(imageprocessing.DefaultSizes())),
	)
	frame := &Frame{Image: image.NewRGBA(image.Rect(0, 0, 10, 10)), Size: "moon"}

	err := invoker.Execute(context.Background(), frame)
	if !errors.Is(err, imageprocessing.ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}
}
