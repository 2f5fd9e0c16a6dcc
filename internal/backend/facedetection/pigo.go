package facedetection

import (
	"context"
	_ "embed"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	pigoShiftFactor  = 0.1
	pigoScaleFactor  = 1.1
	pigoIoUThreshold = 0.2
	// detections scoring below this are discarded as false positives
	pigoQualityThreshold = 5.0
)

//go:embed cascade/facefinder
var defaultCascade []byte

// PigoLocator runs a Pico cascade classifier in process
type PigoLocator struct {
	classifier *pigo.Pigo
	minSize    int
}

// NewPigoLocator loads the binary cascade at cascadePath, or the bundled frontal face
// cascade when cascadePath is empty
func NewPigoLocator(cascadePath string, minSize int) (*PigoLocator, error) {
	data := defaultCascade
	if cascadePath != "" {
		var err error
		data, err = os.ReadFile(cascadePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read cascade file: %w", err)
		}
	}
	// the unpacker indexes into the header directly
	if len(data) < 16 {
		return nil, fmt.Errorf("cascade file %q is too short", cascadePath)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade file: %w", err)
	}
	if minSize <= 0 {
		minSize = 20
	}
	return &PigoLocator{classifier: classifier, minSize: minSize}, nil
}

func (p *PigoLocator) Locate(ctx context.Context, img image.Image) (*Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := zeroOrigin(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	params := pigo.CascadeParams{
		MinSize:     p.minSize,
		MaxSize:     max(cols, rows),
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := p.classifier.RunCascade(params, 0.0)
	dets = p.classifier.ClusterDetections(dets, pigoIoUThreshold)

	slog.Debug("PigoLocator: cascade finished", "detections", len(dets), "width", cols, "height", rows)

	for _, det := range dets {
		if det.Q < pigoQualityThreshold {
			continue
		}
		half := det.Scale / 2
		return &Box{
			X:      det.Col - half,
			Y:      det.Row - half,
			Width:  det.Scale,
			Height: det.Scale,
		}, nil
	}
	return nil, nil
}

func zeroOrigin(img image.Image) image.Image {
	b := img.Bounds()
	if b.Min == (image.Point{}) {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
