package matting

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"
)

const (
	TypeRemote = "remote"
	TypeNone   = "none"
)

// Remover separates the foreground of an image. The returned image carries the foreground
// in its alpha channel: opaque pixels are subject, transparent pixels are background.
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// NewRemover creates a remover for the configured type
func NewRemover(removerType, endpoint string, timeout time.Duration) (Remover, error) {
	switch removerType {
	case TypeRemote:
		if endpoint == "" {
			return nil, fmt.Errorf("matting endpoint must be set for type %s", removerType)
		}
		return NewRemoteRemover(endpoint, timeout), nil
	case TypeNone:
		return &PassthroughRemover{}, nil
	default:
		return nil, fmt.Errorf("unsupported matting type: %s", removerType)
	}
}

// PassthroughRemover keeps every pixel as foreground
type PassthroughRemover struct{}

func (p *PassthroughRemover) Remove(_ context.Context, img image.Image) (image.Image, error) {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out, nil
}
