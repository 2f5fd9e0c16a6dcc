package imageprocessing

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/jo-hoe/passportphoto/internal/backend/matting"
)

const (
	BackgroundWhite       = "white"
	BackgroundBlue        = "blue"
	BackgroundTransparent = "transparent"
)

var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorBlue      = color.RGBA{0, 120, 215, 255}
	colorLightGray = color.RGBA{240, 240, 240, 255}
)

// BackgroundReplacer removes the background of a composed photo and fills it
type BackgroundReplacer struct {
	remover matting.Remover
}

func NewBackgroundReplacer(remover matting.Remover) *BackgroundReplacer {
	return &BackgroundReplacer{remover: remover}
}

// Replace mattes img through the remover and composites the result for selector
func (r *BackgroundReplacer) Replace(ctx context.Context, img image.Image, selector string) (image.Image, error) {
	matte, err := r.remover.Remove(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("failed to remove background: %w", err)
	}
	return Composite(matte, selector), nil
}

// BackgroundColor returns the solid fill for selector. ok is false for transparent.
// Unrecognised selectors get light gray.
func BackgroundColor(selector string) (c color.RGBA, ok bool) {
	switch selector {
	case BackgroundWhite:
		return colorWhite, true
	case BackgroundBlue:
		return colorBlue, true
	case BackgroundTransparent:
		return color.RGBA{}, false
	default:
		return colorLightGray, true
	}
}

// AlphaImage is an NRGBA image that always reports itself as translucent, so encoders
// keep the alpha channel even when every pixel happens to be opaque
type AlphaImage struct {
	*image.NRGBA
}

func (a *AlphaImage) Opaque() bool {
	return false
}

// Composite places the matte over the selected background. Solid backgrounds yield a fully
// opaque *image.RGBA; the transparent selector yields the matte as *AlphaImage.
func Composite(matte image.Image, selector string) image.Image {
	fg := toNRGBA(matte)
	bg, solid := BackgroundColor(selector)
	if !solid {
		return &AlphaImage{NRGBA: fg}
	}

	slog.Debug("Composite: filling background",
		"selector", selector,
		"color", fmt.Sprintf("#%02x%02x%02x", bg.R, bg.G, bg.B))

	w, h := fg.Bounds().Dx(), fg.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	parallelFor(h, func(y int) {
		for x := 0; x < w; x++ {
			c := fg.NRGBAAt(x, y)
			a := uint32(c.A)
			dst.SetRGBA(x, y, color.RGBA{
				R: blend(c.R, bg.R, a),
				G: blend(c.G, bg.G, a),
				B: blend(c.B, bg.B, a),
				A: 255,
			})
		}
	})
	return dst
}

func blend(fg, bg uint8, alpha uint32) uint8 {
	return uint8((uint32(fg)*alpha + uint32(bg)*(255-alpha) + 127) / 255)
}

// toNRGBA returns img as a zero-origin NRGBA image
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
