package imageprocessing

import (
	"image"
	"log/slog"

	"golang.org/x/image/draw"
)

// facePaddingRatio is the padding added on every side of a face box, relative to its width
const facePaddingRatio = 0.3

// Composer crops an image around a face and resizes it to a passport size
type Composer struct {
	sizes SizeTable
}

func NewComposer(sizes SizeTable) *Composer {
	return &Composer{sizes: sizes}
}

// Compose crops img to the padded face box (or keeps the full image when face is nil) and
// resizes the crop to exactly the pixel size of sizeKey. Aspect ratio is not preserved.
// Face coordinates are relative to the image origin.
func (c *Composer) Compose(img image.Image, face *image.Rectangle, sizeKey string) (image.Image, error) {
	spec, err := c.sizes.Lookup(sizeKey)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	crop := bounds
	if face != nil {
		padded := ExpandFaceBox(bounds.Dx(), bounds.Dy(), *face)
		if !padded.Empty() {
			crop = padded.Add(bounds.Min)
		} else {
			slog.Warn("Composer: face box outside image, using full image",
				"face", face.String(),
				"image_width", bounds.Dx(),
				"image_height", bounds.Dy())
		}
	}

	slog.Debug("Composer: resizing crop",
		"size_key", sizeKey,
		"crop", crop.String(),
		"target_width", spec.Width,
		"target_height", spec.Height)

	dst := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst, nil
}

// ExpandFaceBox pads face by 30% of its width on each side and clamps the result to an image of
// width x height. The left/top edges clamp at zero; width/height clamp at the image's far edges.
func ExpandFaceBox(width, height int, face image.Rectangle) image.Rectangle {
	pad := int(float64(face.Dx()) * facePaddingRatio)

	x := max(0, face.Min.X-pad)
	y := max(0, face.Min.Y-pad)
	w := min(width-x, face.Dx()+2*pad)
	h := min(height-y, face.Dy()+2*pad)
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(x, y, x+w, y+h)
}
