package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoImages is returned when a sheet would have no photos on it
var ErrNoImages = errors.New("no valid images found")

func init() {
	// pdfcpu would otherwise create a config dir in the user's home
	api.DisableConfigDir()
}

// Engine renders photo sheets as PDF documents
type Engine struct {
	conf *model.Configuration
}

func NewEngine() *Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Engine{conf: conf}
}

// Render lays images out on A4 pages and returns the optimised PDF and its page count
func (e *Engine) Render(images []image.Image, copies int) ([]byte, int, error) {
	if len(images) == 0 {
		return nil, 0, ErrNoImages
	}
	start := time.Now()

	layout, placements := Plan(len(images), copies)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range images {
		data, err := encodeForPDF(img)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode image %d: %w", i, err)
		}
		pdf.RegisterImageOptionsReader(imageName(i), opts, bytes.NewReader(data))
	}

	page := -1
	for _, p := range placements {
		if p.Page != page {
			pdf.AddPage()
			page = p.Page
		}
		// fpdf measures y from the top edge
		top := PageHeight - p.Y - layout.CellHeight
		pdf.ImageOptions(imageName(p.Image), p.X, top, layout.CellWidth, layout.CellHeight, false, opts, 0, "")
	}

	var raw bytes.Buffer
	if err := pdf.Output(&raw); err != nil {
		return nil, 0, fmt.Errorf("failed to write PDF: %w", err)
	}

	var optimized bytes.Buffer
	if err := api.Optimize(bytes.NewReader(raw.Bytes()), &optimized, e.conf); err != nil {
		return nil, 0, fmt.Errorf("failed to validate PDF: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(optimized.Bytes()), e.conf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count PDF pages: %w", err)
	}

	slog.Debug("Engine: sheet rendered",
		"images", len(images),
		"copies_per_page", layout.CopiesPerPage,
		"placements", len(placements),
		"pages", pages,
		"size_bytes", optimized.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return optimized.Bytes(), pages, nil
}

func imageName(i int) string {
	return fmt.Sprintf("photo-%d", i)
}

// encodeForPDF writes img as an 8-bit PNG, the only depth the PDF writer accepts
func encodeForPDF(img image.Image) ([]byte, error) {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, nrgba); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
