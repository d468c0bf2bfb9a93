// Package export turns finished guides into downloadable artifacts.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"regexp"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/anatolykoptev/go_guide/internal/render"
	"github.com/go-pdf/fpdf"
)

// Artifact is a downloadable export of a guide.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

var nonAlnumRE = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Filename derives a filesystem-safe base name from a guide title.
// Everything outside A-Z, a-z, 0-9 is stripped, then _Guide is appended,
// so "How to Solder (2024)" becomes "HowtoSolder2024_Guide".
func Filename(title string) string {
	return nonAlnumRE.ReplaceAllString(title, "") + "_Guide"
}

// PDFBytes wraps a rendered guide image in a single-page PDF whose page
// size matches the image exactly, one point per pixel.
func PDFBytes(img image.Image) ([]byte, error) {
	var page bytes.Buffer
	if err := png.Encode(&page, img); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	b := img.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("guide", opts, &page)
	pdf.ImageOptions("guide", 0, 0, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

// GuidePDF rasterizes the guide and returns it as a PDF artifact.
func GuidePDF(ctx context.Context, g engine.GuideData, opts render.Options) (*Artifact, error) {
	img, err := render.Guide(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render guide: %w", err)
	}
	data, err := PDFBytes(img)
	if err != nil {
		return nil, err
	}
	engine.IncrExportPDF()
	return &Artifact{
		Filename: Filename(g.Title) + ".pdf",
		MIME:     "application/pdf",
		Data:     data,
	}, nil
}
