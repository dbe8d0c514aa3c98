// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/docpdf/internal/fsutil"
	"github.com/pdiddy/docpdf/internal/ocr"
	"github.com/pdiddy/docpdf/pkg/types"
)

// ImageConverter wraps a raster image in a one-page PDF, or makes it
// searchable through OCR when the job asks for it.
type ImageConverter struct {
	ocr ocr.Recognizer
}

// NewImageConverter creates an image converter using rec for OCR jobs.
func NewImageConverter(rec ocr.Recognizer) *ImageConverter {
	return &ImageConverter{ocr: rec}
}

// Convert implements Converter.
func (c *ImageConverter) Convert(ctx context.Context, in, out string, job types.ConversionJob) error {
	if job.OCR.Enabled {
		data, err := c.ocr.RecognizeImage(ctx, in, job.OCR.Languages, job.OCR.DPI)
		if err != nil {
			return err
		}
		return fsutil.WriteFile(out, data)
	}
	return imagePage(in, out, dpiOrDefault(job.OCR.DPI))
}

// imagePage writes a PDF with a single page exactly the size of the image
// when printed at dpi.
func imagePage(in, out string, dpi int) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	cfg, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", in, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decoding %s: image has no pixels", in)
	}

	imageType := "PNG"
	if format == "jpeg" {
		imageType = "JPG"
	}
	w := float64(cfg.Width) * 72 / float64(dpi)
	h := float64(cfg.Height) * 72 / float64(dpi)

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	doc.ImageOptions(in, 0, 0, w, h, false, fpdf.ImageOptions{ImageType: imageType}, 0, "")
	if err := doc.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

func dpiOrDefault(dpi int) int {
	if dpi <= 0 {
		return types.DefaultDPI
	}
	return dpi
}
