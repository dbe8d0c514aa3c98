// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/docpdf/internal/ocr"
	"github.com/pdiddy/docpdf/pkg/types"
)

// PresentationConverter renders each slide as an image stretched over a full
// US-Letter page. Slide aspect ratio is not preserved.
type PresentationConverter struct {
	export *OfficeConverter
	raster ocr.Rasterizer
}

// NewPresentationConverter creates a converter that exports decks with
// export and renders the exported pages with raster.
func NewPresentationConverter(export *OfficeConverter, raster ocr.Rasterizer) *PresentationConverter {
	return &PresentationConverter{export: export, raster: raster}
}

// Convert implements Converter.
func (c *PresentationConverter) Convert(ctx context.Context, in, out string, job types.ConversionJob) error {
	scratch, err := os.MkdirTemp("", "docpdf-slides-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	deck := filepath.Join(scratch, "deck.pdf")
	if err := c.export.Convert(ctx, in, deck, job); err != nil {
		return err
	}

	slides, err := c.raster.Rasterize(ctx, deck, dpiOrDefault(job.OCR.DPI), nil, scratch)
	if err != nil {
		return fmt.Errorf("rendering slides of %s: %w", filepath.Base(in), err)
	}
	if len(slides) == 0 {
		return fmt.Errorf("rendering slides of %s: %w", filepath.Base(in), types.ErrEmptyArtifact)
	}

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	for _, img := range slides {
		doc.AddPage()
		doc.ImageOptions(img, 0, 0, pageWidth, pageHeight, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	if err := doc.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}
