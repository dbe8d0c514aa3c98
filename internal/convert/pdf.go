// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"

	"github.com/pdiddy/docpdf/internal/fsutil"
	"github.com/pdiddy/docpdf/internal/ocr"
	"github.com/pdiddy/docpdf/pkg/types"
)

// PDFConverter passes PDFs through unchanged, or rebuilds them as
// searchable documents when OCR is requested.
type PDFConverter struct {
	ocr ocr.Recognizer
}

// NewPDFConverter creates a PDF converter using rec for OCR jobs.
func NewPDFConverter(rec ocr.Recognizer) *PDFConverter {
	return &PDFConverter{ocr: rec}
}

// Convert implements Converter. Without OCR the output is a byte-for-byte
// copy of the input.
func (c *PDFConverter) Convert(ctx context.Context, in, out string, job types.ConversionJob) error {
	if !job.OCR.Enabled {
		return fsutil.CopyFile(in, out)
	}
	data, err := c.ocr.RecognizePDF(ctx, in, job.OCR.Languages, job.OCR.DPI, job.OCR.Pages)
	if err != nil {
		return err
	}
	return fsutil.WriteFile(out, data)
}
