// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns supported input files into PDF. Each input format has
// its own Converter; the Router picks one by file extension.
package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/engine"
	"github.com/pdiddy/docpdf/internal/ocr"
	"github.com/pdiddy/docpdf/pkg/types"
)

// Converter writes a PDF rendering of the file at in to out. On success out
// holds a complete PDF; on failure the caller discards whatever is at out.
type Converter interface {
	Convert(ctx context.Context, in, out string, job types.ConversionJob) error
}

// extensions maps the accepted file extensions to their formats. Matching is
// exact, so "REPORT.PDF" is not accepted.
var extensions = map[string]types.Format{
	".docx": types.FormatDocument,
	".xlsx": types.FormatSpreadsheet,
	".pptx": types.FormatPresentation,
	".csv":  types.FormatCSV,
	".txt":  types.FormatText,
	".jpg":  types.FormatImage,
	".jpeg": types.FormatImage,
	".png":  types.FormatImage,
	".pdf":  types.FormatPDF,
}

// Route returns the format of path based on its extension.
func Route(path string) (types.Format, error) {
	ext := filepath.Ext(path)
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", types.ErrUnsupportedFormat, filepath.Base(path))
	}
	return "", fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, ext)
}

// Supported reports whether Route accepts path.
func Supported(path string) bool {
	_, err := Route(path)
	return err == nil
}

// Extensions returns the accepted extensions.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	return exts
}

// Stage returns the pipeline state a job is in while its converter runs:
// OCR for image and PDF inputs with OCR requested, converting otherwise.
func Stage(format types.Format, job types.ConversionJob) types.JobState {
	if job.OCR.Enabled && (format == types.FormatImage || format == types.FormatPDF) {
		return types.StateOCRing
	}
	return types.StateConverting
}

// Router dispatches each input to the converter registered for its format.
type Router struct {
	converters map[types.Format]Converter
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{converters: make(map[types.Format]Converter)}
}

// Register sets the converter for format, replacing any previous one.
func (r *Router) Register(format types.Format, c Converter) {
	r.converters[format] = c
}

// Convert implements Converter by routing on the extension of in.
func (r *Router) Convert(ctx context.Context, in, out string, job types.ConversionJob) error {
	format, err := Route(in)
	if err != nil {
		return err
	}
	c, ok := r.converters[format]
	if !ok {
		return fmt.Errorf("%w: no converter registered for %s input", types.ErrUnsupportedFormat, format)
	}
	return c.Convert(ctx, in, out, job)
}

// Deps are the collaborators the standard converters need.
type Deps struct {
	Runner     engine.Runner
	Soffice    string
	Recognizer ocr.Recognizer
	Rasterizer ocr.Rasterizer
	Log        zerolog.Logger
}

// NewDefaultRouter registers a converter for every supported format.
func NewDefaultRouter(d Deps) *Router {
	r := NewRouter()
	r.Register(types.FormatDocument, NewDocumentConverter(d.Runner, d.Soffice, d.Log))
	r.Register(types.FormatSpreadsheet, NewSpreadsheetConverter(d.Runner, d.Soffice, d.Log))
	r.Register(types.FormatPresentation, NewPresentationConverter(
		NewOfficeConverter(d.Runner, d.Soffice, filterImpress, d.Log), d.Rasterizer))
	r.Register(types.FormatCSV, CSVConverter{})
	r.Register(types.FormatText, TextConverter{})
	r.Register(types.FormatImage, NewImageConverter(d.Recognizer))
	r.Register(types.FormatPDF, NewPDFConverter(d.Recognizer))
	return r
}
