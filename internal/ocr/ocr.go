// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr turns images and scanned PDFs into searchable PDFs with the
// Tesseract engine. Multi-page results are merged structurally, page by
// page, into one document.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/engine"
	"github.com/pdiddy/docpdf/pkg/types"
)

// Recognizer is the OCR capability the converters depend on.
type Recognizer interface {
	RecognizeImage(ctx context.Context, path, languages string, dpi int) ([]byte, error)
	RecognizePDF(ctx context.Context, path, languages string, dpi int, pages []int) ([]byte, error)
}

// Service implements Recognizer with Tesseract and a PDF rasterizer.
type Service struct {
	runner engine.Runner
	bin    string
	raster Rasterizer
	log    zerolog.Logger
}

// NewService creates an OCR service that runs the Tesseract binary at bin.
func NewService(runner engine.Runner, bin string, raster Rasterizer, log zerolog.Logger) *Service {
	return &Service{runner: runner, bin: bin, raster: raster, log: log}
}

// RecognizeImage runs text recognition on one image and returns a one-page
// searchable PDF.
func (s *Service) RecognizeImage(ctx context.Context, path, languages string, dpi int) ([]byte, error) {
	languages, dpi = withDefaults(languages, dpi)

	var out bytes.Buffer
	args := []string{path, "stdout", "-l", languages, "--dpi", strconv.Itoa(dpi), "pdf"}
	if err := s.runner.Run(ctx, s.bin, args, nil, &out); err != nil {
		return nil, fmt.Errorf("recognizing %s: %w", path, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("recognizing %s: %w", path, types.ErrEmptyArtifact)
	}
	s.log.Info().Str("source", path).Str("languages", languages).Int("dpi", dpi).Msg("OCR applied to image")
	return out.Bytes(), nil
}

// RecognizePDF rasterizes the pages of the PDF at path at dpi, recognizes
// each page on its own, and merges the single-page results in page order.
// When pages is non-empty only those zero-based indices are processed;
// indices beyond the document are ignored.
func (s *Service) RecognizePDF(ctx context.Context, path, languages string, dpi int, pages []int) ([]byte, error) {
	languages, dpi = withDefaults(languages, dpi)

	dir, err := os.MkdirTemp("", "docpdf-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating raster directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.log.Error().Err(err).Str("path", dir).Msg("removing raster directory")
		}
	}()

	images, err := s.raster.Rasterize(ctx, path, dpi, pages, dir)
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", path, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterizing %s: no pages selected", path)
	}

	parts := make([][]byte, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.RecognizeImage(ctx, img, languages, dpi)
		if err != nil {
			return nil, err
		}
		parts = append(parts, page)
	}

	merged, err := Merge(parts)
	if err != nil {
		return nil, fmt.Errorf("merging OCR pages of %s: %w", path, err)
	}
	s.log.Info().Str("source", path).Int("pages", len(parts)).Msg("OCR applied to PDF")
	return merged, nil
}

// Merge joins PDF documents into one, appending their pages in order.
func Merge(docs [][]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("nothing to merge")
	case 1:
		return docs[0], nil
	}
	rs := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		rs[i] = bytes.NewReader(d)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(rs, &out, false, nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func withDefaults(languages string, dpi int) (string, int) {
	if languages == "" {
		languages = types.DefaultOCRLanguages
	}
	if dpi <= 0 {
		dpi = types.DefaultDPI
	}
	return languages, dpi
}
