// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer renders PDF pages to image files.
type Rasterizer interface {
	// Rasterize writes one PNG per selected page into dir and returns the
	// paths in page order. An empty pages slice selects every page.
	Rasterize(ctx context.Context, pdfPath string, dpi int, pages []int, dir string) ([]string, error)
}

// FitzRasterizer renders pages with MuPDF through go-fitz.
type FitzRasterizer struct{}

// Rasterize implements Rasterizer.
func (FitzRasterizer) Rasterize(ctx context.Context, pdfPath string, dpi int, pages []int, dir string) ([]string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var paths []string
	for _, n := range SelectPages(doc.NumPage(), pages) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n, err)
		}
		p := filepath.Join(dir, fmt.Sprintf("page_%04d.png", n))
		f, err := os.Create(p)
		if err != nil {
			return nil, fmt.Errorf("creating page image: %w", err)
		}
		err = png.Encode(f, img)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("encoding page %d: %w", n, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// SelectPages returns the zero-based page indices to process for a document
// with count pages, in ascending order. A nil or empty filter selects all
// pages; filter entries outside [0, count) are dropped.
func SelectPages(count int, filter []int) []int {
	if len(filter) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i
		}
		return all
	}
	want := make(map[int]bool, len(filter))
	for _, p := range filter {
		want[p] = true
	}
	var sel []int
	for i := 0; i < count; i++ {
		if want[i] {
			sel = append(sel, i)
		}
	}
	return sel
}
