// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata stamps and reads the /Title and /Author document
// properties of a PDF.
package metadata

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf16"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Info is the subset of document properties docpdf reads back.
type Info struct {
	Title  string
	Author string
	Pages  int
}

// Stamp rewrites the /Title and /Author properties of the PDF at path. When
// both are empty it does nothing and the file is left untouched. The whole
// document is read, written to a sibling temp file, and renamed over path.
func Stamp(path, title, author string) error {
	if title == "" && author == "" {
		return nil
	}

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if ctx.Info == nil {
		ir, err := ctx.IndRefForNewObject(types.Dict{})
		if err != nil {
			return fmt.Errorf("creating info dict for %s: %w", path, err)
		}
		ctx.Info = ir
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return fmt.Errorf("reading info dict of %s: %v", path, err)
	}
	d.Update("Title", textString(title))
	d.Update("Author", textString(author))

	tmp, err := os.CreateTemp(filepath.Dir(path), ".stamp-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := api.WriteContextFile(ctx, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// textString encodes s as a PDF text string: UTF-16BE with a byte order
// mark, written as a hex literal so no escaping is needed.
func textString(s string) types.HexLiteral {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2+2*len(units))
	b[0], b[1] = 0xFE, 0xFF
	for i, u := range units {
		binary.BigEndian.PutUint16(b[2+2*i:], u)
	}
	return types.NewHexLiteral(b)
}

// Read returns the title, author and page count of the PDF at path.
func Read(path string) (Info, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	return Info{
		Title:  info.Key("Title").Text(),
		Author: info.Key("Author").Text(),
		Pages:  r.NumPage(),
	}, nil
}

// PlainText returns up to limit bytes of the PDF's text layer. Scanned
// documents without a text layer yield "".
func PlainText(path string, limit int64) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	b, err := io.ReadAll(io.LimitReader(rd, limit))
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return string(b), nil
}
