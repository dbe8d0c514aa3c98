// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/docpdf/pkg/types"
)

// Text page geometry, in points on a US-Letter page. Baselines are measured
// from the bottom edge.
const (
	pageWidth    = 612.0
	pageHeight   = 792.0
	textLeft     = 50.0
	textTop      = 750.0
	textBottom   = 50.0
	lineHeight   = 15.0
	textFontSize = 12.0
	maxLineBytes = 1 << 20
)

// TextConverter renders a UTF-8 text file one trimmed line per baseline.
type TextConverter struct{}

// Convert implements Converter.
func (TextConverter) Convert(_ context.Context, in, out string, _ types.ConversionJob) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	return layoutText(lines, out)
}

// CSVConverter renders a CSV file as an aligned text table.
type CSVConverter struct{}

// Convert implements Converter.
func (CSVConverter) Convert(_ context.Context, in, out string, _ types.ConversionJob) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer f.Close()

	records, err := readCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", in, err)
	}
	return layoutText(tableLines(records), out)
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("line %d is not valid UTF-8", len(lines)+1)
		}
		if len(lines) == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no columns to parse")
	}
	for i, rec := range records {
		for j, cell := range rec {
			if !utf8.ValidString(cell) {
				return nil, fmt.Errorf("record %d field %d is not valid UTF-8", i+1, j+1)
			}
		}
	}
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	return records, nil
}

// tableLines formats records as right-aligned columns separated by two
// spaces, header first. The reader enforces an equal field count per record.
func tableLines(records [][]string) []string {
	widths := make([]int, len(records[0]))
	for _, rec := range records {
		for j, cell := range rec {
			if n := utf8.RuneCountInString(cell); n > widths[j] {
				widths[j] = n
			}
		}
	}

	lines := make([]string, 0, len(records))
	for _, rec := range records {
		var b strings.Builder
		for j, cell := range rec {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell)))
			b.WriteString(cell)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// layoutText draws lines on US-Letter pages in Helvetica without wrapping.
// A new page starts once the next baseline would fall below the bottom
// margin. An empty input yields one blank page.
func layoutText(lines []string, out string) error {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", textFontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	y := textTop
	for _, line := range lines {
		if y < textBottom {
			doc.AddPage()
			y = textTop
		}
		if line != "" {
			doc.Text(textLeft, pageHeight-y, tr(line))
		}
		y -= lineHeight
	}
	if err := doc.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}
