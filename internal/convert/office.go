// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/engine"
	"github.com/pdiddy/docpdf/internal/fsutil"
	"github.com/pdiddy/docpdf/pkg/types"
)

// LibreOffice export filters.
const (
	filterWriter  = "writer_pdf_Export"
	filterCalc    = "calc_pdf_Export"
	filterImpress = "impress_pdf_Export"
)

// OfficeConverter exports office documents with headless LibreOffice. Every
// run uses a private user profile inside a scratch directory, so concurrent
// LibreOffice instances do not interfere and the source is never saved.
type OfficeConverter struct {
	runner engine.Runner
	bin    string
	filter string
	log    zerolog.Logger
}

// NewOfficeConverter creates a converter that runs soffice at bin with the
// given export filter.
func NewOfficeConverter(runner engine.Runner, bin, filter string, log zerolog.Logger) *OfficeConverter {
	return &OfficeConverter{runner: runner, bin: bin, filter: filter, log: log}
}

// NewDocumentConverter converts word-processing documents.
func NewDocumentConverter(runner engine.Runner, bin string, log zerolog.Logger) *OfficeConverter {
	return NewOfficeConverter(runner, bin, filterWriter, log)
}

// NewSpreadsheetConverter converts workbooks.
func NewSpreadsheetConverter(runner engine.Runner, bin string, log zerolog.Logger) *OfficeConverter {
	return NewOfficeConverter(runner, bin, filterCalc, log)
}

// Convert implements Converter.
func (o *OfficeConverter) Convert(ctx context.Context, in, out string, _ types.ConversionJob) error {
	if o.bin == "" {
		return fmt.Errorf("converting %s: %w: LibreOffice (soffice)", filepath.Base(in), types.ErrEngineMissing)
	}

	absIn, err := filepath.Abs(in)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", in, err)
	}

	scratch, err := os.MkdirTemp("", "docpdf-soffice-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	args := []string{
		"-env:UserInstallation=" + fileURL(filepath.Join(scratch, "profile")),
		"--headless",
		"--norestore",
		"--convert-to", "pdf:" + o.filter,
		"--outdir", scratch,
		absIn,
	}
	if err := o.runner.Run(ctx, o.bin, args, nil, nil); err != nil {
		return fmt.Errorf("converting %s with LibreOffice: %w", filepath.Base(in), err)
	}

	produced, err := exportedPDF(scratch, absIn)
	if err != nil {
		return err
	}
	if err := fsutil.MoveFile(produced, out); err != nil {
		return fmt.Errorf("collecting LibreOffice output: %w", err)
	}
	o.log.Debug().Str("source", in).Str("filter", o.filter).Msg("LibreOffice export finished")
	return nil
}

// exportedPDF finds the PDF soffice wrote into dir. soffice names it after
// the input; any single PDF is accepted when the name differs.
func exportedPDF(dir, in string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	want := filepath.Join(dir, base+".pdf")
	if _, err := os.Stat(want); err == nil {
		return want, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return "", fmt.Errorf("listing LibreOffice output: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("LibreOffice produced no PDF for %s: %w", filepath.Base(in), types.ErrEmptyArtifact)
	}
	return matches[0], nil
}

// fileURL turns a local path into the file:// URL soffice expects for
// -env:UserInstallation.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
