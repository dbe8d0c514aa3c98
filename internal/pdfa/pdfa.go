// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfa rewrites PDFs into an archival PDF/A profile by running
// Ghostscript's pdfwrite device.
package pdfa

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/docpdf/internal/engine"
	"github.com/pdiddy/docpdf/pkg/types"
)

// Version maps a profile to Ghostscript's PDFA level. Unknown profiles map to 1.
func Version(profile types.PDFAProfile) int {
	switch profile {
	case types.ProfileA2b:
		return 2
	case types.ProfileA3b:
		return 3
	default:
		return 1
	}
}

// Args builds the Ghostscript argument list for normalizing in to out.
// A-2b and A-3b use the RGB color strategy; A-1b and anything else use CMYK.
func Args(profile types.PDFAProfile, in, out string) []string {
	args := []string{
		"-dBATCH",
		"-dNOPAUSE",
		"-dNOOUTERSAVE",
		fmt.Sprintf("-dPDFA=%d", Version(profile)),
		"-sDEVICE=pdfwrite",
		"-dPDFACompatibilityPolicy=1",
		"-sOutputFile=" + out,
		in,
	}
	switch profile {
	case types.ProfileA2b, types.ProfileA3b:
		args = append(args, "-sColorConversionStrategy=RGB", "-sProcessColorModel=DeviceRGB")
	default:
		args = append(args, "-sColorConversionStrategy=CMYK", "-sProcessColorModel=DeviceCMYK")
	}
	return args
}

// Normalizer runs the PDF/A conversion.
type Normalizer struct {
	runner engine.Runner
	bin    string
	log    zerolog.Logger
}

// NewNormalizer creates a normalizer that runs the Ghostscript binary at bin
// through runner.
func NewNormalizer(runner engine.Runner, bin string, log zerolog.Logger) *Normalizer {
	return &Normalizer{runner: runner, bin: bin, log: log}
}

// Normalize rewrites in as a PDF/A file at out. A failed run removes any
// partial output so it can never be mistaken for a usable file.
func (n *Normalizer) Normalize(ctx context.Context, in, out string, profile types.PDFAProfile) error {
	if err := n.runner.Run(ctx, n.bin, Args(profile, in, out), nil, nil); err != nil {
		n.log.Error().Err(err).Str("source", in).Str("profile", string(profile)).Msg("PDF/A conversion failed")
		if rmErr := os.Remove(out); rmErr != nil && !os.IsNotExist(rmErr) {
			n.log.Error().Err(rmErr).Str("path", out).Msg("removing partial PDF/A output")
		}
		return fmt.Errorf("PDF/A conversion of %s: %w", in, err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("PDF/A conversion of %s produced no output: %w", in, err)
	}
	if info.Size() == 0 {
		os.Remove(out)
		return fmt.Errorf("PDF/A conversion of %s: %w", in, types.ErrEmptyArtifact)
	}

	n.log.Info().Str("source", in).Str("output", out).Str("profile", string(profile)).Msg("converted to PDF/A")
	return nil
}
