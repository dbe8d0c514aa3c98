// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/docpdf/pkg/types"
)

var (
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

// newProgressBar renders batch progress on stderr.
func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// printFailure reports one failed file on stderr.
func printFailure(r types.ConversionResult) {
	red.Fprintf(os.Stderr, "✗ %s: %s\n", r.SourcePath, r.Err.Message)
}

func printSuccess(r types.ConversionResult) {
	green.Printf("✓ %s → %s\n", r.SourcePath, r.OutputPath)
}

func warnf(format string, args ...any) {
	yellow.Fprintf(os.Stderr, "⚠ %s\n", fmt.Sprintf(format, args...))
}
