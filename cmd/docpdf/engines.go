// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show the external engines docpdf will use",
	Long: `Engines prints the resolved path of Ghostscript, Tesseract and
LibreOffice. Paths set in the configuration (engines.ghostscript,
engines.tesseract, engines.soffice) win over discovery. The command fails
when Ghostscript or Tesseract is missing.`,
	RunE: runEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, args []string) error {
	eng := engine.Detect(cfg.Engines, logger)
	out := cmd.OutOrStdout()
	for _, e := range []struct{ name, path, role string }{
		{engine.NameGhostscript, eng.Ghostscript, "PDF/A (required)"},
		{engine.NameTesseract, eng.Tesseract, "OCR (required)"},
		{engine.NameSoffice, eng.Soffice, "office formats"},
	} {
		path := e.path
		if path == "" {
			path = red.Sprint("not found")
		}
		fmt.Fprintf(out, "%-12s %-18s %s\n", e.name, e.role, path)
	}
	return eng.Require()
}
