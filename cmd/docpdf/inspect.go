// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/metadata"
	"github.com/pdiddy/docpdf/internal/ocr"
)

// inspectTextLimit caps how much of the text layer is read for language
// detection.
const inspectTextLimit = 64 << 10

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE.pdf",
	Short: "Show the title, author, page count and text layer of a PDF",
	Long: `Inspect prints the document properties of a PDF and whether it has a
text layer. When it does, the language of the text is guessed and printed as
a Tesseract language code that can be passed to --ocr-lang.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := metadata.Read(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:    %s\n", path)
	fmt.Fprintf(out, "Title:   %s\n", orNone(info.Title))
	fmt.Fprintf(out, "Author:  %s\n", orNone(info.Author))
	fmt.Fprintf(out, "Pages:   %d\n", info.Pages)

	text, err := metadata.PlainText(path, inspectTextLimit)
	if err != nil {
		logger.Warn().Err(err).Str("source", path).Msg("reading text layer")
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(out, "Text:    none (scanned? convert with --ocr)")
		return nil
	}
	fmt.Fprintf(out, "Text:    %d characters sampled\n", len([]rune(text)))
	fmt.Fprintf(out, "Language: %s\n", ocr.DetectLanguage(text))
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
