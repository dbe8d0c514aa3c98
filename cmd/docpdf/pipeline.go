// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/batch"
	"github.com/pdiddy/docpdf/internal/convert"
	"github.com/pdiddy/docpdf/internal/engine"
	"github.com/pdiddy/docpdf/internal/history"
	"github.com/pdiddy/docpdf/internal/metadata"
	"github.com/pdiddy/docpdf/internal/ocr"
	"github.com/pdiddy/docpdf/internal/pdfa"
	"github.com/pdiddy/docpdf/pkg/types"
)

// addBatchFlags registers the options shared by convert and watch.
func addBatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("out", "o", "", "output directory (required)")
	f.StringP("profile", "p", "", "output profile: standard, a1b, a2b or a3b")
	f.Bool("ocr", false, "run OCR on images and PDFs")
	f.String("ocr-lang", "", "Tesseract languages joined with + (default deu+eng)")
	f.Int("dpi", 0, "rasterization resolution for OCR and slides (default 300)")
	f.String("pages", "", "comma-separated zero-based PDF pages to OCR (default all)")
	f.String("title", "", "document title to stamp on every output")
	f.String("author", "", "document author to stamp on every output")
	f.Bool("no-history", false, "do not record this run in the history database")
}

// batchOptions builds the per-batch options from flags and configuration.
func batchOptions(cmd *cobra.Command) (types.BatchOptions, error) {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return types.BatchOptions{}, fmt.Errorf("--out is required")
	}
	profile, err := types.ParseProfile(cfg.Output.Profile)
	if err != nil {
		return types.BatchOptions{}, err
	}
	pagesFlag, _ := cmd.Flags().GetString("pages")
	pages, err := types.ParsePages(pagesFlag)
	if err != nil {
		return types.BatchOptions{}, err
	}
	ocrOn, _ := cmd.Flags().GetBool("ocr")
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")

	return types.BatchOptions{
		TargetDir: out,
		Profile:   profile,
		OCR: types.OCROptions{
			Enabled:   ocrOn,
			Languages: cfg.OCR.Languages,
			DPI:       cfg.OCR.DPI,
			Pages:     pages,
		},
		Title:  title,
		Author: author,
	}, nil
}

// newOrchestrator resolves the engines and wires the conversion pipeline.
// It fails when a required engine is missing so no job runs.
func newOrchestrator() (*batch.Orchestrator, error) {
	eng := engine.Detect(cfg.Engines, logger)
	if err := eng.Require(); err != nil {
		logger.Error().Err(err).Msg("required engine missing")
		return nil, err
	}
	if eng.Soffice == "" {
		logger.Warn().Msg("LibreOffice not found; office documents will fail")
		warnf("LibreOffice not found: .docx, .xlsx and .pptx files will fail")
	}

	raster := ocr.FitzRasterizer{}
	router := convert.NewDefaultRouter(convert.Deps{
		Runner:     eng,
		Soffice:    eng.Soffice,
		Recognizer: ocr.NewService(eng, eng.Tesseract, raster, logger),
		Rasterizer: raster,
		Log:        logger,
	})
	return batch.New(
		router,
		pdfa.NewNormalizer(eng, eng.Ghostscript, logger),
		batch.StampFunc(metadata.Stamp),
		batch.WithLogger(logger),
		batch.WithTempDir(cfg.Work.TempDir),
	), nil
}

// recordHistory saves sum unless history is disabled. Failures are logged
// and reported but never fail the command.
func recordHistory(ctx context.Context, cmd *cobra.Command, sum batch.Summary) {
	if skip, _ := cmd.Flags().GetBool("no-history"); skip || !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.History.Path).Msg("opening history")
		warnf("history not recorded: %v", err)
		return
	}
	defer store.Close()
	if err := store.Save(ctx, sum); err != nil {
		logger.Warn().Err(err).Str("batch", sum.BatchID).Msg("saving history")
		warnf("history not recorded: %v", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
