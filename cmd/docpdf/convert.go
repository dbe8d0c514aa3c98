// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/batch"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert files to PDF",
	Long: `Convert turns each input file into a PDF in the output directory.
Supported inputs: .docx .xlsx .pptx .csv .txt .jpg .jpeg .png .pdf.

Outputs are named after their input. When a PDF/A profile is selected the
profile is appended (scan.png -> scan_PDF-A-1b.pdf). Existing files are never
overwritten: a _V1, _V2, ... suffix is added instead.

A file that fails is reported and the batch continues. The command exits
non-zero when any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	addBatchFlags(convertCmd)
	convertCmd.Flags().String("report", "", "write a YAML report of the batch to this file")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := batchOptions(cmd)
	if err != nil {
		return err
	}
	orch, err := newOrchestrator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := newProgressBar(len(args))
	var sum batch.Summary
	for ev := range orch.Start(ctx, args, opts) {
		switch ev.Kind {
		case batch.EventFailure:
			_ = bar.Clear()
			printFailure(ev.Failure)
		case batch.EventProgress:
			bar.Describe(ev.Progress.FileName)
			_ = bar.Set(ev.Progress.Completed)
		case batch.EventFinished:
			sum = *ev.Summary
		}
	}
	_ = bar.Finish()

	for _, r := range sum.Results {
		if r.Succeeded() {
			printSuccess(r)
		}
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := batch.WriteReport(path, sum); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}
	recordHistory(cmd.Context(), cmd, sum)

	fmt.Printf("\nBatch summary: %d converted, %d failed (total: %d)\n",
		sum.Succeeded(), sum.Failed(), len(sum.Results))
	if sum.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", sum.Failed())
	}
	return nil
}
