// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/batch"
	"github.com/pdiddy/docpdf/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Convert files as they appear in a directory",
	Long: `Watch converts every supported file created or modified in DIR, one at
a time, using the same options as convert. It runs until interrupted.
Subdirectories are not watched.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addBatchFlags(watchCmd)
	watchCmd.Flags().Duration("settle", watch.DefaultSettle, "time a file must stay unchanged before conversion")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := batchOptions(cmd)
	if err != nil {
		return err
	}
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	out, err := filepath.Abs(opts.TargetDir)
	if err != nil {
		return err
	}
	if dir == out {
		return fmt.Errorf("output directory must differ from the watched directory")
	}

	orch, err := newOrchestrator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(dir, orch, opts, logger)
	if settle, _ := cmd.Flags().GetDuration("settle"); settle > 0 {
		w.SetSettle(settle)
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", dir)
	return w.Run(ctx, func(sum batch.Summary) {
		for _, r := range sum.Results {
			if r.Succeeded() {
				printSuccess(r)
			} else {
				printFailure(r)
			}
		}
		recordHistory(ctx, cmd, sum)
	})
}
