// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docpdf/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent batches and their failures",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "number of batches to show")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !fileExists(cfg.History.Path) {
		fmt.Fprintln(out, "No batches recorded yet.")
		return nil
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No batches recorded yet.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(out, "%s  %s  %d converted, %d failed (%s)\n",
			r.Started.Local().Format(time.DateTime), r.BatchID,
			r.Succeeded, r.Failed, r.Finished.Sub(r.Started).Round(time.Millisecond))
		for _, f := range r.Failures() {
			red.Fprintf(out, "    ✗ %s [%s] %s\n", f.SourcePath, f.Err.Kind, f.Err.Message)
		}
	}
	return nil
}
