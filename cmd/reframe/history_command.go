package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"reframe/internal/config"
	"reframe/internal/history"
)

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past batch runs",
		Long: `Without arguments, lists recent batch runs. With a run ID, lists the
per-file outcomes of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled; enable it in the [history] config section")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return renderRunFiles(cmd, store, args[0])
			}
			return renderRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")
	return cmd
}

func renderRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}

	headers := []string{"Run", "Started", "Duration", "Processed"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
			fmt.Sprintf("%d/%d", run.Processed, run.Attempted),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}

func renderRunFiles(cmd *cobra.Command, store *history.Store, runID string) error {
	files, err := store.RunFiles(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files recorded for run %s.\n", runID)
		return nil
	}

	headers := []string{"File", "Outcome", "Time", "Error"}
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		rows = append(rows, []string{
			filepath.Base(file.Input),
			file.Outcome,
			file.Elapsed.Round(time.Second).String(),
			file.Error,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}
