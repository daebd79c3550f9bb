package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"crate/internal/runs"
)

func newRunsCommand(cctx *commandContext) *cobra.Command {
	var limit int
	var plain bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent export runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			history, err := runs.Open(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer history.Close()

			entries, err := history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			headers := []string{"STARTED", "STATUS", "DURATION", "PLAYLISTS", "COMMITTED", "COMMIT", "ERROR"}
			rows := make([][]string, 0, len(entries))
			for _, run := range entries {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Status,
					formatDuration(run.Duration()),
					fmt.Sprint(run.Playlists),
					yesNo(run.Committed),
					shortHash(run.HeadCommit),
					run.Error,
				})
			}

			if plain || !isTerminal(os.Stdout) {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			}

			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
				alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft,
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print tab-separated output without table formatting")
	return cmd
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
