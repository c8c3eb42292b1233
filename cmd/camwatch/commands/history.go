package commands

import (
	"time"

	"camwatch/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int
var historyRun *int64

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "The maximum number of runs to show, newest first.")
	historyRun = historyCmd.Flags().Int64("run", 0, "Print the cameras discovered by one run instead of the run table.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>] [--run <run id>]",
	Short: "Prints the most recent watch runs from the run log.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		runs, err := openRunlog(config)
		if err != nil {
			serviceutil.Fatal("open run log", err)
		}

		if *historyRun > 0 {
			names, err := runs.Discoveries(cmd.Context(), *historyRun)
			if err != nil {
				serviceutil.Fatal("load run discoveries", err)
			}
			t := newTable()
			t.AppendHeader(table.Row{"Discovered Camera"})
			for _, name := range names {
				t.AppendRow(table.Row{name})
			}
			t.Render()
			return
		}

		recent, err := runs.Recent(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("load run history", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Time", "Strategy", "Seen", "New", "Total", "Error"})
		for _, run := range recent {
			t.AppendRow(table.Row{
				run.Id,
				run.Time.Format(time.ANSIC),
				run.Strategy,
				run.SeenCount,
				run.NewCount,
				run.TotalTracked,
				run.Err,
			})
		}
		t.Render()
	},
}
