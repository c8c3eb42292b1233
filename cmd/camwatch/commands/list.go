package commands

import (
	"log/slog"
	"time"

	"camwatch/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every camera currently tracked in the registry.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		store, err := openRegistry(config)
		if err != nil {
			serviceutil.Fatal("open registry", err)
		}
		snapshot, err := store.Load(cmd.Context())
		if err != nil {
			serviceutil.Fatal("load registry", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Camera"})
		for i, name := range snapshot.Cameras {
			t.AppendRow(table.Row{i + 1, name})
		}
		t.Render()

		if snapshot.LastUpdated != nil {
			slog.Info(
				"registry",
				"total", snapshot.TotalTracked,
				"last_updated", snapshot.LastUpdated.Format(time.ANSIC),
			)
		} else {
			slog.Info("registry", "total", snapshot.TotalTracked)
		}
	},
}
