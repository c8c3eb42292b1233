package commands

import (
	"log/slog"

	"camwatch/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches the listing page and prints the product names without touching any state.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		scraper, err := newScraper(config, false)
		if err != nil {
			serviceutil.Fatal("init listing client", err)
		}

		names, strategy, err := scraper.Products(cmd.Context())
		if err != nil {
			serviceutil.Fatal("fetch listing", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Camera"})
		for i, name := range names {
			t.AppendRow(table.Row{i + 1, name})
		}
		t.Render()
		slog.Info("listing fetched", "strategy", strategy, "count", len(names))
	},
}
