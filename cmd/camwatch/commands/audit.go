package commands

import (
	"fmt"
	"log/slog"

	"camwatch/lib/registry"
	"camwatch/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var auditThreshold *float64

func init() {
	auditThreshold = auditCmd.Flags().Float64(
		"threshold", registry.DefaultSimilarThreshold,
		"Minimum Jaro-Winkler correlation to report a pair.",
	)
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit [--threshold <0..1>]",
	Short: "Reports tracked names similar enough that they are likely the same camera retitled.",
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

		pairs := registry.SimilarPairs(snapshot.Cameras, *auditThreshold)

		t := newTable()
		t.AppendHeader(table.Row{"Correlation", "Left", "Right"})
		for _, pair := range pairs {
			t.AppendRow(table.Row{
				fmt.Sprintf("%.3f", pair.Correlation),
				pair.Left,
				pair.Right,
			})
		}
		t.Render()
		slog.Info("audit complete", "names", len(snapshot.Cameras), "pairs", len(pairs))
	},
}
