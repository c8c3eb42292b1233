package commands

import (
	"log/slog"

	"camwatch/lib/serviceutil"
	"camwatch/services/watch"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runNotify *bool

func init() {
	runNotify = runCmd.Flags().Bool("notify", false, "Dispatch notifications for newly found cameras after the run.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--notify]",
	Short: "Runs one watch cycle: scrape the listing, diff against the registry, persist the result.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		scraper, err := newScraper(config, true)
		if err != nil {
			serviceutil.Fatal("init listing client", err)
		}
		store, err := openRegistry(config)
		if err != nil {
			serviceutil.Fatal("open registry", err)
		}
		signalFile, err := resolveSignalFile(config)
		if err != nil {
			serviceutil.Fatal("resolve signal file", err)
		}
		runs, err := openRunlog(config)
		if err != nil {
			serviceutil.Fatal("open run log", err)
		}

		watcher := watch.NewService(watch.Options{
			Scraper:    scraper,
			Registry:   store,
			Runs:       runs,
			SignalFile: signalFile,
		})

		report, err := watcher.Run(cmd.Context())
		if err != nil {
			// already logged by the service, a blocked or empty scrape
			// is a diagnosed outcome rather than a usage error
			return
		}

		if len(report.New) > 0 {
			t := newTable()
			t.AppendHeader(table.Row{"New Camera"})
			for _, name := range report.New {
				t.AppendRow(table.Row{name})
			}
			t.Render()
		}
		slog.Info(
			"run complete",
			"strategy", report.Strategy,
			"seen", report.Seen,
			"new", len(report.New),
			"total", report.Total,
		)

		if !*runNotify {
			return
		}
		notifier, err := newNotifier(config)
		if err != nil {
			serviceutil.Fatal("init notifier", err)
		}
		sent, err := notifier.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("dispatch notifications", err)
		}
		slog.Info("notifications dispatched", "sent", sent)
	},
}
