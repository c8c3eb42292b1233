package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"camwatch/lib/scraperapi"
	"camwatch/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const probeTestUrl = "https://httpbin.org/html"

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Checks the ScraperAPI key: account quota, a simple fetch and a rendered listing fetch.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		proxy, err := scraperapi.NewClient(scraperapi.ClientOptions{
			ApiKey:      config.ScraperApi.ApiKey,
			CountryCode: config.ScraperApi.CountryCode,
		})
		if err != nil {
			serviceutil.Fatal("init scraperapi client", err)
		}

		status, err := proxy.Account(cmd.Context())
		if err != nil {
			serviceutil.Fatal("query account status", err)
		}
		t := newTable()
		t.AppendHeader(table.Row{"Requests", "Limit", "Failed", "Concurrency"})
		t.AppendRow(table.Row{
			status.RequestCount,
			status.RequestLimit,
			status.FailedRequestCount,
			status.ConcurrencyLimit,
		})
		t.Render()

		slog.Info("fetching test page", "url", probeTestUrl)
		body, err := proxy.Fetch(cmd.Context(), probeTestUrl, scraperapi.FetchOptions{})
		if err != nil {
			serviceutil.Fatal("fetch test page", err)
		}
		slog.Info("test page fetched", "bytes", len(body))

		slog.Info("fetching listing page through the proxy", "url", config.Watch.ListingUrl)
		body, err = proxy.Fetch(cmd.Context(), config.Watch.ListingUrl, scraperapi.FetchOptions{Render: true})
		if err != nil {
			serviceutil.Fatal("fetch listing page", err)
		}
		if bytes.Contains(body, []byte("Sony")) || bytes.Contains(body, []byte("Canon")) {
			slog.Info("listing page contains camera content", "bytes", len(body))
			return
		}

		slog.Warn("no camera brands found in the listing response", "bytes", len(body))
		if len(body) > 500 {
			body = body[:500]
		}
		fmt.Fprintln(os.Stderr, string(body))
	},
}
