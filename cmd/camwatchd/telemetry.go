package main

import (
	"context"
	"log/slog"

	"camwatch/lib/courier"
	"camwatch/lib/restyutil"
	"camwatch/lib/scraperapi"
	"camwatch/lib/scrapers/bhphoto"
	"camwatch/lib/serviceutil"
	"camwatch/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "camwatchd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	bhphoto.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/bhphoto"),
	)
	scraperapi.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/scraperapi"),
	)
	courier.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/courier"),
	)
}
