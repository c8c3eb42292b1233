package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"camwatch/lib/configutil"
	"camwatch/lib/serviceutil"
	"camwatch/lib/timezone"

	"github.com/robfig/cron/v3"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	once := flag.Bool("once", false, "Run a single watch cycle and exit, for external schedulers.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		slog.Info("no config.json5 found, using defaults and the environment")
	} else if err != nil {
		serviceutil.Fatal("read config", err)
	}
	config.applyDefaults()

	svc, err := buildServices(config)
	if err != nil {
		serviceutil.Fatal("init services", err)
	}

	runCycle := func() {
		ctx, cancel := context.WithTimeout(ctx, time.Minute*10)
		defer cancel()

		_, err := svc.watcher.Run(ctx)
		if err != nil {
			// the watch service already logged it, wait for the next tick
			return
		}
		sent, err := svc.notifier.Run(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to dispatch notifications", "err", err, "sent", sent)
		}
	}

	if *once {
		runCycle()
		return
	}

	if config.Watch.RunOnStart {
		runCycle()
	}

	scheduler := cron.New(
		cron.WithLocation(timezone.Location),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(skipLogger{})),
	)
	_, err = scheduler.AddFunc(config.Watch.Schedule, runCycle)
	if err != nil {
		serviceutil.Fatal("schedule watch", err)
	}
	scheduler.Start()
	slog.Info("watch scheduled", "schedule", config.Watch.Schedule, "tz", timezone.Location.String())

	go serviceutil.StartHttpServer(config.StatusPort, newStatusMux(svc.registry, svc.runs))

	<-ctx.Done()
	scheduler.Stop()
}
