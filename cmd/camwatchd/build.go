package main

import (
	"fmt"
	"log/slog"
	"time"

	devenv "camwatch/dev/env"
	"camwatch/lib/courier"
	"camwatch/lib/registry"
	"camwatch/lib/runlog"
	runlogdb "camwatch/lib/runlog/db"
	"camwatch/lib/scraperapi"
	"camwatch/lib/scrapers/bhphoto"
	"camwatch/services/notify"
	"camwatch/services/watch"

	"github.com/dgraph-io/badger/v4"
)

type services struct {
	watcher  watch.Service
	notifier notify.Service
	registry registry.Store
	runs     runlog.Store
}

func openPageCache(config PageCacheConfig) (*badger.DB, error) {
	if config.Dir == "" {
		return nil, nil
	}
	dir, err := devenv.ResolvePath(config.Dir)
	if err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir)
	// badger's default logger writes straight to stderr
	opts.Logger = nil
	return badger.Open(opts)
}

func buildServices(config Config) (services, error) {
	var proxy *scraperapi.Client
	if config.ScraperApi.ApiKey != "" {
		var err error
		proxy, err = scraperapi.NewClient(scraperapi.ClientOptions{
			ApiKey:      config.ScraperApi.ApiKey,
			CountryCode: config.ScraperApi.CountryCode,
		})
		if err != nil {
			return services{}, fmt.Errorf("init scraperapi client: %w", err)
		}
	} else {
		slog.Warn("no scraperapi key configured, proxy escalation is disabled")
	}

	cache, err := openPageCache(config.Watch.PageCache)
	if err != nil {
		return services{}, fmt.Errorf("open page cache: %w", err)
	}

	scraper, err := bhphoto.NewClient(bhphoto.ClientOptions{
		ListingUrl: config.Watch.ListingUrl,
		Proxy:      proxy,
		Cache:      cache,
		CacheTtl:   time.Duration(config.Watch.PageCache.TtlMinutes) * time.Minute,
	})
	if err != nil {
		return services{}, fmt.Errorf("init listing client: %w", err)
	}

	database, err := config.Runlog.OpenDB(runlogdb.Schema)
	if err != nil {
		return services{}, fmt.Errorf("open run log: %w", err)
	}
	runs := runlog.NewStore(database)

	registryFile, err := devenv.ResolvePath(config.Watch.RegistryFile)
	if err != nil {
		return services{}, err
	}
	signalFile, err := devenv.ResolvePath(config.Watch.SignalFile)
	if err != nil {
		return services{}, err
	}
	store := registry.NewStore(registryFile)

	watcher := watch.NewService(watch.Options{
		Scraper:    scraper,
		Registry:   store,
		Runs:       runs,
		SignalFile: signalFile,
	})

	var courierClient *courier.Client
	if config.Notify.Courier.ApiKey != "" {
		courierClient, err = courier.NewClient(courier.ClientOptions{
			ApiKey: config.Notify.Courier.ApiKey,
		})
		if err != nil {
			return services{}, fmt.Errorf("init courier client: %w", err)
		}
	}

	notifier := notify.NewService(notify.Options{
		SignalFile: signalFile,
		ListingUrl: config.Watch.ListingUrl,
		Recipients: notify.SplitRecipients(config.Notify.Recipients),
		Courier:    courierClient,
		Smtp: notify.SmtpConfig{
			Server:       config.Notify.Smtp.Server,
			Port:         config.Notify.Smtp.Port,
			EmailAddress: config.Notify.Smtp.EmailAddress,
			Password:     config.Notify.Smtp.Password,
		},
	})

	return services{
		watcher:  watcher,
		notifier: notifier,
		registry: store,
		runs:     runs,
	}, nil
}
