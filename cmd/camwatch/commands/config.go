package commands

import (
	"log/slog"
	"os"
	"time"

	devenv "camwatch/dev/env"
	"camwatch/lib/configutil"
	configlibsql "camwatch/lib/configutil/libsql"
	"camwatch/lib/courier"
	"camwatch/lib/registry"
	"camwatch/lib/runlog"
	runlogdb "camwatch/lib/runlog/db"
	"camwatch/lib/scraperapi"
	"camwatch/lib/scrapers/bhphoto"
	"camwatch/lib/serviceutil"
	"camwatch/services/notify"

	"github.com/dgraph-io/badger/v4"
)

type PageCacheConfig struct {
	// empty disables the listing page cache
	Dir        string `json:"dir"`
	TtlMinutes int    `json:"ttl_minutes"`
}

type WatchConfig struct {
	ListingUrl   string `json:"listing_url"`
	RegistryFile string `json:"registry_file"`
	SignalFile   string `json:"signal_file"`
	// five-field cron expression, only the daemon reads it
	Schedule   string          `json:"schedule"`
	RunOnStart bool            `json:"run_on_start"`
	PageCache  PageCacheConfig `json:"page_cache"`
}

type ScraperApiConfig struct {
	ApiKey      string `json:"api_key"`
	CountryCode string `json:"country_code"`
}

type CourierConfig struct {
	ApiKey string `json:"api_key"`
}

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type NotifyConfig struct {
	// comma-separated email addresses
	Recipients string        `json:"recipients"`
	Courier    CourierConfig `json:"courier"`
	Smtp       SmtpConfig    `json:"smtp"`
}

// Config mirrors the daemon's config file so both binaries can share
// one config.json5.
type Config struct {
	Watch      WatchConfig         `json:"watch"`
	ScraperApi ScraperApiConfig    `json:"scraperapi"`
	Runlog     configlibsql.Struct `json:"runlog"`
	Notify     NotifyConfig        `json:"notify"`
	StatusPort int                 `json:"status_port"`
}

func (c *Config) applyDefaults() {
	if c.Watch.ListingUrl == "" {
		c.Watch.ListingUrl = bhphoto.DefaultListingUrl
	}
	if c.Watch.RegistryFile == "" {
		c.Watch.RegistryFile = "data/cameras.json"
	}
	if c.Watch.SignalFile == "" {
		c.Watch.SignalFile = "new_cameras.txt"
	}
	if c.Runlog.File == "" {
		c.Runlog.File = "data/runlog.db"
	}
	if c.ScraperApi.ApiKey == "" {
		c.ScraperApi.ApiKey = os.Getenv("SCRAPER_API_KEY")
	}
	if c.Notify.Courier.ApiKey == "" {
		c.Notify.Courier.ApiKey = os.Getenv("COURIER_API_KEY")
	}
	if c.Notify.Recipients == "" {
		c.Notify.Recipients = os.Getenv("NOTIFICATION_RECIPIENTS")
	}
}

func loadConfig() Config {
	config, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		slog.Debug("no config.json5 found, using defaults and the environment")
	} else if err != nil {
		serviceutil.Fatal("read config", err)
	}
	config.applyDefaults()
	return config
}

// nil when no api key is configured, the scraper then runs direct-only.
func newProxy(config Config) (*scraperapi.Client, error) {
	if config.ScraperApi.ApiKey == "" {
		return nil, nil
	}
	return scraperapi.NewClient(scraperapi.ClientOptions{
		ApiKey:      config.ScraperApi.ApiKey,
		CountryCode: config.ScraperApi.CountryCode,
	})
}

func newScraper(config Config, cached bool) (*bhphoto.Client, error) {
	proxy, err := newProxy(config)
	if err != nil {
		return nil, err
	}

	opts := bhphoto.ClientOptions{
		ListingUrl: config.Watch.ListingUrl,
		Proxy:      proxy,
	}
	if cached && config.Watch.PageCache.Dir != "" {
		dir, err := devenv.ResolvePath(config.Watch.PageCache.Dir)
		if err != nil {
			return nil, err
		}
		cacheOpts := badger.DefaultOptions(dir)
		// badger's default logger writes straight to stderr
		cacheOpts.Logger = nil
		cache, err := badger.Open(cacheOpts)
		if err != nil {
			return nil, err
		}
		opts.Cache = cache
		opts.CacheTtl = time.Duration(config.Watch.PageCache.TtlMinutes) * time.Minute
	}
	return bhphoto.NewClient(opts)
}

func openRegistry(config Config) (registry.Store, error) {
	path, err := devenv.ResolvePath(config.Watch.RegistryFile)
	if err != nil {
		return registry.Store{}, err
	}
	return registry.NewStore(path), nil
}

func resolveSignalFile(config Config) (string, error) {
	return devenv.ResolvePath(config.Watch.SignalFile)
}

func openRunlog(config Config) (runlog.Store, error) {
	database, err := config.Runlog.OpenDB(runlogdb.Schema)
	if err != nil {
		return runlog.Store{}, err
	}
	return runlog.NewStore(database), nil
}

func newNotifier(config Config) (notify.Service, error) {
	signalFile, err := resolveSignalFile(config)
	if err != nil {
		return notify.Service{}, err
	}

	var courierClient *courier.Client
	if config.Notify.Courier.ApiKey != "" {
		courierClient, err = courier.NewClient(courier.ClientOptions{
			ApiKey: config.Notify.Courier.ApiKey,
		})
		if err != nil {
			return notify.Service{}, err
		}
	}

	return notify.NewService(notify.Options{
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
	}), nil
}
