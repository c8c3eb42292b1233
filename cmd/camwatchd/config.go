package main

import (
	"os"

	configlibsql "camwatch/lib/configutil/libsql"
	"camwatch/lib/scrapers/bhphoto"
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
	// five-field cron expression
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

type Config struct {
	Watch      WatchConfig         `json:"watch"`
	ScraperApi ScraperApiConfig    `json:"scraperapi"`
	Runlog     configlibsql.Struct `json:"runlog"`
	Notify     NotifyConfig        `json:"notify"`
	StatusPort int                 `json:"status_port"`
}

// fills in everything a config-less deployment needs, credentials and
// recipients fall back to the environment.
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
	if c.Watch.Schedule == "" {
		// hourly, off the minute boundary
		c.Watch.Schedule = "17 * * * *"
	}
	if c.Runlog.File == "" {
		c.Runlog.File = "data/runlog.db"
	}
	if c.StatusPort == 0 {
		c.StatusPort = 8790
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
