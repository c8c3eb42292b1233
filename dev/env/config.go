package devenv

// ListingTestConfig drives live scrape tests against the real retailer
// page. Tests skip when the file is absent so the suite stays green
// without credentials.
type ListingTestConfig struct {
	ListingUrl    string `json:"listing_url"`
	ScraperApiKey string `json:"scraperapi_key"`
}

// NotifyTestConfig drives live notification tests against real
// providers.
type NotifyTestConfig struct {
	CourierApiKey string `json:"courier_api_key"`
	Recipient     string `json:"recipient"`
}
