package scraperapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"camwatch/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseUrl = "http://api.scraperapi.com"

// rendering through the proxy can take well over a minute, the vendor
// recommends a 70 second client timeout
const requestTimeout = time.Second * 70

var ErrMissingApiKey = errors.New("scraperapi api key is not configured")

// StatusError is a non-200 response from the proxy. 403 usually means
// the plan ran out of credits, 500 means the proxy gave up on the
// target after its internal retries.
type StatusError struct {
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("scraperapi returned status %d", e.StatusCode)
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	ApiKey  string
	// two-letter geotargeting code, e.g. "us"
	CountryCode string
}

type Client struct {
	http        *resty.Client
	apiKey      string
	countryCode string
	// session_number pins the proxy to one outbound IP across a run,
	// which keeps the retailer from seeing a different country per
	// request
	session int
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, ErrMissingApiKey
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	session, err := random.IntRange(1, 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("generate session number: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(requestTimeout)
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		http:        client,
		apiKey:      opts.ApiKey,
		countryCode: opts.CountryCode,
		session:     session,
	}, nil
}

type FetchOptions struct {
	// ask the proxy to run the page through a headless browser before
	// returning it, costs extra credits
	Render bool
}

// Fetch retrieves the target url through the proxy and returns the
// raw body.
func (c *Client) Fetch(ctx context.Context, target string, opts FetchOptions) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("target", target),
		attribute.Bool("render", opts.Render),
	))
	defer span.End()

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("url", target).
		SetQueryParam("session_number", strconv.Itoa(c.session))
	if c.countryCode != "" {
		req.SetQueryParam("country_code", c.countryCode)
	}
	if opts.Render {
		req.SetQueryParam("render", "true")
	}

	res, err := req.Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "proxy fetch failed")
		return nil, fmt.Errorf("proxy fetch %s: %w", target, err)
	}
	if res.StatusCode() != 200 {
		err := StatusError{StatusCode: res.StatusCode()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "proxy returned non-200")
		return nil, err
	}

	return res.Body(), nil
}

// AccountStatus is the quota document from the proxy's /account
// endpoint.
type AccountStatus struct {
	ConcurrencyLimit   int `json:"concurrencyLimit"`
	RequestCount       int `json:"requestCount"`
	FailedRequestCount int `json:"failedRequestCount"`
	RequestLimit       int `json:"requestLimit"`
}

// Account reports remaining quota, used by the probe command to check
// the key before burning credits on a real fetch.
func (c *Client) Account(ctx context.Context) (AccountStatus, error) {
	ctx, span := tracer.Start(ctx, "Account")
	defer span.End()

	var status AccountStatus
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&status).
		Get("/account")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "account request failed")
		return AccountStatus{}, err
	}
	if res.StatusCode() != 200 {
		err := StatusError{StatusCode: res.StatusCode()}
		span.RecordError(err)
		span.SetStatus(codes.Error, "account returned non-200")
		return AccountStatus{}, err
	}

	return status, nil
}
