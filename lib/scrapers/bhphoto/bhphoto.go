package bhphoto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"time"

	"camwatch/lib/restyutil"
	"camwatch/lib/scraperapi"
	"camwatch/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// the digital camera category sorted by newest arrivals
const DefaultListingUrl = "https://www.bhphotovideo.com/c/products/Digital-Cameras/ci/9811/N/4288586282?sort=NEWEST"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

var ErrBlocked = errors.New("listing fetch was blocked by bot protection")
var ErrNoProducts = errors.New("no product names found in listing page")

// Strategy names which rung of the fetch ladder produced the page.
type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategyProxy       Strategy = "proxy"
	StrategyProxyRender Strategy = "proxy_render"
	StrategyCache       Strategy = "cache"
)

type ClientOptions struct {
	// defaults to DefaultListingUrl
	ListingUrl string
	// escalation target for when direct fetches get blocked, nil
	// disables the proxy rungs
	Proxy *scraperapi.Client
	// optional page cache so back-to-back manual runs don't burn
	// proxy credits, nil disables caching
	Cache *badger.DB
	// defaults to DefaultCacheTtl
	CacheTtl time.Duration
}

type Client struct {
	listingUrl *url.URL
	http       *resty.Client
	proxy      *scraperapi.Client
	cache      *pageCache
}

func NewClient(opts ClientOptions) (*Client, error) {
	rawUrl := opts.ListingUrl
	if rawUrl == "" {
		rawUrl = DefaultListingUrl
	}
	listingUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", browserUserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(listingUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	c := &Client{
		listingUrl: listingUrl,
		http:       client,
		proxy:      opts.Proxy,
	}
	if opts.Cache != nil {
		ttl := opts.CacheTtl
		if ttl <= 0 {
			ttl = DefaultCacheTtl
		}
		c.cache = &pageCache{db: opts.Cache, ttl: ttl}
	}
	return c, nil
}

func (c *Client) ListingUrl() string {
	return c.listingUrl.String()
}

// challenge pages the retailer's bot protection serves instead of the
// listing
var blockMarkers = []string{
	"access denied",
	"captcha",
	"pardon our interruption",
	"request unsuccessful",
}

func blockedBody(body []byte) bool {
	return textutil.ContainsAny(string(body), blockMarkers)
}

func looksBlocked(status int, body []byte) bool {
	return status != 200 || blockedBody(body)
}

// Products fetches the listing page and returns the cleaned product
// names on it, along with the strategy that produced the page.
func (c *Client) Products(ctx context.Context) ([]string, Strategy, error) {
	ctx, span := tracer.Start(ctx, "Products")
	defer span.End()

	if c.cache != nil {
		names, err := c.cache.get(ctx, c.listingUrl.String())
		if err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return names, StrategyCache, nil
		}
		if err != errPageNotCached {
			slog.WarnContext(ctx, "listing cache read failed", "err", err)
		}
	}

	body, strategy, err := c.fetchListing(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch listing")
		return nil, strategy, err
	}

	names, err := parseProducts(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse listing")
		return nil, strategy, err
	}

	// a page that fetched clean but parsed empty usually means the
	// markup only materializes in a browser, rendering is the only
	// rung that helps with that
	if len(names) == 0 && c.proxy != nil && strategy != StrategyProxyRender {
		slog.WarnContext(
			ctx, "no products in listing page, retrying with rendering",
			"strategy", string(strategy),
		)
		body, err = c.proxy.Fetch(ctx, c.listingUrl.String(), scraperapi.FetchOptions{Render: true})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rendered retry failed")
			return nil, StrategyProxyRender, err
		}
		strategy = StrategyProxyRender

		names, err = parseProducts(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse rendered listing")
			return nil, strategy, err
		}
	}

	if len(names) == 0 {
		span.SetStatus(codes.Error, "no products found")
		return nil, strategy, ErrNoProducts
	}

	if c.cache != nil {
		err := c.cache.set(ctx, c.listingUrl.String(), body, names)
		if err != nil {
			slog.WarnContext(ctx, "listing cache write failed", "err", err)
		}
	}

	span.SetAttributes(
		attribute.Int("product_count", len(names)),
		attribute.String("strategy", string(strategy)),
	)
	return names, strategy, nil
}

// fetchListing walks the ladder: direct, then through the proxy, then
// through the proxy with browser rendering. Each rung only runs when
// the previous one got blocked.
func (c *Client) fetchListing(ctx context.Context) ([]byte, Strategy, error) {
	ctx, span := tracer.Start(ctx, "fetchListing")
	defer span.End()

	res, directErr := c.http.R().SetContext(ctx).Get(c.listingUrl.String())
	switch {
	case directErr != nil:
		slog.WarnContext(ctx, "direct fetch failed", "err", directErr)
	case looksBlocked(res.StatusCode(), res.Body()):
		slog.WarnContext(ctx, "direct fetch blocked", "status", res.StatusCode())
	default:
		return res.Body(), StrategyDirect, nil
	}

	if c.proxy == nil {
		span.SetStatus(codes.Error, "direct fetch failed, no proxy configured")
		if directErr != nil {
			return nil, StrategyDirect, fmt.Errorf("fetch listing: %w", directErr)
		}
		return nil, StrategyDirect, ErrBlocked
	}

	body, err := c.proxy.Fetch(ctx, c.listingUrl.String(), scraperapi.FetchOptions{})
	if err == nil && !blockedBody(body) {
		return body, StrategyProxy, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "proxy fetch failed", "err", err)
	} else {
		slog.WarnContext(ctx, "proxy fetch still blocked")
	}

	body, err = c.proxy.Fetch(ctx, c.listingUrl.String(), scraperapi.FetchOptions{Render: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rendered proxy fetch failed")
		return nil, StrategyProxyRender, fmt.Errorf("fetch listing through rendering proxy: %w", err)
	}
	if blockedBody(body) {
		span.SetStatus(codes.Error, "rendered proxy fetch blocked")
		return nil, StrategyProxyRender, ErrBlocked
	}
	return body, StrategyProxyRender, nil
}

func parseProducts(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return extractProducts(doc), nil
}
