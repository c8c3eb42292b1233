package bhphoto

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	devenv "camwatch/dev/env"
	"camwatch/lib/scraperapi"
	"camwatch/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const listingFixture = `<!DOCTYPE html>
<html>
<body>
<div class="product-listing">
	<h3 data-selenium="miniProductPageProductName">Canon EOS R5 Mark II Mirrorless Camera</h3>
	<h3 data-selenium="miniProductPageProductName">Sony a7 IV Mirrorless Camera</h3>
	<h3 data-selenium="miniProductPageProductName">Nikon Z6 III Mirrorless Camera</h3>
</div>
</body>
</html>`

var fixtureNames = []string{
	"Canon EOS R5 Mark II Mirrorless Camera",
	"Sony a7 IV Mirrorless Camera",
	"Nikon Z6 III Mirrorless Camera",
}

func newProxyClient(t *testing.T, handler http.HandlerFunc) *scraperapi.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	proxy, err := scraperapi.NewClient(scraperapi.ClientOptions{
		BaseUrl: server.URL,
		ApiKey:  "test-key",
	})
	if err != nil {
		t.Fatal(err)
	}
	return proxy
}

func TestProductsDirect(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, listingFixture)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{ListingUrl: server.URL + "/c/products/Digital-Cameras"})
	if err != nil {
		t.Fatal(err)
	}

	names, strategy, err := client.Products(context.Background())
	require.Nil(t, err)
	require.Equal(t, StrategyDirect, strategy)
	require.Equal(t, 1, hits)
	diff := cmp.Diff(fixtureNames, names)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestProductsProxyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html>Access Denied</html>")
	}))
	defer server.Close()
	listingUrl := server.URL + "/c/products/Digital-Cameras"

	var gotTarget, gotRender string
	proxy := newProxyClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTarget = r.URL.Query().Get("url")
		gotRender = r.URL.Query().Get("render")
		fmt.Fprint(w, listingFixture)
	})

	client, err := NewClient(ClientOptions{ListingUrl: listingUrl, Proxy: proxy})
	if err != nil {
		t.Fatal(err)
	}

	names, strategy, err := client.Products(context.Background())
	require.Nil(t, err)
	require.Equal(t, StrategyProxy, strategy)
	require.Equal(t, listingUrl, gotTarget)
	require.Equal(t, "", gotRender)
	diff := cmp.Diff(fixtureNames, names)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestProductsProxyBlockedEscalatesToRender(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html>Access Denied</html>")
	}))
	defer server.Close()

	proxyHits := 0
	proxy := newProxyClient(t, func(w http.ResponseWriter, r *http.Request) {
		proxyHits++
		if r.URL.Query().Get("render") != "true" {
			// the plain proxy rung still hits the challenge page
			fmt.Fprint(w, "<html>please solve this captcha</html>")
			return
		}
		fmt.Fprint(w, listingFixture)
	})

	client, err := NewClient(ClientOptions{
		ListingUrl: server.URL + "/c/products/Digital-Cameras",
		Proxy:      proxy,
	})
	if err != nil {
		t.Fatal(err)
	}

	names, strategy, err := client.Products(context.Background())
	require.Nil(t, err)
	require.Equal(t, StrategyProxyRender, strategy)
	require.Equal(t, 2, proxyHits)
	diff := cmp.Diff(fixtureNames, names)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestProductsRenderRetryWhenEmpty(t *testing.T) {
	// the page fetches clean but only materializes products after
	// javascript runs
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="app"></div></body></html>`)
	}))
	defer server.Close()

	var gotRender string
	proxy := newProxyClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRender = r.URL.Query().Get("render")
		fmt.Fprint(w, listingFixture)
	})

	client, err := NewClient(ClientOptions{
		ListingUrl: server.URL + "/c/products/Digital-Cameras",
		Proxy:      proxy,
	})
	if err != nil {
		t.Fatal(err)
	}

	names, strategy, err := client.Products(context.Background())
	require.Nil(t, err)
	require.Equal(t, StrategyProxyRender, strategy)
	require.Equal(t, "true", gotRender)
	diff := cmp.Diff(fixtureNames, names)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestProductsBlockedWithoutProxy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html>Access Denied</html>")
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{ListingUrl: server.URL + "/c/products/Digital-Cameras"})
	if err != nil {
		t.Fatal(err)
	}

	_, strategy, err := client.Products(context.Background())
	require.ErrorIs(t, err, ErrBlocked)
	require.Equal(t, StrategyDirect, strategy)
}

func TestProductsNoProductsWithoutProxy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div id="app"></div></body></html>`)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{ListingUrl: server.URL + "/c/products/Digital-Cameras"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = client.Products(context.Background())
	require.ErrorIs(t, err, ErrNoProducts)
}

func TestProductsCache(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, listingFixture)
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		ListingUrl: server.URL + "/c/products/Digital-Cameras",
		Cache:      db,
		CacheTtl:   time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	names, strategy, err := client.Products(ctx)
	require.Nil(t, err)
	require.Equal(t, StrategyDirect, strategy)
	require.Equal(t, 1, hits)

	cached, strategy, err := client.Products(ctx)
	require.Nil(t, err)
	require.Equal(t, StrategyCache, strategy)
	require.Equal(t, 1, hits)
	diff := cmp.Diff(names, cached)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestProductsLive(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/bhphoto")
	defer cleanup()

	config, err := devenv.GetStateConfig[devenv.ListingTestConfig]("bhphoto.json5")
	if err != nil {
		t.Skip("skipping test because no valid test config was found at dev/.state/bhphoto.json5")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*3)
	defer cancel()

	var proxy *scraperapi.Client
	if config.ScraperApiKey != "" {
		proxy, err = scraperapi.NewClient(scraperapi.ClientOptions{ApiKey: config.ScraperApiKey})
		if err != nil {
			t.Fatal(err)
		}
	}

	client, err := NewClient(ClientOptions{ListingUrl: config.ListingUrl, Proxy: proxy})
	if err != nil {
		t.Fatal(err)
	}

	names, strategy, err := client.Products(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.NotEmpty(t, names)

	t.Logf("got %d products via %s", len(names), strategy)
	for _, name := range names {
		t.Log(name)
	}
}
