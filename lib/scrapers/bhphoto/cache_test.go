package bhphoto

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var db *badger.DB

func init() {
	var err error
	db, err = badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		panic(err)
	}
}

func TestCacheKey(t *testing.T) {
	cache := pageCache{}

	key := func(rawUrl string) string {
		k, err := cache.key(rawUrl)
		if err != nil {
			t.Fatal(err)
		}
		return k
	}

	base := key("https://www.bhphotovideo.com/c/products/Digital-Cameras/ci/9811?sort=NEWEST&view=grid")
	require.True(t, strings.HasPrefix(base, "listing:"))

	// cosmetic variants of the same page must share one cache entry
	require.Equal(t, base, key("https://www.bhphotovideo.com/c/products/Digital-Cameras/ci/9811?view=grid&sort=NEWEST"))
	require.Equal(t, base, key("https://www.bhphotovideo.com/c/products/Digital-Cameras/ci/9811?sort=NEWEST&view=grid#page-top"))

	// a different category page must not
	require.NotEqual(t, base, key("https://www.bhphotovideo.com/c/products/Lenses/ci/9812?sort=NEWEST&view=grid"))

	require.Equal(t,
		key("https://www.bhphotovideo.com/index.html"),
		key("https://www.bhphotovideo.com/"),
	)
}

func TestCache(t *testing.T) {
	cache := pageCache{db: db, ttl: time.Minute}
	ctx := context.Background()

	listingUrl := "https://www.bhphotovideo.com/c/products/Digital-Cameras/ci/9811?sort=NEWEST"

	_, err := cache.get(ctx, listingUrl)
	require.Equal(t, errPageNotCached, err)

	names := []string{"Canon EOS R5", "Sony a7 IV"}
	err = cache.set(ctx, listingUrl, []byte("<html>listing</html>"), names)
	require.Nil(t, err)

	_, err = cache.get(ctx, "https://www.bhphotovideo.com/c/products/Lenses/ci/9812")
	require.Equal(t, errPageNotCached, err)

	cached, err := cache.get(ctx, listingUrl)
	require.Nil(t, err)
	diff := cmp.Diff(names, cached)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestCacheExpiry(t *testing.T) {
	// negative ttl writes an already-expired entry
	cache := pageCache{db: db, ttl: -time.Second}
	ctx := context.Background()

	listingUrl := "https://www.bhphotovideo.com/c/products/expired"
	err := cache.set(ctx, listingUrl, []byte("<html></html>"), []string{"Nikon Z6 III"})
	require.Nil(t, err)

	_, err = cache.get(ctx, listingUrl)
	require.Equal(t, errPageNotCached, err)

	// the expired entry got deleted, not just skipped
	_, err = cache.get(ctx, listingUrl)
	require.Equal(t, errPageNotCached, err)
}
