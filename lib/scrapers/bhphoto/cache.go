package bhphoto

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/url"
	"time"

	"camwatch/lib/timezone"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// long enough to absorb a burst of manual runs, short enough that the
// scheduled loop always sees a fresh listing
const DefaultCacheTtl = time.Minute * 10

var errPageNotCached = badger.ErrKeyNotFound

type listingPage struct {
	Contents []byte
	Names    []string

	ExpiresAt int64
}

type pageCache struct {
	db  *badger.DB
	ttl time.Duration
}

func (c pageCache) key(listingUrl string) (string, error) {
	parsed, err := url.Parse(listingUrl)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		parsed,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return "listing:" + normalized, nil
}

func (c pageCache) get(ctx context.Context, listingUrl string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()

	key, err := c.key(listingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	tx := c.db.NewTransaction(false)
	defer tx.Discard()
	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return nil, errPageNotCached
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return nil, err
	}

	decoder := gob.NewDecoder(bytes.NewBuffer(serialized))

	var cached listingPage
	err = decoder.Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return nil, err
	}

	if timezone.Now().Unix() >= cached.ExpiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(
			attribute.String("key", key),
		))

		tx := c.db.NewTransaction(true)
		defer tx.Commit()

		err = tx.Delete([]byte(key))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
			return nil, errPageNotCached
		}

		span.SetStatus(codes.Ok, "CACHE EXPIRED")
		return nil, errPageNotCached
	}

	span.AddEvent(
		"successfully returned cached listing",
		trace.WithAttributes(
			attribute.Int("contentlength", len(cached.Contents)),
			attribute.Int("namecount", len(cached.Names)),
		),
	)

	return cached.Names, nil
}

func (c pageCache) set(ctx context.Context, listingUrl string, contents []byte, names []string) error {
	ctx, span := tracer.Start(ctx, "cache:set")
	defer span.End()

	key, err := c.key(listingUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	encoder := gob.NewEncoder(serialized)
	err = encoder.Encode(listingPage{
		Contents:  contents,
		Names:     names,
		ExpiresAt: timezone.Now().Add(c.ttl).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize listing page")
		return err
	}

	tx := c.db.NewTransaction(true)
	defer tx.Commit()

	err = tx.Set([]byte(key), serialized.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}

	return nil
}
