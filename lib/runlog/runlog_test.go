package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"camwatch/lib/runlog/db"
	"camwatch/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "lib/runlog",
		DbSchema: db.Schema,
	})
	defer cleanup()
	store := NewStore(res.DB)
	ctx := context.Background()

	_, found, err := store.Last(ctx)
	require.Nil(t, err)
	require.False(t, found)

	first := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	err = store.Record(ctx, RecordRequest{
		Time:         first,
		Strategy:     "direct",
		SeenCount:    12,
		TotalTracked: 12,
		Discovered:   []string{"Sony a7 IV", "Canon EOS R5 Mark II"},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = store.Record(ctx, RecordRequest{
		Time:     first.Add(time.Hour),
		Strategy: "proxy",
		Err:      errors.New("listing fetch was blocked by bot protection"),
	})
	if err != nil {
		t.Fatal(err)
	}

	last, found, err := store.Last(ctx)
	require.Nil(t, err)
	require.True(t, found)
	require.Equal(t, "proxy", last.Strategy)
	require.Equal(t, "listing fetch was blocked by bot protection", last.Err)
	require.False(t, last.Ok())
	require.Equal(t, first.Add(time.Hour).Unix(), last.Time.Unix())

	runs, err := store.Recent(ctx, 10)
	require.Nil(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "proxy", runs[0].Strategy)
	require.Equal(t, "direct", runs[1].Strategy)
	require.Equal(t, 2, runs[1].NewCount)
	require.Equal(t, 12, runs[1].SeenCount)
	require.True(t, runs[1].Ok())

	names, err := store.Discoveries(ctx, runs[1].Id)
	require.Nil(t, err)
	require.Equal(t, []string{"Canon EOS R5 Mark II", "Sony a7 IV"}, names)

	limited, err := store.Recent(ctx, 1)
	require.Nil(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, "proxy", limited[0].Strategy)
}
