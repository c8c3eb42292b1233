package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"camwatch/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	cases := []struct {
		name     string
		previous []string
		current  []string
		expect   []string
	}{
		{
			name:     "new model shows up",
			previous: []string{"Sony A7IV"},
			current:  []string{"Sony A7IV", "Canon R5"},
			expect:   []string{"Canon R5"},
		},
		{
			name:     "both empty",
			previous: []string{},
			current:  []string{},
			expect:   []string{},
		},
		{
			name:     "first run counts everything",
			previous: []string{},
			current:  []string{"Nikon Z6 III", "FUJIFILM X100VI"},
			expect:   []string{"FUJIFILM X100VI", "Nikon Z6 III"},
		},
		{
			name:     "removed listings are not new",
			previous: []string{"Sony A7IV", "Canon R5"},
			current:  []string{"Sony A7IV"},
			expect:   []string{},
		},
		{
			name:     "duplicates carry no weight",
			previous: []string{"Sony A7IV"},
			current:  []string{"Canon R5", "Canon R5", "Sony A7IV"},
			expect:   []string{"Canon R5"},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expect, Diff(test.previous, test.current))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	cases := []struct {
		name     string
		previous []string
		current  []string
		expect   []string
	}{
		{
			name:     "merge keeps removed listings",
			previous: []string{"Sony A7IV"},
			current:  []string{"Canon R5"},
			expect:   []string{"Canon R5", "Sony A7IV"},
		},
		{
			name:     "empty scrape changes nothing",
			previous: []string{"Sony A7IV"},
			current:  []string{},
			expect:   []string{"Sony A7IV"},
		},
		{
			name:     "both empty",
			previous: []string{},
			current:  []string{},
			expect:   []string{},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expect, Union(test.previous, test.current))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

// rerunning the same scrape against the merged registry must find
// nothing new
func TestDiffIdempotent(t *testing.T) {
	previous := []string{"Sony A7IV"}
	current := []string{"Sony A7IV", "Canon R5", "Nikon Z6 III"}

	merged := Union(previous, current)
	require.Empty(t, Diff(merged, current))

	diff := cmp.Diff(merged, Union(merged, current))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:registry")
	defer cleanup()
	ctx := context.Background()

	store := NewStore(filepath.Join(t.TempDir(), "data", "cameras.json"))

	{
		require.False(t, store.Exists())
		snapshot, err := store.Load(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, snapshot.Cameras)
		require.Nil(t, snapshot.LastUpdated)
	}
	{
		now := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
		err := store.Save(ctx, Snapshot{
			Cameras:     []string{"Canon R5", "Sony A7IV"},
			LastUpdated: &now,
		})
		if err != nil {
			t.Fatal(err)
		}
		require.True(t, store.Exists())

		snapshot, err := store.Load(ctx)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []string{"Canon R5", "Sony A7IV"}, snapshot.Cameras)
		require.Equal(t, 2, snapshot.TotalTracked)
		require.NotNil(t, snapshot.LastUpdated)
		require.True(t, now.Equal(*snapshot.LastUpdated))
	}
}

func TestStoreFieldNames(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cameras.json")
	store := NewStore(path)

	err := store.Save(ctx, Snapshot{Cameras: []string{"Sony A7IV"}})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	// on-disk field names are load-bearing, older deployments read them
	require.Contains(t, doc, "cameras")
	require.Contains(t, doc, "last_updated")
	require.Contains(t, doc, "total_cameras_tracked")
	require.Nil(t, doc["last_updated"])
	require.EqualValues(t, 1, doc["total_cameras_tracked"])
}

func TestStoreInitializesEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "cameras.json"))

	err := store.Save(ctx, Snapshot{})
	if err != nil {
		t.Fatal(err)
	}

	snapshot, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []string{}, snapshot.Cameras)
	require.Equal(t, 0, snapshot.TotalTracked)
	require.Nil(t, snapshot.LastUpdated)
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cameras.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewStore(path).Load(ctx)
	require.Error(t, err)
}

func TestSignalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_cameras.txt")

	{
		err := WriteSignalFile(path, []string{"Canon R5", "Nikon Z6 III"})
		if err != nil {
			t.Fatal(err)
		}
		names, err := ReadSignalFile(path)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []string{"Canon R5", "Nikon Z6 III"}, names)
	}
	{
		// no new names truncates rather than leaving a stale list
		err := WriteSignalFile(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		names, err := ReadSignalFile(path)
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, names)

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		require.Empty(t, raw)
	}
}

func TestSignalFileConsume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new_cameras.txt")
	require.NoError(t, WriteSignalFile(path, []string{"Canon R5"}))

	require.NoError(t, ConsumeSignalFile(path))

	names, err := ReadSignalFile(path)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestSignalFileMissing(t *testing.T) {
	_, err := ReadSignalFile(filepath.Join(t.TempDir(), "new_cameras.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
