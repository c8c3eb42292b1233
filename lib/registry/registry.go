package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"camwatch/lib/telemetry"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("camwatch.lib.registry")

// Snapshot is the persisted registry document. Field names are part of
// the on-disk format, older deployments read the same file.
type Snapshot struct {
	Cameras      []string   `json:"cameras"`
	LastUpdated  *time.Time `json:"last_updated"`
	TotalTracked int        `json:"total_cameras_tracked"`
}

// Store reads and rewrites the registry file wholesale. The registry
// only ever grows: names are merged in, never removed.
type Store struct {
	path string
}

func NewStore(path string) Store {
	return Store{path: path}
}

func (s Store) Path() string {
	return s.path
}

func (s Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the registry. A missing file is a first run and yields an
// empty snapshot, not an error.
func (s Store) Load(ctx context.Context) (Snapshot, error) {
	_, span := tracer.Start(ctx, "Load")
	defer span.End()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Snapshot{Cameras: []string{}}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read registry")
		return Snapshot{}, err
	}

	var snapshot Snapshot
	err = json.Unmarshal(raw, &snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse registry")
		return Snapshot{}, fmt.Errorf("parse registry %s: %w", s.path, err)
	}
	if snapshot.Cameras == nil {
		snapshot.Cameras = []string{}
	}
	return snapshot, nil
}

// Save rewrites the registry. TotalTracked is derived from the name
// list, whatever the caller set is overwritten. The document goes to a
// temp file first then renames over the target so a crash cannot leave
// a torn file behind.
func (s Store) Save(ctx context.Context, snapshot Snapshot) error {
	_, span := tracer.Start(ctx, "Save")
	defer span.End()

	if snapshot.Cameras == nil {
		snapshot.Cameras = []string{}
	}
	snapshot.TotalTracked = len(snapshot.Cameras)

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create registry directory")
		return err
	}

	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, raw, 0644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write registry")
		return err
	}
	err = os.Rename(tmp, s.path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace registry")
		return err
	}
	return nil
}

// Diff reports the names in current that previous has not seen, sorted.
// Both arguments are treated as sets, duplicates carry no weight.
func Diff(previous, current []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, name := range previous {
		seen[name] = struct{}{}
	}

	fresh := make([]string, 0)
	for _, name := range current {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		fresh = append(fresh, name)
	}
	slices.Sort(fresh)
	return fresh
}

// Union merges the current scrape into the registry set, sorted.
func Union(previous, current []string) []string {
	merged := make(map[string]struct{}, len(previous)+len(current))
	for _, name := range previous {
		merged[name] = struct{}{}
	}
	for _, name := range current {
		merged[name] = struct{}{}
	}

	out := make([]string, 0, len(merged))
	for name := range merged {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
