// Package watch runs the scrape-diff-persist cycle against the
// camera listing.
package watch

import (
	"context"
	"log/slog"
	"time"

	"camwatch/lib/registry"
	"camwatch/lib/runlog"
	"camwatch/lib/scrapers/bhphoto"
	"camwatch/lib/telemetry"
	"camwatch/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("camwatch.services.watch")

// Scraper yields the product names currently on the listing page.
type Scraper interface {
	Products(ctx context.Context) ([]string, bhphoto.Strategy, error)
}

type Options struct {
	Scraper    Scraper
	Registry   registry.Store
	Runs       runlog.Store
	SignalFile string
}

type Service struct {
	scraper    Scraper
	registry   registry.Store
	runs       runlog.Store
	signalFile string
}

func NewService(opts Options) Service {
	return Service{
		scraper:    opts.Scraper,
		registry:   opts.Registry,
		runs:       opts.Runs,
		signalFile: opts.SignalFile,
	}
}

// Report summarizes one watch run.
type Report struct {
	Time     time.Time
	Strategy bhphoto.Strategy
	// product names on the page this run
	Seen int
	// names never seen before
	New []string
	// registry size after the run
	Total int
	// true when this run created the registry file
	Initialized bool
}

// Run performs one watch invocation: scrape the listing, diff against
// the registry, persist the merged set and leave the newly discovered
// names in the signal file. A failed scrape records the run and
// returns with the registry untouched.
func (s Service) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	report := Report{Time: timezone.Now()}

	current, strategy, err := s.scraper.Products(ctx)
	report.Strategy = strategy
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		slog.ErrorContext(
			ctx, "scrape failed, registry left untouched",
			"err", err, "strategy", string(strategy),
		)
		s.recordRun(ctx, report, err)

		if !s.registry.Exists() {
			// first run only, later failures never touch the file
			initErr := s.registry.Save(ctx, registry.Snapshot{})
			if initErr != nil {
				slog.ErrorContext(ctx, "failed to initialize registry", "err", initErr)
			} else {
				report.Initialized = true
			}
		}
		return report, err
	}
	report.Seen = len(current)

	snapshot, err := s.registry.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load registry")
		s.recordRun(ctx, report, err)
		return report, err
	}

	fresh := registry.Diff(snapshot.Cameras, current)
	merged := registry.Union(snapshot.Cameras, current)

	now := report.Time
	err = s.registry.Save(ctx, registry.Snapshot{
		Cameras:     merged,
		LastUpdated: &now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save registry")
		s.recordRun(ctx, report, err)
		return report, err
	}

	err = registry.WriteSignalFile(s.signalFile, fresh)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write signal file")
		s.recordRun(ctx, report, err)
		return report, err
	}

	report.New = fresh
	report.Total = len(merged)

	span.SetAttributes(
		attribute.Int("seen", report.Seen),
		attribute.Int("new", len(fresh)),
		attribute.Int("total", report.Total),
		attribute.String("strategy", string(strategy)),
	)
	if len(fresh) > 0 {
		slog.InfoContext(
			ctx, "new cameras discovered",
			"count", len(fresh), "total", report.Total, "strategy", string(strategy),
		)
	} else {
		slog.InfoContext(
			ctx, "no new cameras",
			"seen", report.Seen, "strategy", string(strategy),
		)
	}

	s.recordRun(ctx, report, nil)
	return report, nil
}

// recordRun is best-effort, a broken run log never fails the run
// itself.
func (s Service) recordRun(ctx context.Context, report Report, runErr error) {
	err := s.runs.Record(ctx, runlog.RecordRequest{
		Time:         report.Time,
		Strategy:     string(report.Strategy),
		SeenCount:    report.Seen,
		TotalTracked: report.Total,
		Discovered:   report.New,
		Err:          runErr,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record run", "err", err)
	}
}
