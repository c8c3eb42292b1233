// Package runlog keeps a history of watch runs in sqlite so failed
// scrapes and discovery counts stay inspectable after the fact.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"camwatch/lib/runlog/db"
	"camwatch/lib/timezone"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type Run struct {
	Id       int64
	Time     time.Time
	Strategy string
	// how many products the listing page had
	SeenCount int
	// how many of those had never been seen before
	NewCount int
	// registry size after the run
	TotalTracked int
	// empty when the run succeeded
	Err string
}

func (r Run) Ok() bool {
	return r.Err == ""
}

type RecordRequest struct {
	Time         time.Time
	Strategy     string
	SeenCount    int
	TotalTracked int
	Discovered   []string
	Err          error
}

// Record writes one run and its discovered names in a single
// transaction.
func (s Store) Record(ctx context.Context, req RecordRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	var errText sql.NullString
	if req.Err != nil {
		errText = sql.NullString{String: req.Err.Error(), Valid: true}
	}

	runId, err := txqry.CreateRun(ctx, db.CreateRunParams{
		Time:         req.Time.Unix(),
		Strategy:     req.Strategy,
		SeenCount:    int64(req.SeenCount),
		NewCount:     int64(len(req.Discovered)),
		TotalTracked: int64(req.TotalTracked),
		Error:        errText,
	})
	if err != nil {
		return err
	}

	for _, name := range req.Discovered {
		err := txqry.CreateRunDiscovery(ctx, db.CreateRunDiscoveryParams{
			RunID: runId,
			Name:  name,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func fromRow(row db.Run) Run {
	return Run{
		Id:           row.ID,
		Time:         time.Unix(row.Time, 0).In(timezone.Location),
		Strategy:     row.Strategy,
		SeenCount:    int(row.SeenCount),
		NewCount:     int(row.NewCount),
		TotalTracked: int(row.TotalTracked),
		Err:          row.Error.String,
	}
}

// Recent returns up to limit runs, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.qry.GetRecentRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	runs := make([]Run, len(rows))
	for i, row := range rows {
		runs[i] = fromRow(row)
	}
	return runs, nil
}

// Last returns the most recent run, reporting found=false when the
// store has never recorded one.
func (s Store) Last(ctx context.Context) (Run, bool, error) {
	row, err := s.qry.GetLastRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return fromRow(row), true, nil
}

// Discoveries returns the names first seen by the given run, sorted
// alphabetically.
func (s Store) Discoveries(ctx context.Context, runId int64) ([]string, error) {
	return s.qry.GetRunDiscoveries(ctx, runId)
}
