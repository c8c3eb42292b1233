package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "camwatch/dev/env"
	runlogdb "camwatch/lib/runlog/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

func createDb(filename, schema string) error {
	dbpath, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(dbpath)
	if err == nil {
		fmt.Println("database already created at", dbpath)
		return nil
	}

	fmt.Println("creating database at", dbpath)
	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyRunlogDB() error {
	return createDb("runlog.db", runlogdb.Schema)
}

func PrintConfigLocations() {
	slog.Info("live tests read their config files from dev/.state/..., look at the skip messages of `go test -v` to see which file each test expects.")
}
