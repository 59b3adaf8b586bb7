package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const sqliteHistoryDDL = `CREATE TABLE IF NOT EXISTS sync_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  version TEXT NOT NULL,
  table_name TEXT NOT NULL,
  status TEXT NOT NULL,
  error_kind TEXT NOT NULL DEFAULT '',
  detail TEXT NOT NULL DEFAULT '',
  statement TEXT NOT NULL DEFAULT '',
  columns_added INTEGER NOT NULL DEFAULT 0,
  columns_changed INTEGER NOT NULL DEFAULT 0,
  indexes_added INTEGER NOT NULL DEFAULT 0,
  recorded_at TEXT NOT NULL
)`

// sqliteReporter appends outcomes to a local SQLite history file.
type sqliteReporter struct {
	db  *sql.DB
	run runInfo
	now func() time.Time
}

func openSQLiteReporter(ctx context.Context, path string, run runInfo) (*sqliteReporter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteHistoryDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite history table: %w", err)
	}
	return &sqliteReporter{db: db, run: run, now: time.Now}, nil
}

func (r *sqliteReporter) Report(ctx context.Context, o Outcome) error {
	rec := newHistoryRecord(r.run, o, r.now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_history
		 (run_id, version, table_name, status, error_kind, detail, statement,
		  columns_added, columns_changed, indexes_added, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Version, rec.Table, rec.Status, rec.ErrorKind, rec.Detail, rec.Statement,
		rec.ColumnsAdded, rec.ColumnsChanged, rec.IndexesAdded, rec.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite history: %w", err)
	}
	return nil
}

func (r *sqliteReporter) Close() error {
	return r.db.Close()
}
