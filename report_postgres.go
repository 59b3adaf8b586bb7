package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgExecutor is the subset of *pgxpool.Pool the audit sink needs.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// postgresReporter appends outcomes to a central PostgreSQL audit table,
// so many target databases can share one history.
type postgresReporter struct {
	exec   pgExecutor
	schema string
	run    runInfo
	now    func() time.Time
	close  func()
}

func openPostgresReporter(ctx context.Context, dsn, schema string, run runInfo) (*postgresReporter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	r := newPostgresReporter(pool, schema, run)
	r.close = pool.Close
	if err := r.prepare(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func newPostgresReporter(exec pgExecutor, schema string, run runInfo) *postgresReporter {
	return &postgresReporter{exec: exec, schema: schema, run: run, now: time.Now}
}

func (r *postgresReporter) table() string {
	return pgIdent(r.schema) + ".schemasync_history"
}

// prepare creates the audit schema and table when missing.
func (r *postgresReporter) prepare(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgIdent(r.schema)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id bigserial PRIMARY KEY,
  run_id text NOT NULL,
  version text NOT NULL,
  table_name text NOT NULL,
  status text NOT NULL,
  error_kind text NOT NULL DEFAULT '',
  detail text NOT NULL DEFAULT '',
  statement text NOT NULL DEFAULT '',
  columns_added integer NOT NULL DEFAULT 0,
  columns_changed integer NOT NULL DEFAULT 0,
  indexes_added integer NOT NULL DEFAULT 0,
  recorded_at timestamptz NOT NULL
)`, r.table()),
	}
	for _, q := range stmts {
		if _, err := r.exec.Exec(ctx, q); err != nil {
			return fmt.Errorf("prepare postgres history: %w\nSQL: %s", err, q)
		}
	}
	return nil
}

func (r *postgresReporter) Report(ctx context.Context, o Outcome) error {
	rec := newHistoryRecord(r.run, o, r.now())
	q := fmt.Sprintf(`INSERT INTO %s
 (run_id, version, table_name, status, error_kind, detail, statement,
  columns_added, columns_changed, indexes_added, recorded_at)
 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, r.table())
	if _, err := r.exec.Exec(ctx, q,
		rec.RunID, rec.Version, rec.Table, rec.Status, rec.ErrorKind, rec.Detail, rec.Statement,
		rec.ColumnsAdded, rec.ColumnsChanged, rec.IndexesAdded, rec.RecordedAt,
	); err != nil {
		return fmt.Errorf("postgres history: %w", err)
	}
	return nil
}

func (r *postgresReporter) Close() {
	if r.close != nil {
		r.close()
	}
}
