package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
)

// sqlExecer is the subset of *sql.DB the executor needs.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqlExecutor runs statements on the target database.
type sqlExecutor struct {
	db sqlExecer
}

func (e *sqlExecutor) Exec(ctx context.Context, stmt Statement) error {
	if stmt.IsNoOp() {
		return nil
	}
	if _, err := e.db.ExecContext(ctx, stmt.SQL); err != nil {
		return fmt.Errorf("%s %s: %w\nSQL: %s", stmt.Kind, stmt.Table, err, stmt.SQL)
	}
	return nil
}

// planExecutor accepts every statement without running it. Used by plan,
// which prints the statements from the outcomes afterwards.
type planExecutor struct{}

func (planExecutor) Exec(context.Context, Statement) error { return nil }

// writePlan prints the statements of a run in catalog order. Failed tables
// are listed as comments.
func writePlan(w io.Writer, outcomes []Outcome) error {
	for _, o := range outcomes {
		var err error
		switch {
		case o.Status == StatusFailed:
			_, err = fmt.Fprintf(w, "-- %s: FAILED: %v\n\n", o.Table, o.Err)
		case o.Statement.IsNoOp():
			continue
		default:
			_, err = fmt.Fprintf(w, "-- %s: %s\n%s;\n\n", o.Table, o.Status, o.Statement.SQL)
		}
		if err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}
	return nil
}
