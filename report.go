package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"
)

// runInfo identifies one invocation in the history sinks.
type runInfo struct {
	ID      string
	Version string
	Started time.Time
}

func newRunInfo(now time.Time) runInfo {
	return runInfo{
		ID:      now.UTC().Format("20060102T150405Z") + "-" + strconv.FormatInt(int64(now.Nanosecond()), 36),
		Version: versionString(),
		Started: now,
	}
}

// describeOutcome renders an outcome as one human-readable line.
func describeOutcome(o Outcome) string {
	switch o.Status {
	case StatusAltered:
		return fmt.Sprintf("%s: altered (%s)", o.Table, o.Summary)
	case StatusFailed:
		kind := string(o.Kind())
		if kind == "" {
			kind = "error"
		}
		return fmt.Sprintf("%s: failed (%s): %v", o.Table, kind, o.Err)
	default:
		return fmt.Sprintf("%s: %s", o.Table, o.Status)
	}
}

// logReporter writes one log line per table.
type logReporter struct{}

func (logReporter) Report(_ context.Context, o Outcome) error {
	if o.Status == StatusFailed {
		log.Printf("  ERROR: %s", describeOutcome(o))
	} else {
		log.Printf("  %s", describeOutcome(o))
	}
	for _, w := range o.Warnings {
		log.Printf("    WARN: %s", w)
	}
	return nil
}

// multiReporter fans each outcome out to every sink. All sinks are tried even
// when one fails.
type multiReporter []Reporter

func (m multiReporter) Report(ctx context.Context, o Outcome) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// historyRecord is the row the persistent sinks store per outcome.
type historyRecord struct {
	RunID          string
	Version        string
	Table          string
	Status         string
	ErrorKind      string
	Detail         string
	Statement      string
	ColumnsAdded   int
	ColumnsChanged int
	IndexesAdded   int
	RecordedAt     time.Time
}

func newHistoryRecord(run runInfo, o Outcome, now time.Time) historyRecord {
	rec := historyRecord{
		RunID:          run.ID,
		Version:        run.Version,
		Table:          o.Table,
		Status:         string(o.Status),
		ErrorKind:      string(o.Kind()),
		Statement:      o.Statement.SQL,
		ColumnsAdded:   o.Summary.ColumnsAdded,
		ColumnsChanged: o.Summary.ColumnsChanged,
		IndexesAdded:   o.Summary.IndexesAdded,
		RecordedAt:     now.UTC(),
	}
	if o.Err != nil {
		rec.Detail = o.Err.Error()
	}
	return rec
}

// openReporters builds the configured sinks. The returned close function
// releases their connections.
func openReporters(ctx context.Context, cfg ReportConfig, run runInfo, resolve func(string) string) (Reporter, func(), error) {
	var sinks multiReporter
	var closers []func()
	closeAll := func() {
		for _, c := range slices.Backward(closers) {
			c()
		}
	}

	for _, name := range cfg.Sinks {
		switch name {
		case "log":
			sinks = append(sinks, logReporter{})
		case "sqlite":
			r, err := openSQLiteReporter(ctx, resolve(cfg.SQLitePath), run)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, r)
			closers = append(closers, func() { r.Close() })
		case "postgres":
			r, err := openPostgresReporter(ctx, cfg.PostgresDSN, cfg.PostgresSchema, run)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, r)
			closers = append(closers, r.Close)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unsupported report sink %q", name)
		}
	}
	return sinks, closeAll, nil
}
