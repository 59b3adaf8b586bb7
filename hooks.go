package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// loadAndExecSQLFiles reads each SQL file, expands {{database}}, and executes
// every statement on the target. With exec == nil the files are only read and
// counted, which is what plan does.
func loadAndExecSQLFiles(ctx context.Context, exec sqlExecer, cfg *SyncConfig, dbName string, files []string, phase string) error {
	if len(files) == 0 {
		return nil
	}
	log.Printf("  running %s hooks (%d files)...", phase, len(files))

	for _, f := range files {
		path := cfg.resolvePath(f)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("hook %s: read %s: %w", phase, f, err)
		}

		sql := strings.ReplaceAll(string(data), "{{database}}", dbName)
		stmts := splitStatements(sql)

		if exec == nil {
			log.Printf("    %s: %d statements (skipped, dry run)", f, len(stmts))
			continue
		}
		log.Printf("    %s: %d statements", f, len(stmts))
		for i, stmt := range stmts {
			if _, err := exec.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("hook %s: %s: statement %d: %w\nSQL: %s", phase, f, i+1, err, stmt)
			}
		}
	}
	return nil
}

// splitStatements splits MySQL script text on semicolons. Semicolons inside
// quoted strings or identifiers ('', "", ``) and in -- or # comments are not
// separators. A doubled quote character inside a quoted span is an escape.
// Empty statements are dropped; comments are kept with their statement.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	var quote byte
	inComment := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" && !isCommentOnly(s) {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case inComment:
			current.WriteByte(c)
			if c == '\n' {
				inComment = false
			}
		case quote != 0:
			current.WriteByte(c)
			if c == '\\' && quote != '`' && i+1 < len(sql) {
				i++
				current.WriteByte(sql[i])
			} else if c == quote {
				if i+1 < len(sql) && sql[i+1] == quote {
					i++
					current.WriteByte(sql[i])
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
			current.WriteByte(c)
		case c == '#' || (c == '-' && strings.HasPrefix(sql[i:], "-- ")):
			inComment = true
			current.WriteByte(c)
		case c == ';':
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return stmts
}

// isCommentOnly reports whether every line of s is a comment.
func isCommentOnly(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") && !strings.HasPrefix(line, "#") {
			return false
		}
	}
	return true
}
