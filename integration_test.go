//go:build integration

package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const integrationCatalog = `
[[table]]
name = "it_teams"
  [[table.column]]
  name = "id"
  type = "int"
  unsigned = true
  auto_increment = true
  [[table.column]]
  name = "name"
  type = "varchar"
  size = 64
  [[table.index]]
  kind = "primary"
  columns = ["id"]
  [[table.index]]
  kind = "unique"
  columns = ["name"]

[[table]]
name = "it_users"
  [[table.column]]
  name = "id"
  type = "bigint"
  unsigned = true
  auto_increment = true
  [[table.column]]
  name = "email"
  type = "varchar"
  size = 191
  [[table.column]]
  name = "bio"
  type = "text"
  nullable = true
  [[table.column]]
  name = "score"
  type = "smallint"
  default = 0
  [[table.column]]
  name = "team_id"
  type = "int"
  unsigned = true
  nullable = true
  [[table.index]]
  kind = "primary"
  columns = ["id"]
  [[table.index]]
  kind = "unique"
  columns = ["email"]
  [[table.index]]
  columns = ["score", "bio(20)"]
  [[table.constraint]]
  column = "team_id"
  references = "it_teams.id"
`

func integrationTarget(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN env var required")
	}
	db, dbName, err := openMySQLTarget(dsn)
	if err != nil {
		t.Fatalf("open target: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Ping(); err != nil {
		t.Fatalf("ping target: %v", err)
	}
	dropIntegrationTables(t, db)
	t.Cleanup(func() { dropIntegrationTables(t, db) })
	return db, dbName
}

func dropIntegrationTables(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, name := range []string{"it_users", "it_teams"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + mysqlIdent(name)); err != nil {
			t.Fatalf("drop %s: %v", name, err)
		}
	}
}

func runIntegrationSync(t *testing.T, db *sql.DB, dbName string, tables []Table, rep Reporter) []Outcome {
	t.Helper()
	dialect, err := newDialect(TargetConfig{Type: "mysql", Engine: "InnoDB", Charset: "utf8mb4"})
	if err != nil {
		t.Fatal(err)
	}
	s := &syncer{
		introspector: &mysqlIntrospector{db: db, dbName: dbName},
		dialect:      dialect,
		executor:     &sqlExecutor{db: db},
		reporter:     rep,
		workers:      2,
	}
	outcomes, err := s.run(context.Background(), tables)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return outcomes
}

func statuses(outcomes []Outcome) string {
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		parts[i] = o.Table + "=" + string(o.Status)
		if o.Err != nil {
			parts[i] += "(" + o.Err.Error() + ")"
		}
	}
	return strings.Join(parts, " ")
}

func TestIntegration_CreateThenConverge(t *testing.T) {
	db, dbName := integrationTarget(t)
	tables, err := parseCatalog(integrationCatalog)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	outcomes := runIntegrationSync(t, db, dbName, tables, logReporter{})
	if got := statuses(outcomes); got != "it_teams=created it_users=created" {
		t.Fatalf("first run: %s", got)
	}

	// A second run against the freshly created tables has nothing to do.
	outcomes = runIntegrationSync(t, db, dbName, tables, logReporter{})
	if got := statuses(outcomes); got != "it_teams=unchanged it_users=unchanged" {
		t.Fatalf("second run: %s", got)
	}

	live, found, err := (&mysqlIntrospector{db: db, dbName: dbName}).IntrospectTable(context.Background(), "it_users")
	if err != nil || !found {
		t.Fatalf("introspect it_users: found=%t err=%v", found, err)
	}
	if len(live.Columns) != 5 || len(live.Indexes) != 3 {
		t.Fatalf("live it_users = %+v", live)
	}
	if c, _ := live.Column("score"); c.Default == nil || *c.Default != "0" {
		t.Errorf("score default = %v", c.Default)
	}
}

func TestIntegration_AlterWidensAndRefuses(t *testing.T) {
	db, dbName := integrationTarget(t)
	ctx := context.Background()
	for _, q := range []string{
		"CREATE TABLE `it_teams` (`id` int unsigned NOT NULL AUTO_INCREMENT, `name` varchar(32) NOT NULL, `legacy` int NULL, PRIMARY KEY (`id`))",
		"CREATE TABLE `it_users` (`id` bigint unsigned NOT NULL AUTO_INCREMENT, `email` int NOT NULL, PRIMARY KEY (`id`))",
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed: %v\nSQL: %s", err, q)
		}
	}

	tables, err := parseCatalog(integrationCatalog)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	historyPath := filepath.Join(t.TempDir(), "history.db")
	hist, err := openSQLiteReporter(ctx, historyPath, newRunInfo(time.Now()))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer hist.Close()

	outcomes := runIntegrationSync(t, db, dbName, tables, multiReporter{logReporter{}, hist})
	if outcomes[0].Status != StatusAltered {
		t.Fatalf("it_teams: %s", statuses(outcomes))
	}
	if want := (ChangeSummary{ColumnsChanged: 1, IndexesAdded: 1}); outcomes[0].Summary != want {
		t.Errorf("it_teams summary = %+v, want %+v", outcomes[0].Summary, want)
	}
	if outcomes[1].Status != StatusFailed || outcomes[1].Kind() != KindIncompatibleType {
		t.Fatalf("it_users: %s", statuses(outcomes))
	}

	live, _, err := (&mysqlIntrospector{db: db, dbName: dbName}).IntrospectTable(ctx, "it_teams")
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := live.Column("name"); c.Type != TypeVarchar || c.Size != 64 {
		t.Errorf("name column = %+v, want varchar(64)", c)
	}
	if _, ok := live.Column("legacy"); !ok {
		t.Error("live-only column was dropped")
	}

	var n int
	if err := hist.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sync_history WHERE status = 'failed'").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("failed history rows = %d, want 1", n)
	}
}

func TestIntegration_PostgresAudit(t *testing.T) {
	pgDSN := os.Getenv("POSTGRES_DSN")
	if pgDSN == "" {
		t.Skip("POSTGRES_DSN env var required")
	}
	ctx := context.Background()
	const schema = "schemasync_it"

	r, err := openPostgresReporter(ctx, pgDSN, schema, runInfo{ID: "it-run", Version: "test"})
	if err != nil {
		t.Fatalf("open postgres reporter: %v", err)
	}
	defer r.Close()

	pool, err := pgxpool.New(ctx, pgDSN)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()
	t.Cleanup(func() { pool.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE") })

	for _, o := range []Outcome{
		{Table: "users", Status: StatusCreated, Statement: Statement{Kind: StatementCreate, SQL: "CREATE TABLE `users` (...)"}},
		failed("posts", &ReconcileError{Kind: KindUnsupportedSignChange, Table: "posts", Column: "id"}),
	} {
		if err := r.Report(ctx, o); err != nil {
			t.Fatalf("Report(%s): %v", o.Table, err)
		}
	}

	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+schema+".schemasync_history WHERE run_id = $1", "it-run").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("audit rows = %d, want 2", n)
	}
	var kind string
	if err := pool.QueryRow(ctx, "SELECT error_kind FROM "+schema+".schemasync_history WHERE table_name = 'posts'").Scan(&kind); err != nil {
		t.Fatal(err)
	}
	if kind != string(KindUnsupportedSignChange) {
		t.Errorf("error_kind = %q", kind)
	}
}
