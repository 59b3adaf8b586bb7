package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "schemasync",
	Short:        "Reconcile a live MySQL schema with a declared table catalog",
	SilenceUsage: true,
}

var planCmd = &cobra.Command{
	Use:   "plan [config.toml]",
	Short: "Print the DDL that apply would run, without changing anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args, true)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [config.toml]",
	Short: "Create missing tables and alter drifted ones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <catalog.toml>",
	Short: "Validate a catalog file without connecting to a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to sync TOML config file")
	rootCmd.AddCommand(planCmd, applyCmd, checkCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfigPath picks the positional argument over the --config flag.
func resolveConfigPath(args []string) (string, error) {
	cfgPath := configPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return "", fmt.Errorf("config file required: schemasync <plan|apply> <config.toml> or --config <config.toml>")
	}
	return cfgPath, nil
}

func runSync(cmd *cobra.Command, args []string, planOnly bool) error {
	cfgPath, err := resolveConfigPath(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	dryRun := planOnly || cfg.DryRun

	ctx := cmd.Context()
	start := time.Now()

	log.Printf("schemasync %s", versionString())
	log.Printf("config: target=%s workers=%d dry_run=%t sinks=%s",
		cfg.Target.Type, cfg.Workers, dryRun, strings.Join(cfg.Report.Sinks, ","))

	// 1. Desired schema
	log.Printf("loading catalog %s...", cfg.Catalog)
	catalog := &fileCatalog{path: cfg.resolvePath(cfg.Catalog)}
	tables, err := catalog.Tables(ctx)
	if err != nil {
		return err
	}
	log.Printf("found %d tables", len(tables))
	for _, t := range tables {
		log.Printf("  %s (%d cols, %d indexes, %d constraints)",
			t.Name, len(t.Columns), len(t.Indexes), len(t.Constraints))
	}

	// 2. Target connection
	log.Printf("connecting to %s...", cfg.Target.Type)
	db, dbName, err := openMySQLTarget(cfg.Target.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Workers)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", cfg.Target.Type, err)
	}

	dialect, err := newDialect(cfg.Target)
	if err != nil {
		return err
	}

	// 3. Reporting sinks. Plan only logs: nothing it reports has happened.
	reportCfg := cfg.Report
	if dryRun {
		reportCfg.Sinks = []string{"log"}
	}
	reporter, closeReporters, err := openReporters(ctx, reportCfg, newRunInfo(start), cfg.resolvePath)
	if err != nil {
		return err
	}
	defer closeReporters()

	var executor Executor = &sqlExecutor{db: db}
	var hookExec sqlExecer = db
	if dryRun {
		executor = planExecutor{}
		hookExec = nil
	}

	// 4. before_sync hooks
	if err := loadAndExecSQLFiles(ctx, hookExec, cfg, dbName, cfg.Hooks.BeforeSync, "before_sync"); err != nil {
		return fmt.Errorf("before_sync hooks: %w", err)
	}

	// 5. Reconcile every table
	log.Printf("reconciling %d tables in '%s' with %d workers...", len(tables), dbName, cfg.Workers)
	s := &syncer{
		introspector: &mysqlIntrospector{db: db, dbName: dbName},
		dialect:      dialect,
		executor:     executor,
		reporter:     reporter,
		workers:      cfg.Workers,
	}
	outcomes, err := s.run(ctx, tables)
	if err != nil {
		return err
	}
	if dryRun {
		if err := writePlan(cmd.OutOrStdout(), outcomes); err != nil {
			return err
		}
	}

	failures := countFailures(outcomes)

	// 6. after_sync hooks, only once every table is in shape
	if failures == 0 {
		if err := loadAndExecSQLFiles(ctx, hookExec, cfg, dbName, cfg.Hooks.AfterSync, "after_sync"); err != nil {
			return fmt.Errorf("after_sync hooks: %w", err)
		}
	} else if len(cfg.Hooks.AfterSync) > 0 {
		log.Printf("skipping after_sync hooks: %d table(s) failed", failures)
	}

	logSummary(outcomes)
	if failures > 0 {
		return fmt.Errorf("%d of %d tables failed", failures, len(outcomes))
	}
	log.Printf("sync completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func logSummary(outcomes []Outcome) {
	counts := make(map[OutcomeStatus]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	log.Printf("summary: %d created, %d altered, %d unchanged, %d failed",
		counts[StatusCreated], counts[StatusAltered], counts[StatusUnchanged], counts[StatusFailed])
}

func runCheck(cmd *cobra.Command, args []string) error {
	tables, err := loadCatalog(args[0])
	if err != nil {
		return err
	}
	return describeCatalog(cmd.OutOrStdout(), tables)
}

// describeCatalog prints one line per table of a validated catalog.
func describeCatalog(w io.Writer, tables []Table) error {
	for _, t := range tables {
		pk := "no primary key"
		if idx, ok := t.PrimaryKey(); ok {
			pk = "primary key (" + indexColumnList(idx) + ")"
		}
		if _, err := fmt.Fprintf(w, "%s: %d columns, %d indexes, %s\n", t.Name, len(t.Columns), len(t.Indexes), pk); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "catalog OK: %d tables\n", len(tables))
	return err
}
