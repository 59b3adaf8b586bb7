package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// SyncConfig holds the full TOML-driven sync configuration.
type SyncConfig struct {
	Catalog string       `toml:"catalog"` // desired-schema catalog file
	Workers int          `toml:"workers"`
	DryRun  bool         `toml:"dry_run"`
	Target  TargetConfig `toml:"target"`
	Hooks   HooksConfig  `toml:"hooks"`
	Report  ReportConfig `toml:"report"`

	// configDir is the directory containing the TOML file, used to resolve relative paths.
	configDir string
}

// TargetConfig identifies the database whose schema is reconciled.
type TargetConfig struct {
	Type    string `toml:"type"` // "mysql" or "mariadb"
	DSN     string `toml:"dsn"`
	Engine  string `toml:"engine"`  // storage engine for CREATE TABLE (default: "InnoDB")
	Charset string `toml:"charset"` // default charset for CREATE TABLE (default: "utf8mb4")
}

type HooksConfig struct {
	BeforeSync []string `toml:"before_sync"`
	AfterSync  []string `toml:"after_sync"`
}

// ReportConfig selects where per-table outcomes are recorded.
type ReportConfig struct {
	Sinks          []string `toml:"sinks"` // log|sqlite|postgres
	SQLitePath     string   `toml:"sqlite_path"`
	PostgresDSN    string   `toml:"postgres_dsn"`
	PostgresSchema string   `toml:"postgres_schema"`
}

var knownSinks = []string{"log", "sqlite", "postgres"}

// loadConfig reads a TOML config file and returns a SyncConfig with defaults applied.
func loadConfig(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := SyncConfig{
		Target: TargetConfig{
			Type:    "mysql",
			Engine:  "InnoDB",
			Charset: "utf8mb4",
		},
		Report: ReportConfig{
			Sinks:          []string{"log"},
			PostgresSchema: "public",
		},
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers()
	}

	cfg.Catalog = strings.TrimSpace(cfg.Catalog)
	if cfg.Catalog == "" {
		return nil, fmt.Errorf("catalog is required")
	}

	switch cfg.Target.Type {
	case "mysql", "mariadb":
	default:
		return nil, fmt.Errorf("target.type must be one of: mysql, mariadb")
	}
	if cfg.Target.DSN == "" {
		return nil, fmt.Errorf("target.dsn is required")
	}
	if _, _, err := mysqlTargetDSN(cfg.Target.DSN); err != nil {
		return nil, fmt.Errorf("target.dsn: %w", err)
	}

	for _, s := range cfg.Report.Sinks {
		if !slices.Contains(knownSinks, s) {
			return nil, fmt.Errorf("report.sinks entries must be one of: %s", strings.Join(knownSinks, ", "))
		}
	}
	if slices.Contains(cfg.Report.Sinks, "sqlite") && cfg.Report.SQLitePath == "" {
		cfg.Report.SQLitePath = "schemasync-history.db"
	}
	if slices.Contains(cfg.Report.Sinks, "postgres") {
		if cfg.Report.PostgresDSN == "" {
			return nil, fmt.Errorf("report.postgres_dsn is required when the postgres sink is enabled")
		}
		if strings.TrimSpace(cfg.Report.PostgresSchema) == "" {
			return nil, fmt.Errorf("report.postgres_schema must not be empty")
		}
	}

	return &cfg, nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *SyncConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
