package main

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestMySQLTargetDSN(t *testing.T) {
	dsn, dbName, err := mysqlTargetDSN("root:root@tcp(127.0.0.1:3306)/example_db?multiStatements=true")
	if err != nil {
		t.Fatalf("mysqlTargetDSN() error: %v", err)
	}
	if dbName != "example_db" {
		t.Errorf("dbName = %q, want %q", dbName, "example_db")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("normalized DSN does not parse: %v", err)
	}
	if cfg.MultiStatements {
		t.Error("multiStatements should be forced off")
	}
	if !cfg.ParseTime || !cfg.InterpolateParams {
		t.Errorf("ParseTime=%t InterpolateParams=%t, want both true", cfg.ParseTime, cfg.InterpolateParams)
	}
	if cfg.Loc.String() != "UTC" {
		t.Errorf("Loc = %s, want UTC", cfg.Loc)
	}
	if cfg.User != "root" || cfg.Addr != "127.0.0.1:3306" {
		t.Errorf("User=%q Addr=%q", cfg.User, cfg.Addr)
	}
}

func TestMySQLTargetDSN_Errors(t *testing.T) {
	tests := []struct {
		dsn string
		msg string
	}{
		{"://bad-dsn", "parse mysql dsn"},
		{"root:root@tcp(127.0.0.1:3306)/", "must name a database"},
	}
	for _, tt := range tests {
		_, _, err := mysqlTargetDSN(tt.dsn)
		if err == nil || !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("mysqlTargetDSN(%q) error = %v, want %q", tt.dsn, err, tt.msg)
		}
	}
}

func TestOpenMySQLTarget(t *testing.T) {
	db, dbName, err := openMySQLTarget("root:root@tcp(127.0.0.1:3306)/app")
	if err != nil {
		t.Fatalf("openMySQLTarget() error: %v", err)
	}
	defer db.Close()
	if dbName != "app" {
		t.Errorf("dbName = %q, want app", dbName)
	}
}

func TestMySQLIdent(t *testing.T) {
	got := mysqlIdent("my`table")
	want := "`my``table`"
	if got != want {
		t.Errorf("mysqlIdent() = %q, want %q", got, want)
	}
}
