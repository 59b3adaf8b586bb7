package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlTargetDSN normalizes a target DSN and returns the database it names.
// DDL is never sent as multi-statement text, so multiStatements is forced off.
func mysqlTargetDSN(baseDSN string) (dsn, dbName string, err error) {
	cfg, err := mysql.ParseDSN(baseDSN)
	if err != nil {
		return "", "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", "", fmt.Errorf("mysql dsn must name a database")
	}
	cfg.ParseTime = true
	cfg.InterpolateParams = true
	cfg.MultiStatements = false
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), cfg.DBName, nil
}

// openMySQLTarget opens the target pool. The caller pings it.
func openMySQLTarget(baseDSN string) (*sql.DB, string, error) {
	dsn, dbName, err := mysqlTargetDSN(baseDSN)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open mysql: %w", err)
	}
	return db, dbName, nil
}
