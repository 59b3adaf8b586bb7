package main

import "fmt"

// StatementKind tells the executor and reporters what a Statement does.
type StatementKind string

const (
	StatementCreate StatementKind = "create"
	StatementAlter  StatementKind = "alter"
	StatementNoOp   StatementKind = "noop"
)

// Statement is one DDL statement for one table. A table's changes are always
// rendered as a single statement.
type Statement struct {
	Table string
	Kind  StatementKind
	SQL   string
}

// NoOp is returned by AlterTable when there is nothing to change.
func NoOp(table string) Statement {
	return Statement{Table: table, Kind: StatementNoOp}
}

func (s Statement) IsNoOp() bool { return s.Kind == StatementNoOp }

// Dialect renders tables and change sets as DDL for one database engine.
type Dialect interface {
	// Name returns the engine name ("mysql", "mariadb").
	Name() string

	// CreateTable renders a CREATE TABLE statement for a table that does not
	// exist yet.
	CreateTable(t Table) (Statement, error)

	// AlterTable renders every change of cs as one ALTER TABLE statement, or
	// NoOp when cs is empty.
	AlterTable(table string, cs ChangeSet) (Statement, error)
}

// newDialect returns the Dialect for the configured target type.
func newDialect(target TargetConfig) (Dialect, error) {
	switch target.Type {
	case "mysql", "mariadb":
		return &mysqlDialect{name: target.Type, engine: target.Engine, charset: target.Charset}, nil
	default:
		return nil, fmt.Errorf("unsupported target type %q (must be mysql or mariadb)", target.Type)
	}
}

// indexKindRank orders index clauses in CREATE TABLE.
func indexKindRank(k IndexKind) int {
	switch k {
	case IndexPrimary:
		return 0
	case IndexUnique:
		return 1
	case IndexKey:
		return 2
	default:
		return 3
	}
}
