package main

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// mysqlDialect renders MySQL / MariaDB DDL.
type mysqlDialect struct {
	name    string
	engine  string
	charset string
}

func (d *mysqlDialect) Name() string { return d.name }

func (d *mysqlDialect) CreateTable(t Table) (Statement, error) {
	if err := t.Validate(); err != nil {
		return Statement{}, err
	}

	var lines []string
	for _, c := range t.Columns {
		lines = append(lines, mysqlColumnDef(c))
	}

	indexes := slices.Clone(t.Indexes)
	slices.SortStableFunc(indexes, func(a, b Index) int {
		return cmp.Compare(indexKindRank(a.Kind), indexKindRank(b.Kind))
	})
	for _, idx := range indexes {
		lines = append(lines, mysqlIndexDef(idx))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", mysqlIdent(t.Name))
	for i, line := range lines {
		b.WriteString("  ")
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(")")
	if d.engine != "" {
		fmt.Fprintf(&b, " ENGINE=%s", d.engine)
	}
	if d.charset != "" {
		fmt.Fprintf(&b, " DEFAULT CHARSET=%s", d.charset)
	}
	return Statement{Table: t.Name, Kind: StatementCreate, SQL: b.String()}, nil
}

func (d *mysqlDialect) AlterTable(table string, cs ChangeSet) (Statement, error) {
	if cs.Empty() {
		return NoOp(table), nil
	}

	var clauses []string
	for _, c := range cs.AddColumns {
		clauses = append(clauses, "ADD COLUMN "+mysqlColumnDef(c))
	}
	for _, c := range cs.ChangeColumns {
		clauses = append(clauses, fmt.Sprintf("CHANGE COLUMN %s %s", mysqlIdent(c.Name), mysqlColumnDef(c)))
	}
	for _, idx := range cs.AddIndexes {
		clause, err := mysqlAddIndexClause(idx)
		if err != nil {
			return Statement{}, fmt.Errorf("alter table %s: %w", table, err)
		}
		clauses = append(clauses, clause)
	}

	sql := fmt.Sprintf("ALTER TABLE %s %s", mysqlIdent(table), strings.Join(clauses, ", "))
	return Statement{Table: table, Kind: StatementAlter, SQL: sql}, nil
}

// mysqlIdent backtick-quotes an identifier.
func mysqlIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func mysqlColumnDef(c Column) string {
	var b strings.Builder
	b.WriteString(mysqlIdent(c.Name))
	b.WriteByte(' ')
	b.WriteString(mysqlColumnType(c))
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	switch {
	case c.Default != nil && c.Nullable && isNullDefault(*c.Default):
		b.WriteString(" DEFAULT NULL")
	case c.Default != nil:
		b.WriteString(" DEFAULT ")
		b.WriteString(mysqlDefaultLiteral(c.Type, *c.Default))
	case c.AutoIncrement:
		b.WriteString(" AUTO_INCREMENT")
	}
	return b.String()
}

func mysqlColumnType(c Column) string {
	t := string(c.Type)
	switch {
	case isIntegerType(c.Type):
		if c.Size > 0 {
			t += "(" + strconv.Itoa(c.Size) + ")"
		}
		if c.Unsigned {
			t += " unsigned"
		}
	case isSizedType(c.Type):
		t += "(" + strconv.Itoa(c.Size) + ")"
	}
	return t
}

// mysqlDefaultLiteral renders a non-NULL default value. Numeric defaults on
// numeric columns are emitted bare, anything else as a quoted string literal.
func mysqlDefaultLiteral(t ColumnType, v string) string {
	if isNumericType(t) {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	}
	return mysqlLiteral(v)
}

func mysqlLiteral(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func mysqlIndexColumns(idx Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = mysqlIdent(c.Name)
		if c.Prefix > 0 {
			cols[i] += "(" + strconv.Itoa(c.Prefix) + ")"
		}
	}
	return strings.Join(cols, ",")
}

// mysqlIndexDef renders an index clause for CREATE TABLE.
func mysqlIndexDef(idx Index) string {
	cols := mysqlIndexColumns(idx)
	switch idx.Kind {
	case IndexPrimary:
		return "PRIMARY KEY (" + cols + ")"
	case IndexUnique:
		return fmt.Sprintf("UNIQUE KEY %s (%s)", mysqlIdent(idx.IndexName()), cols)
	case IndexFulltext:
		return fmt.Sprintf("FULLTEXT KEY %s (%s)", mysqlIdent(idx.IndexName()), cols)
	default:
		return fmt.Sprintf("KEY %s (%s)", mysqlIdent(idx.IndexName()), cols)
	}
}

// mysqlAddIndexClause renders an index clause for ALTER TABLE.
func mysqlAddIndexClause(idx Index) (string, error) {
	cols := mysqlIndexColumns(idx)
	switch idx.Kind {
	case IndexUnique:
		return fmt.Sprintf("ADD UNIQUE %s (%s)", mysqlIdent(idx.IndexName()), cols), nil
	case IndexFulltext:
		return fmt.Sprintf("ADD FULLTEXT %s (%s)", mysqlIdent(idx.IndexName()), cols), nil
	case IndexKey:
		return fmt.Sprintf("ADD INDEX %s (%s)", mysqlIdent(idx.IndexName()), cols), nil
	case IndexPrimary:
		return "", &ReconcileError{Kind: KindPrimaryKeyRedefinition, Index: "PRIMARY", Detail: "primary keys are never added to an existing table"}
	default:
		return "", fmt.Errorf("unknown index kind %q", idx.Kind)
	}
}
