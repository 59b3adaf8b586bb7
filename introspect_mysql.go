package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// mysqlIntrospector reads live table structure from INFORMATION_SCHEMA.
type mysqlIntrospector struct {
	db     *sql.DB
	dbName string
}

func (m *mysqlIntrospector) IntrospectTable(ctx context.Context, name string) (Table, bool, error) {
	var n int
	if err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND TABLE_TYPE = 'BASE TABLE'`,
		m.dbName, name,
	).Scan(&n); err != nil {
		return Table{}, false, fmt.Errorf("check table existence: %w", err)
	}
	if n == 0 {
		return Table{}, false, nil
	}

	t := Table{Name: name}
	var err error
	if t.Columns, err = m.columns(ctx, name); err != nil {
		return Table{}, false, fmt.Errorf("introspect columns: %w", err)
	}
	if t.Indexes, err = m.indexes(ctx, name); err != nil {
		return Table{}, false, fmt.Errorf("introspect indexes: %w", err)
	}
	if t.Constraints, err = m.constraints(ctx, name); err != nil {
		return Table{}, false, fmt.Errorf("introspect foreign keys: %w", err)
	}
	return t, true, nil
}

func (m *mysqlIntrospector) columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA
		 FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		m.dbName, table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, columnType, nullable, extra string
		var dflt sql.NullString
		if err := rows.Scan(&name, &dataType, &columnType, &nullable, &dflt, &extra); err != nil {
			return nil, err
		}
		c := parseMySQLColumnType(dataType, columnType)
		c.Name = name
		c.Nullable = nullable == "YES"
		c.Default = mysqlLiveDefault(dflt)
		c.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// parseMySQLColumnType splits DATA_TYPE / COLUMN_TYPE ("int(10) unsigned",
// "varchar(64)") into type, size and sign. Types outside the supported set are
// kept verbatim so reconciliation can report them.
func parseMySQLColumnType(dataType, columnType string) Column {
	ct := strings.ToLower(strings.TrimSpace(columnType))
	c := Column{
		Type:     ColumnType(strings.ToLower(strings.TrimSpace(dataType))),
		Unsigned: strings.Contains(ct, " unsigned"),
	}
	if n, ok := mysqlColumnTypeLength(ct, string(c.Type)); ok {
		c.Size = int(n)
	}
	return c
}

func mysqlColumnTypeLength(columnType, baseType string) (int64, bool) {
	prefix := baseType + "("
	if !strings.HasPrefix(columnType, prefix) {
		return 0, false
	}
	rest := columnType[len(prefix):]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(rest[:end]), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// mysqlLiveDefault normalizes COLUMN_DEFAULT. MariaDB reports "NULL" for no
// default and quotes string literals; MySQL does neither.
func mysqlLiveDefault(dflt sql.NullString) *string {
	if !dflt.Valid {
		return nil
	}
	v := dflt.String
	if v == "NULL" {
		return nil
	}
	v = mysqlDefaultUnquote(v)
	return &v
}

func mysqlDefaultUnquote(v string) string {
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		inner := v[1 : len(v)-1]
		return strings.ReplaceAll(inner, "''", "'")
	}
	return v
}

func (m *mysqlIntrospector) indexes(ctx context.Context, table string) ([]Index, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, INDEX_TYPE, SUB_PART
		 FROM INFORMATION_SCHEMA.STATISTICS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
		m.dbName, table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indexMap := make(map[string]*Index)
	expression := make(map[string]bool)
	var indexOrder []string

	for rows.Next() {
		var idxName, indexType string
		var colName sql.NullString
		var subPart sql.NullInt64
		var nonUnique int
		if err := rows.Scan(&idxName, &colName, &nonUnique, &indexType, &subPart); err != nil {
			return nil, err
		}

		idx, ok := indexMap[idxName]
		if !ok {
			idx = &Index{Name: idxName, Kind: mysqlIndexKind(idxName, nonUnique, indexType)}
			if idx.Kind == IndexPrimary {
				idx.Name = ""
			}
			indexMap[idxName] = idx
			indexOrder = append(indexOrder, idxName)
		}
		if !colName.Valid {
			expression[idxName] = true
			continue
		}
		ic := IndexColumn{Name: colName.String}
		if subPart.Valid {
			ic.Prefix = int(subPart.Int64)
		}
		idx.Columns = append(idx.Columns, ic)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []Index
	for _, name := range indexOrder {
		if expression[name] {
			log.Printf("    WARN: %s.%s: expression index key-parts are not compared", table, name)
			continue
		}
		indexes = append(indexes, *indexMap[name])
	}
	return indexes, nil
}

func mysqlIndexKind(name string, nonUnique int, indexType string) IndexKind {
	switch {
	case name == "PRIMARY":
		return IndexPrimary
	case strings.EqualFold(indexType, "FULLTEXT"):
		return IndexFulltext
	case nonUnique == 0:
		return IndexUnique
	default:
		return IndexKey
	}
}

func (m *mysqlIntrospector) constraints(ctx context.Context, table string) ([]Constraint, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		 FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		   AND REFERENCED_TABLE_NAME IS NOT NULL
		 ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION`,
		m.dbName, table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Constraint
	for rows.Next() {
		var c Constraint
		if err := rows.Scan(&c.Column, &c.RefTable, &c.RefColumn); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
