package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Column describes a single column, either as declared in the catalog or as
// introspected from the live database.
type Column struct {
	Name          string
	Type          ColumnType
	Size          int     // 0 means unset; display width for integers, length for strings
	Nullable      bool
	Default       *string // nil means no default
	AutoIncrement bool
	Unsigned      bool
}

// IndexKind is the kind of an index.
type IndexKind string

const (
	IndexPrimary  IndexKind = "primary"
	IndexUnique   IndexKind = "unique"
	IndexKey      IndexKind = "key"
	IndexFulltext IndexKind = "fulltext"
)

func isKnownIndexKind(k IndexKind) bool {
	switch k {
	case IndexPrimary, IndexUnique, IndexKey, IndexFulltext:
		return true
	}
	return false
}

// IndexColumn references a column from an index. Prefix > 0 indexes only the
// first Prefix characters (or bytes).
type IndexColumn struct {
	Name   string
	Prefix int
}

func (c IndexColumn) String() string {
	if c.Prefix > 0 {
		return c.Name + "(" + strconv.Itoa(c.Prefix) + ")"
	}
	return c.Name
}

// parseIndexColumn parses "name" or "name(N)".
func parseIndexColumn(s string) (IndexColumn, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if s == "" {
			return IndexColumn{}, fmt.Errorf("empty index column")
		}
		return IndexColumn{Name: s}, nil
	}
	if !strings.HasSuffix(s, ")") || open == 0 {
		return IndexColumn{}, fmt.Errorf("malformed index column %q", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[open+1 : len(s)-1]))
	if err != nil || n <= 0 {
		return IndexColumn{}, fmt.Errorf("invalid prefix length in index column %q", s)
	}
	return IndexColumn{Name: strings.TrimSpace(s[:open]), Prefix: n}, nil
}

// Index describes one key definition of a table.
type Index struct {
	Kind    IndexKind
	Columns []IndexColumn
	Name    string // optional; see IndexName
}

// IndexName returns the explicit name, or one derived from the column names.
// Primary keys are unnamed.
func (i Index) IndexName() string {
	if i.Kind == IndexPrimary {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	names := make([]string, len(i.Columns))
	for n, c := range i.Columns {
		names[n] = c.Name
	}
	return strings.Join(names, "_")
}

// isNullDefault reports whether a declared default spells SQL NULL. On a
// nullable column it is the NULL keyword; on a NOT NULL string column it is
// the literal string.
func isNullDefault(v string) bool {
	return strings.EqualFold(v, "null")
}

// label names the index in error messages.
func (i Index) label() string {
	if i.Kind == IndexPrimary {
		return "PRIMARY"
	}
	return i.IndexName()
}

// Constraint documents a foreign-key-like relationship from a column of the
// owning table to RefTable.RefColumn. It is advisory: the DDL renderers do not
// materialize it.
type Constraint struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s -> %s.%s", c.Column, c.RefTable, c.RefColumn)
}

// Table holds the full definition of one table.
type Table struct {
	Name        string
	Columns     []Column // declaration order
	Indexes     []Index
	Constraints []Constraint
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary index, if any.
func (t Table) PrimaryKey() (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Kind == IndexPrimary {
			return idx, true
		}
	}
	return Index{}, false
}

// Clone returns a deep copy, so the result shares no slices with t.
func (t Table) Clone() Table {
	out := Table{
		Name:        t.Name,
		Columns:     make([]Column, len(t.Columns)),
		Indexes:     make([]Index, len(t.Indexes)),
		Constraints: slices.Clone(t.Constraints),
	}
	for i, c := range t.Columns {
		out.Columns[i] = c.clone()
	}
	for i, idx := range t.Indexes {
		idx.Columns = slices.Clone(idx.Columns)
		out.Indexes[i] = idx
	}
	return out
}

func (c Column) clone() Column {
	if c.Default != nil {
		d := *c.Default
		c.Default = &d
	}
	return c
}

// Validate checks the structural invariants of a table definition.
func (t Table) Validate() error {
	invalid := func(format string, args ...any) error {
		return &ReconcileError{Kind: KindInvalidSchema, Table: t.Name, Detail: fmt.Sprintf(format, args...)}
	}

	if t.Name == "" {
		return invalid("table name is empty")
	}
	if len(t.Columns) == 0 {
		return invalid("table has no columns")
	}

	seen := make(map[string]bool, len(t.Columns))
	var autoIncr []string
	for _, c := range t.Columns {
		if c.Name == "" {
			return invalid("column with empty name")
		}
		if seen[c.Name] {
			return invalid("duplicate column %q", c.Name)
		}
		seen[c.Name] = true

		if !IsKnownType(c.Type) {
			return &ReconcileError{Kind: KindUnknownColumnType, Table: t.Name, Column: c.Name, From: c.Type}
		}
		if c.Size < 0 {
			return invalid("column %q has negative size %d", c.Name, c.Size)
		}
		if isSizedType(c.Type) && c.Size == 0 {
			return invalid("column %q of type %s requires a size", c.Name, c.Type)
		}
		if c.Size > 0 && !isSizedType(c.Type) && !isIntegerType(c.Type) {
			return invalid("column %q of type %s does not take a size", c.Name, c.Type)
		}
		if c.Unsigned && !isIntegerType(c.Type) {
			return invalid("column %q: unsigned is only valid on integer types", c.Name)
		}
		if c.AutoIncrement {
			if !isIntegerType(c.Type) {
				return invalid("column %q: auto_increment is only valid on integer types", c.Name)
			}
			if c.Default != nil {
				return invalid("column %q: auto_increment column cannot have a default", c.Name)
			}
			autoIncr = append(autoIncr, c.Name)
		}
		if c.Default != nil && isLobType(c.Type) {
			return invalid("column %q of type %s cannot have a default", c.Name, c.Type)
		}
		if c.Default != nil && !c.Nullable && !isSizedType(c.Type) && isNullDefault(*c.Default) {
			return invalid("column %q is NOT NULL but defaults to NULL", c.Name)
		}
	}
	if len(autoIncr) > 1 {
		return invalid("multiple auto_increment columns: %s", strings.Join(autoIncr, ", "))
	}

	primaries := 0
	for _, idx := range t.Indexes {
		if !isKnownIndexKind(idx.Kind) {
			return invalid("index %q has unknown kind %q", idx.label(), idx.Kind)
		}
		if idx.Kind == IndexPrimary {
			primaries++
		}
		if len(idx.Columns) == 0 {
			return invalid("index %q has no columns", idx.label())
		}
		for _, ic := range idx.Columns {
			col, ok := t.Column(ic.Name)
			if !ok {
				return invalid("index %q references unknown column %q", idx.label(), ic.Name)
			}
			if ic.Prefix > 0 && !isPrefixableType(col.Type) {
				return invalid("index %q: prefix length on non-string column %q", idx.label(), ic.Name)
			}
		}
	}
	if primaries > 1 {
		return invalid("table has %d primary indexes", primaries)
	}

	// auto_increment must be backed by a primary or unique key.
	for _, name := range autoIncr {
		if !t.isUniquelyIndexed(name) {
			return invalid("auto_increment column %q is not part of a primary or unique index", name)
		}
	}

	for _, fk := range t.Constraints {
		if _, ok := t.Column(fk.Column); !ok {
			return invalid("constraint %s references unknown column %q", fk, fk.Column)
		}
		if fk.RefTable == "" || fk.RefColumn == "" {
			return invalid("constraint on column %q has an incomplete reference", fk.Column)
		}
	}
	return nil
}

func (t Table) isUniquelyIndexed(column string) bool {
	for _, idx := range t.Indexes {
		if idx.Kind != IndexPrimary && idx.Kind != IndexUnique {
			continue
		}
		for _, ic := range idx.Columns {
			if ic.Name == column {
				return true
			}
		}
	}
	return false
}

// ChangeSet is the result of reconciling one table: what must be added or
// replaced for the live table to satisfy the desired one.
type ChangeSet struct {
	AddColumns    []Column
	ChangeColumns []Column
	AddIndexes    []Index
}

// Empty reports whether the live table already satisfies the desired one.
func (cs ChangeSet) Empty() bool {
	return len(cs.AddColumns) == 0 && len(cs.ChangeColumns) == 0 && len(cs.AddIndexes) == 0
}

// ChangeSummary counts the entries of a ChangeSet.
type ChangeSummary struct {
	ColumnsAdded   int
	ColumnsChanged int
	IndexesAdded   int
}

func (cs ChangeSet) Summary() ChangeSummary {
	return ChangeSummary{
		ColumnsAdded:   len(cs.AddColumns),
		ColumnsChanged: len(cs.ChangeColumns),
		IndexesAdded:   len(cs.AddIndexes),
	}
}

func (s ChangeSummary) String() string {
	return fmt.Sprintf("%d columns added, %d columns changed, %d indexes added",
		s.ColumnsAdded, s.ColumnsChanged, s.IndexesAdded)
}
