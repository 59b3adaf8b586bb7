package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// catalogFile is the TOML layout of a desired-schema catalog.
type catalogFile struct {
	Tables []catalogTable `toml:"table"`
}

type catalogTable struct {
	Name        string              `toml:"name"`
	Columns     []catalogColumn     `toml:"column"`
	Indexes     []catalogIndex      `toml:"index"`
	Constraints []catalogConstraint `toml:"constraint"`
}

type catalogColumn struct {
	Name          string `toml:"name"`
	Type          string `toml:"type"`
	Size          int    `toml:"size"`
	Nullable      bool   `toml:"nullable"`
	Default       any    `toml:"default"` // string, integer, float or bool
	AutoIncrement bool   `toml:"auto_increment"`
	Unsigned      bool   `toml:"unsigned"`
}

type catalogIndex struct {
	Kind    string   `toml:"kind"`
	Name    string   `toml:"name"`
	Columns []string `toml:"columns"` // "col" or "col(N)" for a prefix
}

type catalogConstraint struct {
	Column     string `toml:"column"`
	References string `toml:"references"` // "table.column"
}

// fileCatalog provides the desired schema from a TOML catalog file.
type fileCatalog struct {
	path string
}

func (c *fileCatalog) Tables(_ context.Context) ([]Table, error) {
	return loadCatalog(c.path)
}

// loadCatalog reads and validates a catalog file.
func loadCatalog(path string) ([]Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	tables, err := parseCatalog(string(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return tables, nil
}

// parseCatalog decodes catalog TOML into validated tables.
func parseCatalog(data string) ([]Table, error) {
	var f catalogFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown catalog keys: %s", strings.Join(keys, ", "))
	}

	seen := make(map[string]bool, len(f.Tables))
	tables := make([]Table, 0, len(f.Tables))
	for _, ct := range f.Tables {
		t, err := ct.toTable()
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	// Constraints may point outside the catalog; when they point inside it the
	// referenced column must exist.
	byName := make(map[string]Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	for _, t := range tables {
		for _, fk := range t.Constraints {
			ref, ok := byName[fk.RefTable]
			if !ok {
				continue
			}
			if _, ok := ref.Column(fk.RefColumn); !ok {
				return nil, fmt.Errorf("table %s: constraint %s references unknown column", t.Name, fk)
			}
		}
	}
	return tables, nil
}

func (ct catalogTable) toTable() (Table, error) {
	t := Table{Name: strings.TrimSpace(ct.Name)}
	for _, cc := range ct.Columns {
		dflt, err := catalogDefault(cc.Default)
		if err != nil {
			return Table{}, fmt.Errorf("table %s column %s: %w", t.Name, cc.Name, err)
		}
		// Introspection reports a NULL default as no default.
		if dflt != nil && cc.Nullable && isNullDefault(*dflt) {
			dflt = nil
		}
		t.Columns = append(t.Columns, Column{
			Name:          cc.Name,
			Type:          ColumnType(strings.ToLower(strings.TrimSpace(cc.Type))),
			Size:          cc.Size,
			Nullable:      cc.Nullable,
			Default:       dflt,
			AutoIncrement: cc.AutoIncrement,
			Unsigned:      cc.Unsigned,
		})
	}

	for _, ci := range ct.Indexes {
		idx := Index{Kind: IndexKind(strings.ToLower(strings.TrimSpace(ci.Kind))), Name: ci.Name}
		if idx.Kind == "" {
			idx.Kind = IndexKey
		}
		if idx.Kind == IndexPrimary && idx.Name != "" {
			return Table{}, fmt.Errorf("table %s: primary index cannot be named", t.Name)
		}
		for _, s := range ci.Columns {
			ic, err := parseIndexColumn(s)
			if err != nil {
				return Table{}, fmt.Errorf("table %s: %w", t.Name, err)
			}
			idx.Columns = append(idx.Columns, ic)
		}
		t.Indexes = append(t.Indexes, idx)
	}

	for _, cc := range ct.Constraints {
		dot := strings.LastIndexByte(cc.References, '.')
		if dot <= 0 || dot == len(cc.References)-1 {
			return Table{}, fmt.Errorf("table %s: constraint on %s: references must be table.column, got %q", t.Name, cc.Column, cc.References)
		}
		t.Constraints = append(t.Constraints, Constraint{
			Column:    cc.Column,
			RefTable:  cc.References[:dot],
			RefColumn: cc.References[dot+1:],
		})
	}
	return t, nil
}

func catalogDefault(v any) (*string, error) {
	var s string
	switch d := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = d
	case int64:
		s = strconv.FormatInt(d, 10)
	case float64:
		s = strconv.FormatFloat(d, 'f', -1, 64)
	case bool:
		s = "0"
		if d {
			s = "1"
		}
	default:
		return nil, fmt.Errorf("unsupported default value of type %T", v)
	}
	return &s, nil
}
