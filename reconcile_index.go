package main

import "strings"

// indexSignature encodes an index's kind and ordered column list. Two indexes
// with the same signature are interchangeable regardless of their names.
func indexSignature(idx Index) string {
	parts := make([]string, 0, len(idx.Columns)+1)
	parts = append(parts, string(idx.Kind))
	for _, c := range idx.Columns {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "~")
}

// ReconcileIndexes returns the indexes of dest that have no structural match
// in source. Column order matters. A desired primary key that does not match
// the live one is refused: primary keys are never redefined.
func ReconcileIndexes(source, dest []Index) ([]Index, error) {
	existing := make(map[string]bool, len(source))
	for _, idx := range source {
		existing[indexSignature(idx)] = true
	}

	var add []Index
	for _, idx := range dest {
		sig := indexSignature(idx)
		if existing[sig] {
			continue
		}
		if idx.Kind == IndexPrimary {
			return nil, &ReconcileError{
				Kind:   KindPrimaryKeyRedefinition,
				Index:  "PRIMARY",
				Detail: primaryKeyDetail(source, idx),
			}
		}
		existing[sig] = true
		add = append(add, idx)
	}
	return add, nil
}

func primaryKeyDetail(source []Index, want Index) string {
	for _, idx := range source {
		if idx.Kind == IndexPrimary {
			return "live (" + indexColumnList(idx) + "), declared (" + indexColumnList(want) + ")"
		}
	}
	return "live table has no primary key, declared (" + indexColumnList(want) + ")"
}

func indexColumnList(idx Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = c.String()
	}
	return strings.Join(cols, ", ")
}
