package main

import "fmt"

// collectDriftWarnings lists what the live table has beyond the desired one.
// None of it is changed: extra columns and indexes are left in place, and a
// broader live type is kept.
func collectDriftWarnings(live, want Table) []string {
	var warnings []string
	for _, c := range live.Columns {
		declared, ok := want.Column(c.Name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("column %s.%s is not declared; left in place", live.Name, c.Name))
			continue
		}
		if IsSuperset(c.Type, declared.Type) {
			warnings = append(warnings, fmt.Sprintf(
				"column %s.%s is %s, declared %s; the broader live type is kept",
				live.Name, c.Name, c.Type, declared.Type,
			))
		}
	}

	declared := make(map[string]bool, len(want.Indexes))
	for _, idx := range want.Indexes {
		declared[indexSignature(idx)] = true
	}
	existing := make(map[string]bool, len(live.Indexes))
	liveByName := make(map[string]Index, len(live.Indexes))
	for _, idx := range live.Indexes {
		existing[indexSignature(idx)] = true
		if idx.Kind != IndexPrimary {
			liveByName[idx.IndexName()] = idx
		}
		if declared[indexSignature(idx)] {
			continue
		}
		warnings = append(warnings, fmt.Sprintf(
			"index %s.%s (%s) is not declared; left in place",
			live.Name, idx.label(), indexColumnList(idx),
		))
	}

	// A new index named like a live one makes MySQL refuse the ALTER.
	for _, idx := range want.Indexes {
		if idx.Kind == IndexPrimary || existing[indexSignature(idx)] {
			continue
		}
		if other, ok := liveByName[idx.IndexName()]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"new %s index %s.%s (%s) reuses the name of live %s index (%s); the statement will fail",
				idx.Kind, live.Name, idx.IndexName(), indexColumnList(idx), other.Kind, indexColumnList(other),
			))
		}
	}
	return warnings
}
