package main

// ReconcileTable computes the changes needed for the live table source to
// satisfy the desired table dest. Columns missing from dest are left alone;
// nothing is ever dropped. Any error aborts the whole table and no partial
// change set is returned.
func ReconcileTable(source, dest Table) (ChangeSet, error) {
	if err := dest.Validate(); err != nil {
		return ChangeSet{}, err
	}

	var cs ChangeSet
	for _, want := range dest.Columns {
		have, ok := source.Column(want.Name)
		if !ok {
			cs.AddColumns = append(cs.AddColumns, want.clone())
			continue
		}
		repl, err := ReconcileColumn(have, want)
		if err != nil {
			return ChangeSet{}, withTable(err, dest.Name)
		}
		if repl != nil {
			cs.ChangeColumns = append(cs.ChangeColumns, *repl)
		}
	}

	add, err := ReconcileIndexes(source.Indexes, dest.Indexes)
	if err != nil {
		return ChangeSet{}, withTable(err, dest.Name)
	}
	cs.AddIndexes = add
	return cs, nil
}
