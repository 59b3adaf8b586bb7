package main

import "fmt"

// columnDeltas records which attributes of the live column differ from the
// effective desired column.
type columnDeltas struct {
	size     bool
	dflt     bool
	nullable bool
}

// ReconcileColumn compares the live column source against the desired column
// dest. It returns nil when source already satisfies dest, or the column
// definition to write in its place.
//
// Live types are never narrowed: when source.Type is broader than dest.Type the
// live type is kept. Sizes never shrink and signedness is never changed.
func ReconcileColumn(source, dest Column) (*Column, error) {
	if !IsKnownType(source.Type) {
		return nil, &ReconcileError{Kind: KindUnknownColumnType, Column: dest.Name, From: source.Type, To: dest.Type, Detail: "live column type is not supported"}
	}
	if !IsKnownType(dest.Type) {
		return nil, &ReconcileError{Kind: KindUnknownColumnType, Column: dest.Name, From: source.Type, To: dest.Type, Detail: "declared column type is not supported"}
	}
	if source.Unsigned != dest.Unsigned {
		return nil, &ReconcileError{
			Kind:   KindUnsupportedSignChange,
			Column: dest.Name,
			From:   source.Type,
			To:     dest.Type,
			Detail: fmt.Sprintf("%s -> %s", signLabel(source.Unsigned), signLabel(dest.Unsigned)),
		}
	}

	superset := IsSuperset(source.Type, dest.Type)
	if source.Type != dest.Type && !superset && !IsLegalUpgrade(source.Type, dest.Type) {
		return nil, incompatible(source, dest)
	}

	eff := dest.clone()
	if superset {
		eff.Type = source.Type
		eff.Size = max(source.Size, dest.Size)
		if !isSizedType(eff.Type) && !isIntegerType(eff.Type) {
			eff.Size = 0
		}
		if isLobType(eff.Type) {
			eff.Default = nil
		}
	}

	var d columnDeltas
	// An unknown live size (MySQL 8 drops integer display widths) never counts as a size change.
	if eff.Type == source.Type && source.Size > 0 {
		if eff.Size < source.Size {
			eff.Size = source.Size
		}
		d.size = eff.Size > source.Size
	}
	d.dflt = !equalDefaults(source.Default, eff.Default)
	d.nullable = source.Nullable != eff.Nullable

	change, err := resolveColumnChange(source, &eff, d)
	if err != nil {
		return nil, err
	}
	if !change {
		return nil, nil
	}
	return &eff, nil
}

// resolveColumnChange applies the per type-pair rules. It may adjust eff in
// place and reports whether a replacement must be emitted. Pairs not listed are
// refused.
func resolveColumnChange(source Column, eff *Column, d columnDeltas) (bool, error) {
	from, to := source.Type, eff.Type
	switch {
	case isIntegerType(from) && from == to:
		return d.size || d.dflt || d.nullable, nil

	case isIntegerType(from) && to == TypeFloat:
		eff.Size = 0
		return true, nil

	case isIntegerType(from) && isIntegerType(to):
		return true, nil

	case from == TypeFloat && to == TypeFloat:
		return d.dflt || d.nullable, nil

	case isSizedType(from) && from == to:
		eff.Size = max(source.Size, eff.Size)
		return d.size || d.dflt || d.nullable, nil

	case from == TypeChar && to == TypeVarchar:
		eff.Size = max(source.Size, eff.Size)
		return true, nil

	case (from == TypeChar || from == TypeVarchar) && (to == TypeText || to == TypeMediumText),
		from == TypeText && to == TypeMediumText,
		from == TypeBlob && to == TypeMediumBlob:
		eff.Size = 0
		return true, nil

	case isLobType(from) && from == to:
		return d.nullable, nil

	case from == TypeDate && to == TypeDate:
		return d.dflt || d.nullable, nil
	}
	return false, incompatible(source, *eff)
}

func incompatible(source, dest Column) error {
	return &ReconcileError{Kind: KindIncompatibleType, Column: dest.Name, From: source.Type, To: dest.Type}
}

func equalDefaults(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func signLabel(unsigned bool) string {
	if unsigned {
		return "unsigned"
	}
	return "signed"
}
