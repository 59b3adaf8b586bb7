package main

// ColumnType is one of the closed set of column types the engine understands.
type ColumnType string

const (
	TypeTinyInt    ColumnType = "tinyint"
	TypeSmallInt   ColumnType = "smallint"
	TypeMediumInt  ColumnType = "mediumint"
	TypeInt        ColumnType = "int"
	TypeBigInt     ColumnType = "bigint"
	TypeFloat      ColumnType = "float"
	TypeChar       ColumnType = "char"
	TypeVarchar    ColumnType = "varchar"
	TypeVarbinary  ColumnType = "varbinary"
	TypeText       ColumnType = "text"
	TypeMediumText ColumnType = "mediumtext"
	TypeBlob       ColumnType = "blob"
	TypeMediumBlob ColumnType = "mediumblob"
	TypeDate       ColumnType = "date"
)

// legalUpgrades lists, for each type, every type it may be widened into
// (itself included). Read-only after init.
var legalUpgrades = map[ColumnType][]ColumnType{
	TypeTinyInt:    {TypeTinyInt, TypeSmallInt, TypeMediumInt, TypeInt, TypeBigInt, TypeFloat},
	TypeSmallInt:   {TypeSmallInt, TypeMediumInt, TypeInt, TypeBigInt, TypeFloat},
	TypeMediumInt:  {TypeMediumInt, TypeInt, TypeBigInt, TypeFloat},
	TypeInt:        {TypeInt, TypeBigInt, TypeFloat},
	TypeBigInt:     {TypeBigInt, TypeFloat},
	TypeFloat:      {TypeFloat},
	TypeChar:       {TypeChar, TypeVarchar, TypeText, TypeMediumText},
	TypeVarchar:    {TypeVarchar, TypeText, TypeMediumText},
	TypeText:       {TypeText, TypeMediumText},
	TypeMediumText: {TypeMediumText},
	TypeVarbinary:  {TypeVarbinary},
	TypeBlob:       {TypeBlob, TypeMediumBlob},
	TypeMediumBlob: {TypeMediumBlob},
	TypeDate:       {TypeDate},
}

// IsKnownType reports whether t belongs to the closed type enumeration.
func IsKnownType(t ColumnType) bool {
	_, ok := legalUpgrades[t]
	return ok
}

// IsLegalUpgrade reports whether a column of type from may be altered to type to
// without losing data.
func IsLegalUpgrade(from, to ColumnType) bool {
	for _, t := range legalUpgrades[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsSuperset reports whether from is strictly broader than to, i.e. a live
// column of type from already holds everything a column of type to could.
func IsSuperset(from, to ColumnType) bool {
	return from != to && IsLegalUpgrade(to, from)
}

func isIntegerType(t ColumnType) bool {
	switch t {
	case TypeTinyInt, TypeSmallInt, TypeMediumInt, TypeInt, TypeBigInt:
		return true
	}
	return false
}

func isNumericType(t ColumnType) bool {
	return isIntegerType(t) || t == TypeFloat
}

// isSizedType reports whether the type requires an explicit length.
func isSizedType(t ColumnType) bool {
	switch t {
	case TypeChar, TypeVarchar, TypeVarbinary:
		return true
	}
	return false
}

// isLobType reports whether the type is an unbounded text or binary type.
// These carry neither size nor default.
func isLobType(t ColumnType) bool {
	switch t {
	case TypeText, TypeMediumText, TypeBlob, TypeMediumBlob:
		return true
	}
	return false
}

// isPrefixableType reports whether index entries over the type may carry a
// prefix length.
func isPrefixableType(t ColumnType) bool {
	return isSizedType(t) || isLobType(t)
}
