package main

import "testing"

func TestIsLegalUpgrade(t *testing.T) {
	tests := []struct {
		from, to ColumnType
		want     bool
	}{
		{TypeTinyInt, TypeTinyInt, true},
		{TypeTinyInt, TypeBigInt, true},
		{TypeTinyInt, TypeFloat, true},
		{TypeInt, TypeBigInt, true},
		{TypeInt, TypeMediumInt, false},
		{TypeBigInt, TypeInt, false},
		{TypeFloat, TypeBigInt, false},
		{TypeChar, TypeVarchar, true},
		{TypeChar, TypeMediumText, true},
		{TypeVarchar, TypeChar, false},
		{TypeText, TypeMediumText, true},
		{TypeMediumText, TypeText, false},
		{TypeVarbinary, TypeBlob, false},
		{TypeBlob, TypeMediumBlob, true},
		{TypeDate, TypeDate, true},
		{TypeDate, TypeVarchar, false},
		{TypeInt, TypeVarchar, false},
		{ColumnType("datetime"), ColumnType("datetime"), false},
	}
	for _, tt := range tests {
		if got := IsLegalUpgrade(tt.from, tt.to); got != tt.want {
			t.Errorf("IsLegalUpgrade(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsSuperset(t *testing.T) {
	tests := []struct {
		from, to ColumnType
		want     bool
	}{
		{TypeBigInt, TypeInt, true},
		{TypeFloat, TypeTinyInt, true},
		{TypeMediumText, TypeChar, true},
		{TypeVarchar, TypeChar, true},
		{TypeMediumBlob, TypeBlob, true},
		{TypeInt, TypeInt, false},
		{TypeInt, TypeBigInt, false},
		{TypeText, TypeBlob, false},
		{TypeVarbinary, TypeVarbinary, false},
	}
	for _, tt := range tests {
		if got := IsSuperset(tt.from, tt.to); got != tt.want {
			t.Errorf("IsSuperset(%s, %s) = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

// A type is never compatible backward: if a legal upgrade exists both ways the
// types must be equal.
func TestLatticeIsAntisymmetric(t *testing.T) {
	for from := range legalUpgrades {
		for to := range legalUpgrades {
			if from != to && IsLegalUpgrade(from, to) && IsLegalUpgrade(to, from) {
				t.Errorf("%s and %s upgrade into each other", from, to)
			}
			if IsSuperset(from, to) && IsSuperset(to, from) {
				t.Errorf("%s and %s are supersets of each other", from, to)
			}
		}
	}
}

func TestEveryTypeUpgradesToItself(t *testing.T) {
	for typ := range legalUpgrades {
		if !IsLegalUpgrade(typ, typ) {
			t.Errorf("%s does not upgrade to itself", typ)
		}
	}
}

func TestIsKnownType(t *testing.T) {
	if !IsKnownType(TypeMediumBlob) {
		t.Error("mediumblob should be known")
	}
	for _, typ := range []ColumnType{"datetime", "json", "enum", ""} {
		if IsKnownType(typ) {
			t.Errorf("%q should not be known", typ)
		}
	}
}
