package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a table could not be reconciled.
type ErrorKind string

const (
	KindIncompatibleType       ErrorKind = "IncompatibleType"
	KindUnsupportedSignChange  ErrorKind = "UnsupportedSignChange"
	KindPrimaryKeyRedefinition ErrorKind = "PrimaryKeyRedefinition"
	KindUnknownColumnType      ErrorKind = "UnknownColumnType"
	KindInvalidSchema          ErrorKind = "InvalidSchema"
)

// Sentinels for errors.Is. A *ReconcileError matches the sentinel of its kind.
var (
	ErrIncompatibleType       = errors.New("incompatible column type")
	ErrUnsupportedSignChange  = errors.New("unsupported sign change")
	ErrPrimaryKeyRedefinition = errors.New("primary key redefinition")
	ErrUnknownColumnType      = errors.New("unknown column type")
	ErrInvalidSchema          = errors.New("invalid schema")
)

var kindSentinels = map[ErrorKind]error{
	KindIncompatibleType:       ErrIncompatibleType,
	KindUnsupportedSignChange:  ErrUnsupportedSignChange,
	KindPrimaryKeyRedefinition: ErrPrimaryKeyRedefinition,
	KindUnknownColumnType:      ErrUnknownColumnType,
	KindInvalidSchema:          ErrInvalidSchema,
}

// ReconcileError describes a change the engine refuses to make.
type ReconcileError struct {
	Kind   ErrorKind
	Table  string
	Column string
	Index  string
	From   ColumnType
	To     ColumnType
	Detail string
}

func (e *ReconcileError) Error() string {
	var b strings.Builder
	b.WriteString(kindSentinels[e.Kind].Error())

	var where []string
	if e.Table != "" {
		where = append(where, "table "+e.Table)
	}
	if e.Column != "" {
		where = append(where, "column "+e.Column)
	}
	if e.Index != "" {
		where = append(where, "index "+e.Index)
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteString(")")
	}
	if e.From != "" || e.To != "" {
		fmt.Fprintf(&b, ": %s -> %s", typeLabel(e.From), typeLabel(e.To))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ReconcileError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func typeLabel(t ColumnType) string {
	if t == "" {
		return "(none)"
	}
	return string(t)
}

// errorKindOf returns the kind of a reconciliation failure, or "" if err is
// not one.
func errorKindOf(err error) ErrorKind {
	var re *ReconcileError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// withTable returns err annotated with the table name when it is a
// *ReconcileError that has none yet.
func withTable(err error, table string) error {
	var re *ReconcileError
	if errors.As(err, &re) && re.Table == "" {
		cp := *re
		cp.Table = table
		return &cp
	}
	return err
}
