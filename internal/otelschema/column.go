// Package otelschema defines the typed row layouts for stored OTLP telemetry:
// one layout per table (traces, logs, five metric shapes) plus the
// synthesized metrics union layout.
package otelschema

import "fmt"

// ColumnType is a semantic column type.
type ColumnType uint8

const (
	TypeInvalid ColumnType = iota
	// TypeTimestamp is a 64-bit UNIX epoch timestamp, nanoseconds.
	TypeTimestamp
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat64
	TypeBool
	TypeString
	// List types are ordered sequences of one element type.
	TypeUintList
	TypeFloatList
	TypeTimestampList
	TypeStringList
	// TypeAttrMap is an ordered string-to-string mapping with unique keys.
	TypeAttrMap
	TypeAttrMapList
)

// String implements fmt.Stringer.
func (t ColumnType) String() string {
	switch t {
	case TypeTimestamp:
		return "timestamp"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUint64:
		return "uint64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeUintList:
		return "list<uint64>"
	case TypeFloatList:
		return "list<float64>"
	case TypeTimestampList:
		return "list<timestamp>"
	case TypeStringList:
		return "list<string>"
	case TypeAttrMap:
		return "map<string,string>"
	case TypeAttrMapList:
		return "list<map<string,string>>"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(t))
	}
}

// Column is a named, typed column of a Schema.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is an ordered list of typed columns.
//
// Column 0 is the designated timestamp column for every layout. ServiceCol
// and MetricCol designate the dimension columns tracked by chunk statistics;
// -1 means the dimension is not tracked for this layout.
type Schema struct {
	Name       string
	Columns    []Column
	ServiceCol int
	MetricCol  int
}

// NumColumns returns the column count.
func (s Schema) NumColumns() int { return len(s.Columns) }

// Validate reports whether row cells type-match the schema.
//
// A mismatch is a programming-contract violation: callers writing rows are
// expected to produce schema-shaped data, so storage panics on it rather
// than returning an error.
func (s Schema) Validate(row []Value) error {
	if len(row) != len(s.Columns) {
		return fmt.Errorf("%s: row arity %d, schema has %d columns", s.Name, len(row), len(s.Columns))
	}
	for i, v := range row {
		if !v.Matches(s.Columns[i].Type) {
			return fmt.Errorf("%s: column %q: %v cell does not match %v",
				s.Name, s.Columns[i].Name, v.Kind(), s.Columns[i].Type)
		}
	}
	return nil
}
