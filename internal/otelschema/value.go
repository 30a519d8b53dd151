package otelschema

import (
	"math"

	"github.com/go-faster/otelbuf/internal/otelstorage"
)

// ValueKind tags the payload carried by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindTimestamp
	KindInt
	KindUint
	KindFloat
	KindBool
	KindString
	KindUintList
	KindFloatList
	KindTimestampList
	KindStringList
	KindAttrs
	KindAttrsList
)

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindTimestamp:
		return "timestamp"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindUintList:
		return "uint_list"
	case KindFloatList:
		return "float_list"
	case KindTimestampList:
		return "timestamp_list"
	case KindStringList:
		return "string_list"
	case KindAttrs:
		return "attrs"
	case KindAttrsList:
		return "attrs_list"
	default:
		return "unknown"
	}
}

// Value is one typed, nullable row cell.
//
// Signed and unsigned integers of any width share KindInt/KindUint; the
// schema column type carries the semantic width.
type Value struct {
	kind ValueKind
	num  uint64
	str  string

	uints  []uint64
	floats []float64
	times  []otelstorage.Timestamp
	strs   []string
	attrs  otelstorage.Attrs
	maps   []otelstorage.Attrs
}

// Null returns a null cell.
func Null() Value { return Value{kind: KindNull} }

// TS returns a timestamp cell.
func TS(ts otelstorage.Timestamp) Value { return Value{kind: KindTimestamp, num: uint64(ts)} }

// Int returns a signed integer cell.
func Int(v int64) Value { return Value{kind: KindInt, num: uint64(v)} }

// Uint returns an unsigned integer cell.
func Uint(v uint64) Value { return Value{kind: KindUint, num: v} }

// Float returns a float64 cell.
func Float(v float64) Value { return Value{kind: KindFloat, num: math.Float64bits(v)} }

// Bool returns a bool cell.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Str returns a string cell.
func Str(v string) Value { return Value{kind: KindString, str: v} }

// UintList returns a list<uint64> cell.
func UintList(v []uint64) Value { return Value{kind: KindUintList, uints: v} }

// FloatList returns a list<float64> cell.
func FloatList(v []float64) Value { return Value{kind: KindFloatList, floats: v} }

// TSList returns a list<timestamp> cell.
func TSList(v []otelstorage.Timestamp) Value { return Value{kind: KindTimestampList, times: v} }

// StrList returns a list<string> cell.
func StrList(v []string) Value { return Value{kind: KindStringList, strs: v} }

// AttrsValue returns a map<string,string> cell.
func AttrsValue(v otelstorage.Attrs) Value { return Value{kind: KindAttrs, attrs: v} }

// AttrsList returns a list<map<string,string>> cell.
func AttrsList(v []otelstorage.Attrs) Value { return Value{kind: KindAttrsList, maps: v} }

// Kind returns the value kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Timestamp returns the timestamp payload.
func (v Value) Timestamp() otelstorage.Timestamp { return otelstorage.Timestamp(v.num) }

// Int64 returns the signed integer payload.
func (v Value) Int64() int64 { return int64(v.num) }

// Uint64 returns the unsigned integer payload.
func (v Value) Uint64() uint64 { return v.num }

// Float64 returns the float payload.
func (v Value) Float64() float64 { return math.Float64frombits(v.num) }

// Bool returns the bool payload.
func (v Value) Bool() bool { return v.num != 0 }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Uints returns the list<uint64> payload.
func (v Value) Uints() []uint64 { return v.uints }

// Floats returns the list<float64> payload.
func (v Value) Floats() []float64 { return v.floats }

// Timestamps returns the list<timestamp> payload.
func (v Value) Timestamps() []otelstorage.Timestamp { return v.times }

// Strs returns the list<string> payload.
func (v Value) Strs() []string { return v.strs }

// Attrs returns the map payload.
func (v Value) Attrs() otelstorage.Attrs { return v.attrs }

// AttrsSlice returns the list-of-maps payload.
func (v Value) AttrsSlice() []otelstorage.Attrs { return v.maps }

// Matches reports whether the cell may be stored in a column of type t.
// Null matches every column type.
func (v Value) Matches(t ColumnType) bool {
	if v.kind == KindNull {
		return true
	}
	switch t {
	case TypeTimestamp:
		return v.kind == KindTimestamp
	case TypeInt32, TypeInt64:
		return v.kind == KindInt
	case TypeUint32, TypeUint64:
		return v.kind == KindUint
	case TypeFloat64:
		return v.kind == KindFloat
	case TypeBool:
		return v.kind == KindBool
	case TypeString:
		return v.kind == KindString
	case TypeUintList:
		return v.kind == KindUintList
	case TypeFloatList:
		return v.kind == KindFloatList
	case TypeTimestampList:
		return v.kind == KindTimestampList
	case TypeStringList:
		return v.kind == KindStringList
	case TypeAttrMap:
		return v.kind == KindAttrs
	case TypeAttrMapList:
		return v.kind == KindAttrsList
	default:
		return false
	}
}

// Equal reports deep equality of two cells. Null equals only null.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindTimestamp, KindInt, KindUint, KindBool:
		return v.num == o.num
	case KindFloat:
		return v.Float64() == o.Float64()
	case KindString:
		return v.str == o.str
	case KindUintList:
		return equalSlices(v.uints, o.uints)
	case KindFloatList:
		return equalSlices(v.floats, o.floats)
	case KindTimestampList:
		return equalSlices(v.times, o.times)
	case KindStringList:
		return equalSlices(v.strs, o.strs)
	case KindAttrs:
		return equalAttrs(v.attrs, o.attrs)
	case KindAttrsList:
		if len(v.maps) != len(o.maps) {
			return false
		}
		for i := range v.maps {
			if !equalAttrs(v.maps[i], o.maps[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalAttrs(a, b otelstorage.Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
