// Package scan reads snapshots of columnar buffers with predicate pushdown:
// chunk statistics prune whole chunks, per-row predicates select within them,
// and an atomic cursor lets any number of workers share one scan.
package scan

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/go-faster/otelbuf/internal/otelschema"
)

// Op is a predicate operator.
type Op uint8

const (
	OpEq Op = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpIsNull
	OpIsNotNull
)

// String implements fmt.Stringer.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpIsNull:
		return "IS NULL"
	case OpIsNotNull:
		return "IS NOT NULL"
	default:
		return "?"
	}
}

func (o Op) ordered() bool {
	switch o {
	case OpLt, OpLtEq, OpGt, OpGtEq:
		return true
	default:
		return false
	}
}

// Predicate is one pushed-down column filter. Value is the comparison
// constant; null checks ignore it.
type Predicate struct {
	Col   int
	Op    Op
	Value otelschema.Value
}

func orderable(t otelschema.ColumnType) bool {
	switch t {
	case otelschema.TypeTimestamp,
		otelschema.TypeInt32, otelschema.TypeInt64,
		otelschema.TypeUint32, otelschema.TypeUint64,
		otelschema.TypeFloat64, otelschema.TypeBool, otelschema.TypeString:
		return true
	default:
		return false
	}
}

// bindPredicates validates predicates against a schema. Validation happens
// once at scanner construction so per-row evaluation can assume well-formed
// input.
func bindPredicates(s otelschema.Schema, preds []Predicate) error {
	for _, p := range preds {
		if p.Col < 0 || p.Col >= s.NumColumns() {
			return errors.Errorf("%s: predicate column %d out of range", s.Name, p.Col)
		}
		col := s.Columns[p.Col]
		switch p.Op {
		case OpIsNull, OpIsNotNull:
		case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq:
			if !p.Value.Matches(col.Type) {
				return errors.Errorf("%s: column %q: %v constant does not match %v",
					s.Name, col.Name, p.Value.Kind(), col.Type)
			}
			if p.Op.ordered() && !orderable(col.Type) {
				return errors.Errorf("%s: column %q: %v does not support %s",
					s.Name, col.Name, col.Type, p.Op)
			}
		default:
			return errors.Errorf("%s: unknown predicate operator %d", s.Name, uint8(p.Op))
		}
	}
	return nil
}

// matches evaluates the predicate against one cell.
//
// Null handling: IS NULL matches only null; equality against a null constant
// matches only null cells; inequality with exactly one null operand matches;
// ordered comparisons with a null operand never match.
func (p Predicate) matches(v otelschema.Value) bool {
	switch p.Op {
	case OpIsNull:
		return v.IsNull()
	case OpIsNotNull:
		return !v.IsNull()
	}
	if v.IsNull() || p.Value.IsNull() {
		switch p.Op {
		case OpEq:
			return v.IsNull() && p.Value.IsNull()
		case OpNotEq:
			return v.IsNull() != p.Value.IsNull()
		default:
			return false
		}
	}
	switch p.Op {
	case OpEq:
		return v.Equal(p.Value)
	case OpNotEq:
		return !v.Equal(p.Value)
	}
	c := compare(v, p.Value)
	switch p.Op {
	case OpLt:
		return c < 0
	case OpLtEq:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGtEq:
		return c >= 0
	default:
		return true
	}
}

// compare orders two non-null cells of the same kind.
func compare(a, b otelschema.Value) int {
	switch a.Kind() {
	case otelschema.KindTimestamp:
		return cmp(uint64(a.Timestamp()), uint64(b.Timestamp()))
	case otelschema.KindInt:
		return cmp(a.Int64(), b.Int64())
	case otelschema.KindUint:
		return cmp(a.Uint64(), b.Uint64())
	case otelschema.KindFloat:
		return cmp(a.Float64(), b.Float64())
	case otelschema.KindBool:
		return cmp(boolOrd(a.Bool()), boolOrd(b.Bool()))
	case otelschema.KindString:
		return strings.Compare(a.Str(), b.Str())
	default:
		return 0
	}
}

func cmp[T int64 | uint64 | float64 | int](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolOrd(v bool) int {
	if v {
		return 1
	}
	return 0
}
