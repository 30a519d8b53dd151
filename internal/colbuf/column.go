// Package colbuf implements bounded, thread-safe columnar ring buffers for
// flattened telemetry rows: rows accumulate in a building chunk, sealed
// chunks are immutable and carry pruning statistics, and the oldest chunks
// are evicted first once the buffer is full.
package colbuf

import (
	"fmt"
	"math"

	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

// column is contiguous storage for one typed, nullable column.
//
// Scalar payloads share the nums slice (timestamps and integers directly,
// floats as IEEE bits, bools as 0/1); each list payload has its own slice.
// Only the slice matching typ is populated.
type column struct {
	typ   otelschema.ColumnType
	valid []bool

	nums       []uint64
	strs       []string
	uintLists  [][]uint64
	floatLists [][]float64
	timeLists  [][]otelstorage.Timestamp
	strLists   [][]string
	attrs      []otelstorage.Attrs
	attrsLists [][]otelstorage.Attrs
}

func newColumn(typ otelschema.ColumnType) *column {
	return &column{typ: typ}
}

func (c *column) len() int { return len(c.valid) }

// append stores v, which must be null or match c.typ.
func (c *column) append(v otelschema.Value) {
	c.valid = append(c.valid, !v.IsNull())
	switch c.typ {
	case otelschema.TypeTimestamp:
		c.nums = append(c.nums, uint64(v.Timestamp()))
	case otelschema.TypeInt32, otelschema.TypeInt64:
		c.nums = append(c.nums, uint64(v.Int64()))
	case otelschema.TypeUint32, otelschema.TypeUint64:
		c.nums = append(c.nums, v.Uint64())
	case otelschema.TypeFloat64:
		c.nums = append(c.nums, math.Float64bits(v.Float64()))
	case otelschema.TypeBool:
		var n uint64
		if v.Bool() {
			n = 1
		}
		c.nums = append(c.nums, n)
	case otelschema.TypeString:
		c.strs = append(c.strs, v.Str())
	case otelschema.TypeUintList:
		c.uintLists = append(c.uintLists, v.Uints())
	case otelschema.TypeFloatList:
		c.floatLists = append(c.floatLists, v.Floats())
	case otelschema.TypeTimestampList:
		c.timeLists = append(c.timeLists, v.Timestamps())
	case otelschema.TypeStringList:
		c.strLists = append(c.strLists, v.Strs())
	case otelschema.TypeAttrMap:
		c.attrs = append(c.attrs, v.Attrs())
	case otelschema.TypeAttrMapList:
		c.attrsLists = append(c.attrsLists, v.AttrsSlice())
	default:
		panic(fmt.Sprintf("colbuf: append to %v column", c.typ))
	}
}

// value reconstructs the cell at row i.
func (c *column) value(i int) otelschema.Value {
	if !c.valid[i] {
		return otelschema.Null()
	}
	switch c.typ {
	case otelschema.TypeTimestamp:
		return otelschema.TS(otelstorage.Timestamp(c.nums[i]))
	case otelschema.TypeInt32, otelschema.TypeInt64:
		return otelschema.Int(int64(c.nums[i]))
	case otelschema.TypeUint32, otelschema.TypeUint64:
		return otelschema.Uint(c.nums[i])
	case otelschema.TypeFloat64:
		return otelschema.Float(math.Float64frombits(c.nums[i]))
	case otelschema.TypeBool:
		return otelschema.Bool(c.nums[i] != 0)
	case otelschema.TypeString:
		return otelschema.Str(c.strs[i])
	case otelschema.TypeUintList:
		return otelschema.UintList(c.uintLists[i])
	case otelschema.TypeFloatList:
		return otelschema.FloatList(c.floatLists[i])
	case otelschema.TypeTimestampList:
		return otelschema.TSList(c.timeLists[i])
	case otelschema.TypeStringList:
		return otelschema.StrList(c.strLists[i])
	case otelschema.TypeAttrMap:
		return otelschema.AttrsValue(c.attrs[i])
	case otelschema.TypeAttrMapList:
		return otelschema.AttrsList(c.attrsLists[i])
	default:
		panic(fmt.Sprintf("colbuf: read from %v column", c.typ))
	}
}
