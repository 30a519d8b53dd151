package otelstorage

import (
	"strconv"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/collector/pdata/pcommon"
)

// Attr is a single flattened attribute: the value is always rendered as a
// string, nested values as compact JSON.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered set of flattened attributes with unique keys.
type Attrs []Attr

// Get returns the value for key, if present.
func (m Attrs) Get(key string) (string, bool) {
	for _, kv := range m {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// IsZero whether Attrs is zero value.
func (m Attrs) IsZero() bool {
	return len(m) == 0
}

// FlattenAttrs converts attributes to flattened key/value pairs, preserving
// map order.
func FlattenAttrs(m pcommon.Map) Attrs {
	if m.Len() == 0 {
		return nil
	}
	attrs := make(Attrs, 0, m.Len())
	m.Range(func(k string, v pcommon.Value) bool {
		attrs = append(attrs, Attr{Key: k, Value: ValueString(v)})
		return true
	})
	return attrs
}

// ValueString renders an attribute value as a string.
//
// Scalars stringify directly; nested maps and slices are serialized to
// compact JSON so no information is dropped.
func ValueString(v pcommon.Value) string {
	switch v.Type() {
	case pcommon.ValueTypeStr:
		return v.Str()
	case pcommon.ValueTypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case pcommon.ValueTypeDouble:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case pcommon.ValueTypeBool:
		return strconv.FormatBool(v.Bool())
	case pcommon.ValueTypeMap, pcommon.ValueTypeSlice, pcommon.ValueTypeBytes:
		var e jx.Encoder
		encodeValue(v, &e)
		return e.String()
	default:
		return ""
	}
}

func encodeValue(v pcommon.Value, e *jx.Encoder) {
	switch v.Type() {
	case pcommon.ValueTypeStr:
		e.Str(v.Str())
	case pcommon.ValueTypeInt:
		e.Int64(v.Int())
	case pcommon.ValueTypeDouble:
		e.Float64(v.Double())
	case pcommon.ValueTypeBool:
		e.Bool(v.Bool())
	case pcommon.ValueTypeBytes:
		e.Base64(v.Bytes().AsRaw())
	case pcommon.ValueTypeMap:
		e.Obj(func(e *jx.Encoder) {
			v.Map().Range(func(k string, v pcommon.Value) bool {
				return !e.Field(k, func(e *jx.Encoder) {
					encodeValue(v, e)
				})
			})
		})
	case pcommon.ValueTypeSlice:
		e.Arr(func(e *jx.Encoder) {
			s := v.Slice()
			for i := 0; i < s.Len(); i++ {
				encodeValue(s.At(i), e)
			}
		})
	default:
		e.Null()
	}
}

// DefaultServiceName is used when resource attributes carry no service.name.
const DefaultServiceName = "unknown_service"

// ServiceName extracts service.name from resource attributes.
func ServiceName(res pcommon.Resource) string {
	if v, ok := res.Attributes().Get("service.name"); ok && v.Type() == pcommon.ValueTypeStr {
		return v.Str()
	}
	return DefaultServiceName
}
