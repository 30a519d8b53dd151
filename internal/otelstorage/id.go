// Package otelstorage provides common OpenTelemetry value types shared by
// the flattener and the columnar store.
package otelstorage

import "go.opentelemetry.io/collector/pdata/pcommon"

const hextable = "0123456789abcdef"

func appendHex(dst []byte, src []byte) []byte {
	for _, c := range src {
		dst = append(dst, hextable[c>>4], hextable[c&0x0f])
	}
	return dst
}

// TraceID is OpenTelemetry trace ID.
type TraceID [16]byte

// IsEmpty returns true if trace ID is empty.
func (id TraceID) IsEmpty() bool {
	return pcommon.TraceID(id).IsEmpty()
}

// Hex returns a lowercase hex representation of TraceID.
func (id TraceID) Hex() string {
	return string(appendHex(make([]byte, 0, len(id)*2), id[:]))
}

// SpanID is OpenTelemetry span ID.
type SpanID [8]byte

// IsEmpty returns true if span ID is empty.
func (id SpanID) IsEmpty() bool {
	return pcommon.SpanID(id).IsEmpty()
}

// Hex returns a lowercase hex representation of SpanID.
func (id SpanID) Hex() string {
	return string(appendHex(make([]byte, 0, len(id)*2), id[:]))
}
