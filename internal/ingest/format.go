// Package ingest reads OTLP telemetry from files or byte streams, detects
// the encoding, decodes it and appends flattened rows to a buffer set under
// a configurable error policy.
package ingest

import (
	"bytes"
	"path"
	"strings"

	"github.com/go-faster/jx"
)

// Format is the detected encoding of an input document.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatProtobuf
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatProtobuf:
		return "protobuf"
	default:
		return "unknown"
	}
}

// Signal is an OTLP signal type.
type Signal uint8

const (
	SignalUnknown Signal = iota
	SignalTraces
	SignalMetrics
	SignalLogs
)

// String implements fmt.Stringer.
func (s Signal) String() string {
	switch s {
	case SignalTraces:
		return "traces"
	case SignalMetrics:
		return "metrics"
	case SignalLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// DetectFormat sniffs the input encoding from a sample prefix.
//
// Input whose first non-whitespace byte is '{' or '[' is JSON. Otherwise a
// first byte of 0x0A or 0x12 (protobuf field 1 or 2, length-delimited: the
// leading tags of every OTLP message) or any other non-printable control
// byte means protobuf. Everything else is unknown and fails closed.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	if len(data) == 0 {
		return FormatUnknown
	}
	switch b := data[0]; {
	case b == 0x0A || b == 0x12:
		return FormatProtobuf
	case b < 0x20 && b != '\n' && b != '\r' && b != '\t':
		return FormatProtobuf
	default:
		return FormatUnknown
	}
}

// DetectJSONSignal inspects the top-level keys of an OTLP JSON object and
// returns the signal it carries. Malformed JSON and objects without a
// resource key map to SignalUnknown.
func DetectJSONSignal(data []byte) Signal {
	d := jx.DecodeBytes(data)
	sig := SignalUnknown
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "resourceSpans":
			sig = SignalTraces
		case "resourceMetrics":
			sig = SignalMetrics
		case "resourceLogs":
			sig = SignalLogs
		}
		return d.Skip()
	}); err != nil {
		return SignalUnknown
	}
	return sig
}

// DetectJSONLines reports whether a sample prefix looks like JSON Lines: at
// least two lines that each parse as an OTLP JSON object with a known
// signal. A truncated trailing line does not count.
func DetectJSONLines(sample []byte) bool {
	var n int
	for _, line := range bytes.Split(sample, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		if DetectJSONSignal(line) == SignalUnknown {
			continue
		}
		if n++; n >= 2 {
			return true
		}
	}
	return false
}

// jsonLinesExt reports whether the source name carries a JSON Lines file
// extension, before any .gz suffix.
func jsonLinesExt(name string) bool {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".gz")
	switch path.Ext(name) {
	case ".jsonl", ".ndjson":
		return true
	default:
		return false
	}
}
