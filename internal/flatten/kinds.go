// Package flatten converts decoded OTLP signals into fixed typed rows, one
// row per span, log record, or metric data point.
package flatten

import (
	"go.opentelemetry.io/collector/pdata/ptrace"
)

// SpanKindString maps a span kind to its stored label. Unknown kinds map to
// UNSPECIFIED.
func SpanKindString(kind ptrace.SpanKind) string {
	switch kind {
	case ptrace.SpanKindInternal:
		return "INTERNAL"
	case ptrace.SpanKindServer:
		return "SERVER"
	case ptrace.SpanKindClient:
		return "CLIENT"
	case ptrace.SpanKindProducer:
		return "PRODUCER"
	case ptrace.SpanKindConsumer:
		return "CONSUMER"
	default:
		return "UNSPECIFIED"
	}
}

// StatusCodeString maps a span status code to its stored label. Unknown
// codes map to UNSET.
func StatusCodeString(code ptrace.StatusCode) string {
	switch code {
	case ptrace.StatusCodeOk:
		return "OK"
	case ptrace.StatusCodeError:
		return "ERROR"
	default:
		return "UNSET"
	}
}
