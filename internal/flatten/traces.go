package flatten

import (
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

func traceIDHex(id pcommon.TraceID) string {
	v := otelstorage.TraceID(id)
	if v.IsEmpty() {
		return ""
	}
	return v.Hex()
}

func spanIDHex(id pcommon.SpanID) string {
	v := otelstorage.SpanID(id)
	if v.IsEmpty() {
		return ""
	}
	return v.Hex()
}

// Traces flattens spans into rows shaped like otelschema.Traces, one per
// span. The row timestamp is the span start; Duration is end minus start in
// nanoseconds and may be negative when the input is inverted.
func Traces(td ptrace.Traces) [][]otelschema.Value {
	rows := make([][]otelschema.Value, 0, td.SpanCount())
	list := td.ResourceSpans()
	for i := 0; i < list.Len(); i++ {
		rs := list.At(i)
		service := otelstorage.ServiceName(rs.Resource())
		resAttrs := otelstorage.FlattenAttrs(rs.Resource().Attributes())

		scopes := rs.ScopeSpans()
		for j := 0; j < scopes.Len(); j++ {
			ss := scopes.At(j)
			scope := ss.Scope()

			spans := ss.Spans()
			for k := 0; k < spans.Len(); k++ {
				rows = append(rows, spanRow(spans.At(k), service, resAttrs, scope))
			}
		}
	}
	return rows
}

func spanRow(span ptrace.Span, service string, resAttrs otelstorage.Attrs, scope pcommon.InstrumentationScope) []otelschema.Value {
	row := make([]otelschema.Value, otelschema.TracesNumColumns)

	row[otelschema.TracesColTimestamp] = otelschema.TS(span.StartTimestamp())
	row[otelschema.TracesColTraceID] = otelschema.Str(traceIDHex(span.TraceID()))
	row[otelschema.TracesColSpanID] = otelschema.Str(spanIDHex(span.SpanID()))
	row[otelschema.TracesColParentSpanID] = otelschema.Str(spanIDHex(span.ParentSpanID()))
	row[otelschema.TracesColTraceState] = otelschema.Str(span.TraceState().AsRaw())
	row[otelschema.TracesColSpanName] = otelschema.Str(span.Name())
	row[otelschema.TracesColSpanKind] = otelschema.Str(SpanKindString(span.Kind()))
	row[otelschema.TracesColServiceName] = otelschema.Str(service)
	row[otelschema.TracesColResourceAttributes] = otelschema.AttrsValue(resAttrs)
	row[otelschema.TracesColScopeName] = otelschema.Str(scope.Name())
	row[otelschema.TracesColScopeVersion] = otelschema.Str(scope.Version())
	row[otelschema.TracesColSpanAttributes] = otelschema.AttrsValue(otelstorage.FlattenAttrs(span.Attributes()))
	row[otelschema.TracesColDuration] = otelschema.Int(int64(span.EndTimestamp()) - int64(span.StartTimestamp()))
	row[otelschema.TracesColStatusCode] = otelschema.Str(StatusCodeString(span.Status().Code()))
	row[otelschema.TracesColStatusMessage] = otelschema.Str(span.Status().Message())

	events := span.Events()
	eventTimes := make([]otelstorage.Timestamp, events.Len())
	eventNames := make([]string, events.Len())
	eventAttrs := make([]otelstorage.Attrs, events.Len())
	for i := 0; i < events.Len(); i++ {
		e := events.At(i)
		eventTimes[i] = e.Timestamp()
		eventNames[i] = e.Name()
		eventAttrs[i] = otelstorage.FlattenAttrs(e.Attributes())
	}
	row[otelschema.TracesColEventsTimestamp] = otelschema.TSList(eventTimes)
	row[otelschema.TracesColEventsName] = otelschema.StrList(eventNames)
	row[otelschema.TracesColEventsAttributes] = otelschema.AttrsList(eventAttrs)

	links := span.Links()
	linkTraceIDs := make([]string, links.Len())
	linkSpanIDs := make([]string, links.Len())
	linkStates := make([]string, links.Len())
	linkAttrs := make([]otelstorage.Attrs, links.Len())
	for i := 0; i < links.Len(); i++ {
		l := links.At(i)
		linkTraceIDs[i] = traceIDHex(l.TraceID())
		linkSpanIDs[i] = spanIDHex(l.SpanID())
		linkStates[i] = l.TraceState().AsRaw()
		linkAttrs[i] = otelstorage.FlattenAttrs(l.Attributes())
	}
	row[otelschema.TracesColLinksTraceID] = otelschema.StrList(linkTraceIDs)
	row[otelschema.TracesColLinksSpanID] = otelschema.StrList(linkSpanIDs)
	row[otelschema.TracesColLinksTraceState] = otelschema.StrList(linkStates)
	row[otelschema.TracesColLinksAttributes] = otelschema.AttrsList(linkAttrs)

	return row
}
