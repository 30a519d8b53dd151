package flatten

import (
	"go.opentelemetry.io/collector/pdata/plog"

	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

// Logs flattens log records into rows shaped like otelschema.Logs, one per
// record. The body is stringified like attribute values: scalars verbatim,
// maps and slices as compact JSON.
func Logs(ld plog.Logs) [][]otelschema.Value {
	rows := make([][]otelschema.Value, 0, ld.LogRecordCount())
	list := ld.ResourceLogs()
	for i := 0; i < list.Len(); i++ {
		rl := list.At(i)
		service := otelstorage.ServiceName(rl.Resource())
		resAttrs := otelstorage.FlattenAttrs(rl.Resource().Attributes())
		resSchemaURL := rl.SchemaUrl()

		scopes := rl.ScopeLogs()
		for j := 0; j < scopes.Len(); j++ {
			sl := scopes.At(j)
			scope := sl.Scope()
			scopeAttrs := otelstorage.FlattenAttrs(scope.Attributes())

			records := sl.LogRecords()
			for k := 0; k < records.Len(); k++ {
				rec := records.At(k)
				row := make([]otelschema.Value, otelschema.LogsNumColumns)

				row[otelschema.LogsColTimestamp] = otelschema.TS(rec.Timestamp())
				row[otelschema.LogsColTraceID] = otelschema.Str(traceIDHex(rec.TraceID()))
				row[otelschema.LogsColSpanID] = otelschema.Str(spanIDHex(rec.SpanID()))
				row[otelschema.LogsColTraceFlags] = otelschema.Uint(uint64(uint32(rec.Flags())))
				row[otelschema.LogsColSeverityText] = otelschema.Str(rec.SeverityText())
				row[otelschema.LogsColSeverityNumber] = otelschema.Int(int64(rec.SeverityNumber()))
				row[otelschema.LogsColServiceName] = otelschema.Str(service)
				row[otelschema.LogsColBody] = otelschema.Str(otelstorage.ValueString(rec.Body()))
				row[otelschema.LogsColResourceSchemaURL] = otelschema.Str(resSchemaURL)
				row[otelschema.LogsColResourceAttributes] = otelschema.AttrsValue(resAttrs)
				row[otelschema.LogsColScopeSchemaURL] = otelschema.Str(sl.SchemaUrl())
				row[otelschema.LogsColScopeName] = otelschema.Str(scope.Name())
				row[otelschema.LogsColScopeVersion] = otelschema.Str(scope.Version())
				row[otelschema.LogsColScopeAttributes] = otelschema.AttrsValue(scopeAttrs)
				row[otelschema.LogsColLogAttributes] = otelschema.AttrsValue(otelstorage.FlattenAttrs(rec.Attributes()))

				rows = append(rows, row)
			}
		}
	}
	return rows
}
