package otelschema

// TableKind identifies one of the 7 stored tables.
type TableKind uint8

const (
	KindTraces TableKind = iota
	KindLogs
	KindMetricsGauge
	KindMetricsSum
	KindMetricsHistogram
	KindMetricsExpHistogram
	KindMetricsSummary

	// NumTables is the number of stored tables.
	NumTables = 7
)

// String implements fmt.Stringer.
func (k TableKind) String() string {
	switch k {
	case KindTraces:
		return "otel_traces"
	case KindLogs:
		return "otel_logs"
	case KindMetricsGauge:
		return "otel_metrics_gauge"
	case KindMetricsSum:
		return "otel_metrics_sum"
	case KindMetricsHistogram:
		return "otel_metrics_histogram"
	case KindMetricsExpHistogram:
		return "otel_metrics_exp_histogram"
	case KindMetricsSummary:
		return "otel_metrics_summary"
	default:
		return "otel_unknown"
	}
}

// ParseTableKind maps a table name to its kind.
func ParseTableKind(name string) (TableKind, bool) {
	for k := KindTraces; k <= KindMetricsSummary; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// MetricShape is one of the five OTLP metric data shapes.
type MetricShape uint8

const (
	ShapeGauge MetricShape = iota
	ShapeSum
	ShapeHistogram
	ShapeExpHistogram
	ShapeSummary

	// NumMetricShapes is the number of metric shapes.
	NumMetricShapes = 5
)

// String returns the union discriminator value for the shape.
func (s MetricShape) String() string {
	switch s {
	case ShapeGauge:
		return "gauge"
	case ShapeSum:
		return "sum"
	case ShapeHistogram:
		return "histogram"
	case ShapeExpHistogram:
		return "exponential_histogram"
	case ShapeSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// ParseMetricShape maps a discriminator string to a shape.
func ParseMetricShape(s string) (MetricShape, bool) {
	switch s {
	case "gauge":
		return ShapeGauge, true
	case "sum":
		return ShapeSum, true
	case "histogram":
		return ShapeHistogram, true
	case "exponential_histogram", "exp_histogram":
		return ShapeExpHistogram, true
	case "summary":
		return ShapeSummary, true
	default:
		return 0, false
	}
}

// TableKind returns the stored table for the shape.
func (s MetricShape) TableKind() TableKind {
	return KindMetricsGauge + TableKind(s)
}

// Traces table column indices.
const (
	TracesColTimestamp = iota
	TracesColTraceID
	TracesColSpanID
	TracesColParentSpanID
	TracesColTraceState
	TracesColSpanName
	TracesColSpanKind
	TracesColServiceName
	TracesColResourceAttributes
	TracesColScopeName
	TracesColScopeVersion
	TracesColSpanAttributes
	TracesColDuration
	TracesColStatusCode
	TracesColStatusMessage
	TracesColEventsTimestamp
	TracesColEventsName
	TracesColEventsAttributes
	TracesColLinksTraceID
	TracesColLinksSpanID
	TracesColLinksTraceState
	TracesColLinksAttributes

	TracesNumColumns
)

// Logs table column indices.
const (
	LogsColTimestamp = iota
	LogsColTraceID
	LogsColSpanID
	LogsColTraceFlags
	LogsColSeverityText
	LogsColSeverityNumber
	LogsColServiceName
	LogsColBody
	LogsColResourceSchemaURL
	LogsColResourceAttributes
	LogsColScopeSchemaURL
	LogsColScopeName
	LogsColScopeVersion
	LogsColScopeAttributes
	LogsColLogAttributes

	LogsNumColumns
)

// Base column indices shared by every metric table.
const (
	MetricColTimestamp = iota
	MetricColServiceName
	MetricColMetricName
	MetricColMetricDescription
	MetricColMetricUnit
	MetricColResourceAttributes
	MetricColScopeName
	MetricColScopeVersion
	MetricColAttributes

	MetricNumBaseColumns
)

// Gauge table shape-specific column indices.
const (
	GaugeColValue = MetricNumBaseColumns + iota

	GaugeNumColumns
)

// Sum table shape-specific column indices.
const (
	SumColValue = MetricNumBaseColumns + iota
	SumColAggregationTemporality
	SumColIsMonotonic

	SumNumColumns
)

// Histogram table shape-specific column indices.
const (
	HistogramColCount = MetricNumBaseColumns + iota
	HistogramColSum
	HistogramColBucketCounts
	HistogramColExplicitBounds
	HistogramColMin
	HistogramColMax

	HistogramNumColumns
)

// Exponential histogram table shape-specific column indices.
const (
	ExpHistogramColCount = MetricNumBaseColumns + iota
	ExpHistogramColSum
	ExpHistogramColScale
	ExpHistogramColZeroCount
	ExpHistogramColPositiveOffset
	ExpHistogramColPositiveBucketCounts
	ExpHistogramColNegativeOffset
	ExpHistogramColNegativeBucketCounts
	ExpHistogramColMin
	ExpHistogramColMax

	ExpHistogramNumColumns
)

// Summary table shape-specific column indices.
const (
	SummaryColCount = MetricNumBaseColumns + iota
	SummaryColSum
	SummaryColQuantileValues
	SummaryColQuantileQuantiles

	SummaryNumColumns
)

// Metrics union column indices: 9 base columns, the discriminator, then
// every shape-specific column.
const (
	UnionColMetricType = MetricNumBaseColumns + iota
	UnionColValue
	UnionColAggregationTemporality
	UnionColIsMonotonic
	UnionColCount
	UnionColSum
	UnionColBucketCounts
	UnionColExplicitBounds
	UnionColScale
	UnionColZeroCount
	UnionColPositiveOffset
	UnionColPositiveBucketCounts
	UnionColNegativeOffset
	UnionColNegativeBucketCounts
	UnionColQuantileValues
	UnionColQuantileQuantiles
	UnionColMin
	UnionColMax

	UnionNumColumns
)

func metricBaseColumns() []Column {
	return []Column{
		{Name: "Timestamp", Type: TypeTimestamp},
		{Name: "ServiceName", Type: TypeString},
		{Name: "MetricName", Type: TypeString},
		{Name: "MetricDescription", Type: TypeString},
		{Name: "MetricUnit", Type: TypeString},
		{Name: "ResourceAttributes", Type: TypeAttrMap},
		{Name: "ScopeName", Type: TypeString},
		{Name: "ScopeVersion", Type: TypeString},
		{Name: "Attributes", Type: TypeAttrMap},
	}
}

// Traces returns the traces table layout.
func Traces() Schema {
	return Schema{
		Name: KindTraces.String(),
		Columns: []Column{
			{Name: "Timestamp", Type: TypeTimestamp},
			{Name: "TraceId", Type: TypeString},
			{Name: "SpanId", Type: TypeString},
			{Name: "ParentSpanId", Type: TypeString},
			{Name: "TraceState", Type: TypeString},
			{Name: "SpanName", Type: TypeString},
			{Name: "SpanKind", Type: TypeString},
			{Name: "ServiceName", Type: TypeString},
			{Name: "ResourceAttributes", Type: TypeAttrMap},
			{Name: "ScopeName", Type: TypeString},
			{Name: "ScopeVersion", Type: TypeString},
			{Name: "SpanAttributes", Type: TypeAttrMap},
			{Name: "Duration", Type: TypeInt64},
			{Name: "StatusCode", Type: TypeString},
			{Name: "StatusMessage", Type: TypeString},
			{Name: "Events.Timestamp", Type: TypeTimestampList},
			{Name: "Events.Name", Type: TypeStringList},
			{Name: "Events.Attributes", Type: TypeAttrMapList},
			{Name: "Links.TraceId", Type: TypeStringList},
			{Name: "Links.SpanId", Type: TypeStringList},
			{Name: "Links.TraceState", Type: TypeStringList},
			{Name: "Links.Attributes", Type: TypeAttrMapList},
		},
		ServiceCol: TracesColServiceName,
		MetricCol:  -1,
	}
}

// Logs returns the logs table layout.
func Logs() Schema {
	return Schema{
		Name: KindLogs.String(),
		Columns: []Column{
			{Name: "Timestamp", Type: TypeTimestamp},
			{Name: "TraceId", Type: TypeString},
			{Name: "SpanId", Type: TypeString},
			{Name: "TraceFlags", Type: TypeUint32},
			{Name: "SeverityText", Type: TypeString},
			{Name: "SeverityNumber", Type: TypeInt32},
			{Name: "ServiceName", Type: TypeString},
			{Name: "Body", Type: TypeString},
			{Name: "ResourceSchemaUrl", Type: TypeString},
			{Name: "ResourceAttributes", Type: TypeAttrMap},
			{Name: "ScopeSchemaUrl", Type: TypeString},
			{Name: "ScopeName", Type: TypeString},
			{Name: "ScopeVersion", Type: TypeString},
			{Name: "ScopeAttributes", Type: TypeAttrMap},
			{Name: "LogAttributes", Type: TypeAttrMap},
		},
		ServiceCol: LogsColServiceName,
		MetricCol:  -1,
	}
}

func metricSchema(name string, specific ...Column) Schema {
	return Schema{
		Name:       name,
		Columns:    append(metricBaseColumns(), specific...),
		ServiceCol: MetricColServiceName,
		MetricCol:  MetricColMetricName,
	}
}

// Gauge returns the gauge table layout.
func Gauge() Schema {
	return metricSchema(KindMetricsGauge.String(),
		Column{Name: "Value", Type: TypeFloat64},
	)
}

// Sum returns the sum table layout.
func Sum() Schema {
	return metricSchema(KindMetricsSum.String(),
		Column{Name: "Value", Type: TypeFloat64},
		Column{Name: "AggregationTemporality", Type: TypeInt32},
		Column{Name: "IsMonotonic", Type: TypeBool},
	)
}

// Histogram returns the histogram table layout.
func Histogram() Schema {
	return metricSchema(KindMetricsHistogram.String(),
		Column{Name: "Count", Type: TypeUint64},
		Column{Name: "Sum", Type: TypeFloat64},
		Column{Name: "BucketCounts", Type: TypeUintList},
		Column{Name: "ExplicitBounds", Type: TypeFloatList},
		Column{Name: "Min", Type: TypeFloat64},
		Column{Name: "Max", Type: TypeFloat64},
	)
}

// ExpHistogram returns the exponential histogram table layout.
func ExpHistogram() Schema {
	return metricSchema(KindMetricsExpHistogram.String(),
		Column{Name: "Count", Type: TypeUint64},
		Column{Name: "Sum", Type: TypeFloat64},
		Column{Name: "Scale", Type: TypeInt32},
		Column{Name: "ZeroCount", Type: TypeUint64},
		Column{Name: "PositiveOffset", Type: TypeInt32},
		Column{Name: "PositiveBucketCounts", Type: TypeUintList},
		Column{Name: "NegativeOffset", Type: TypeInt32},
		Column{Name: "NegativeBucketCounts", Type: TypeUintList},
		Column{Name: "Min", Type: TypeFloat64},
		Column{Name: "Max", Type: TypeFloat64},
	)
}

// Summary returns the summary table layout.
func Summary() Schema {
	return metricSchema(KindMetricsSummary.String(),
		Column{Name: "Count", Type: TypeUint64},
		Column{Name: "Sum", Type: TypeFloat64},
		Column{Name: "QuantileValues", Type: TypeFloatList},
		Column{Name: "QuantileQuantiles", Type: TypeFloatList},
	)
}

// MetricsUnion returns the synthesized 27-column union layout covering all
// five metric shapes plus the MetricType discriminator.
func MetricsUnion() Schema {
	return metricSchema("otel_metrics_union",
		Column{Name: "MetricType", Type: TypeString},
		Column{Name: "Value", Type: TypeFloat64},
		Column{Name: "AggregationTemporality", Type: TypeInt32},
		Column{Name: "IsMonotonic", Type: TypeBool},
		Column{Name: "Count", Type: TypeUint64},
		Column{Name: "Sum", Type: TypeFloat64},
		Column{Name: "BucketCounts", Type: TypeUintList},
		Column{Name: "ExplicitBounds", Type: TypeFloatList},
		Column{Name: "Scale", Type: TypeInt32},
		Column{Name: "ZeroCount", Type: TypeUint64},
		Column{Name: "PositiveOffset", Type: TypeInt32},
		Column{Name: "PositiveBucketCounts", Type: TypeUintList},
		Column{Name: "NegativeOffset", Type: TypeInt32},
		Column{Name: "NegativeBucketCounts", Type: TypeUintList},
		Column{Name: "QuantileValues", Type: TypeFloatList},
		Column{Name: "QuantileQuantiles", Type: TypeFloatList},
		Column{Name: "Min", Type: TypeFloat64},
		Column{Name: "Max", Type: TypeFloat64},
	)
}

// For returns the layout of a stored table.
func For(kind TableKind) Schema {
	switch kind {
	case KindTraces:
		return Traces()
	case KindLogs:
		return Logs()
	case KindMetricsGauge:
		return Gauge()
	case KindMetricsSum:
		return Sum()
	case KindMetricsHistogram:
		return Histogram()
	case KindMetricsExpHistogram:
		return ExpHistogram()
	case KindMetricsSummary:
		return Summary()
	default:
		panic("otelschema: unknown table kind")
	}
}

// ForShape returns the typed layout of a metric shape.
func ForShape(shape MetricShape) Schema {
	return For(shape.TableKind())
}
