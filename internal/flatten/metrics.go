package flatten

import (
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

// MetricRows carries flattened metric rows grouped by shape.
type MetricRows struct {
	Gauge        [][]otelschema.Value
	Sum          [][]otelschema.Value
	Histogram    [][]otelschema.Value
	ExpHistogram [][]otelschema.Value
	Summary      [][]otelschema.Value

	// Dropped counts metrics of empty or unknown type.
	Dropped int
}

// Shape returns the rows for one metric shape.
func (r *MetricRows) Shape(shape otelschema.MetricShape) [][]otelschema.Value {
	switch shape {
	case otelschema.ShapeGauge:
		return r.Gauge
	case otelschema.ShapeSum:
		return r.Sum
	case otelschema.ShapeHistogram:
		return r.Histogram
	case otelschema.ShapeExpHistogram:
		return r.ExpHistogram
	case otelschema.ShapeSummary:
		return r.Summary
	default:
		return nil
	}
}

// Total returns the row count across all shapes.
func (r *MetricRows) Total() int {
	return len(r.Gauge) + len(r.Sum) + len(r.Histogram) + len(r.ExpHistogram) + len(r.Summary)
}

// metricCtx is the per-metric base column context shared by every data point
// of the metric.
type metricCtx struct {
	service  string
	resAttrs otelstorage.Attrs
	scope    string
	scopeVer string
	name     string
	desc     string
	unit     string
}

func (c metricCtx) baseRow(n int, ts otelstorage.Timestamp, attrs otelstorage.Attrs) []otelschema.Value {
	row := make([]otelschema.Value, n)
	row[otelschema.MetricColTimestamp] = otelschema.TS(ts)
	row[otelschema.MetricColServiceName] = otelschema.Str(c.service)
	row[otelschema.MetricColMetricName] = otelschema.Str(c.name)
	row[otelschema.MetricColMetricDescription] = otelschema.Str(c.desc)
	row[otelschema.MetricColMetricUnit] = otelschema.Str(c.unit)
	row[otelschema.MetricColResourceAttributes] = otelschema.AttrsValue(c.resAttrs)
	row[otelschema.MetricColScopeName] = otelschema.Str(c.scope)
	row[otelschema.MetricColScopeVersion] = otelschema.Str(c.scopeVer)
	row[otelschema.MetricColAttributes] = otelschema.AttrsValue(attrs)
	return row
}

// numberValue normalizes a number data point to float64: integer points are
// widened, double points pass through.
func numberValue(dp pmetric.NumberDataPoint) float64 {
	if dp.ValueType() == pmetric.NumberDataPointValueTypeInt {
		return float64(dp.IntValue())
	}
	return dp.DoubleValue()
}

// Metrics flattens metric data points into per-shape rows, one row per data
// point. Metrics of empty type are counted as dropped.
func Metrics(md pmetric.Metrics) MetricRows {
	var out MetricRows
	list := md.ResourceMetrics()
	for i := 0; i < list.Len(); i++ {
		rm := list.At(i)
		service := otelstorage.ServiceName(rm.Resource())
		resAttrs := otelstorage.FlattenAttrs(rm.Resource().Attributes())

		scopes := rm.ScopeMetrics()
		for j := 0; j < scopes.Len(); j++ {
			sm := scopes.At(j)
			scope := sm.Scope()

			metrics := sm.Metrics()
			for k := 0; k < metrics.Len(); k++ {
				m := metrics.At(k)
				c := metricCtx{
					service:  service,
					resAttrs: resAttrs,
					scope:    scope.Name(),
					scopeVer: scope.Version(),
					name:     m.Name(),
					desc:     m.Description(),
					unit:     m.Unit(),
				}
				switch m.Type() {
				case pmetric.MetricTypeGauge:
					points := m.Gauge().DataPoints()
					for p := 0; p < points.Len(); p++ {
						out.Gauge = append(out.Gauge, gaugeRow(c, points.At(p)))
					}
				case pmetric.MetricTypeSum:
					sum := m.Sum()
					temporality := int64(sum.AggregationTemporality())
					monotonic := sum.IsMonotonic()
					points := sum.DataPoints()
					for p := 0; p < points.Len(); p++ {
						out.Sum = append(out.Sum, sumRow(c, points.At(p), temporality, monotonic))
					}
				case pmetric.MetricTypeHistogram:
					points := m.Histogram().DataPoints()
					for p := 0; p < points.Len(); p++ {
						out.Histogram = append(out.Histogram, histogramRow(c, points.At(p)))
					}
				case pmetric.MetricTypeExponentialHistogram:
					points := m.ExponentialHistogram().DataPoints()
					for p := 0; p < points.Len(); p++ {
						out.ExpHistogram = append(out.ExpHistogram, expHistogramRow(c, points.At(p)))
					}
				case pmetric.MetricTypeSummary:
					points := m.Summary().DataPoints()
					for p := 0; p < points.Len(); p++ {
						out.Summary = append(out.Summary, summaryRow(c, points.At(p)))
					}
				default:
					out.Dropped++
				}
			}
		}
	}
	return out
}

func gaugeRow(c metricCtx, dp pmetric.NumberDataPoint) []otelschema.Value {
	row := c.baseRow(otelschema.GaugeNumColumns, dp.Timestamp(), otelstorage.FlattenAttrs(dp.Attributes()))
	row[otelschema.GaugeColValue] = otelschema.Float(numberValue(dp))
	return row
}

func sumRow(c metricCtx, dp pmetric.NumberDataPoint, temporality int64, monotonic bool) []otelschema.Value {
	row := c.baseRow(otelschema.SumNumColumns, dp.Timestamp(), otelstorage.FlattenAttrs(dp.Attributes()))
	row[otelschema.SumColValue] = otelschema.Float(numberValue(dp))
	row[otelschema.SumColAggregationTemporality] = otelschema.Int(temporality)
	row[otelschema.SumColIsMonotonic] = otelschema.Bool(monotonic)
	return row
}

func histogramRow(c metricCtx, dp pmetric.HistogramDataPoint) []otelschema.Value {
	row := c.baseRow(otelschema.HistogramNumColumns, dp.Timestamp(), otelstorage.FlattenAttrs(dp.Attributes()))
	row[otelschema.HistogramColCount] = otelschema.Uint(dp.Count())
	if dp.HasSum() {
		row[otelschema.HistogramColSum] = otelschema.Float(dp.Sum())
	}
	row[otelschema.HistogramColBucketCounts] = otelschema.UintList(dp.BucketCounts().AsRaw())
	row[otelschema.HistogramColExplicitBounds] = otelschema.FloatList(dp.ExplicitBounds().AsRaw())
	if dp.HasMin() {
		row[otelschema.HistogramColMin] = otelschema.Float(dp.Min())
	}
	if dp.HasMax() {
		row[otelschema.HistogramColMax] = otelschema.Float(dp.Max())
	}
	return row
}

func expHistogramRow(c metricCtx, dp pmetric.ExponentialHistogramDataPoint) []otelschema.Value {
	row := c.baseRow(otelschema.ExpHistogramNumColumns, dp.Timestamp(), otelstorage.FlattenAttrs(dp.Attributes()))
	row[otelschema.ExpHistogramColCount] = otelschema.Uint(dp.Count())
	if dp.HasSum() {
		row[otelschema.ExpHistogramColSum] = otelschema.Float(dp.Sum())
	}
	row[otelschema.ExpHistogramColScale] = otelschema.Int(int64(dp.Scale()))
	row[otelschema.ExpHistogramColZeroCount] = otelschema.Uint(dp.ZeroCount())
	row[otelschema.ExpHistogramColPositiveOffset] = otelschema.Int(int64(dp.Positive().Offset()))
	row[otelschema.ExpHistogramColPositiveBucketCounts] = otelschema.UintList(dp.Positive().BucketCounts().AsRaw())
	row[otelschema.ExpHistogramColNegativeOffset] = otelschema.Int(int64(dp.Negative().Offset()))
	row[otelschema.ExpHistogramColNegativeBucketCounts] = otelschema.UintList(dp.Negative().BucketCounts().AsRaw())
	if dp.HasMin() {
		row[otelschema.ExpHistogramColMin] = otelschema.Float(dp.Min())
	}
	if dp.HasMax() {
		row[otelschema.ExpHistogramColMax] = otelschema.Float(dp.Max())
	}
	return row
}

func summaryRow(c metricCtx, dp pmetric.SummaryDataPoint) []otelschema.Value {
	row := c.baseRow(otelschema.SummaryNumColumns, dp.Timestamp(), otelstorage.FlattenAttrs(dp.Attributes()))
	row[otelschema.SummaryColCount] = otelschema.Uint(dp.Count())
	row[otelschema.SummaryColSum] = otelschema.Float(dp.Sum())

	qs := dp.QuantileValues()
	values := make([]float64, qs.Len())
	quantiles := make([]float64, qs.Len())
	for i := 0; i < qs.Len(); i++ {
		values[i] = qs.At(i).Value()
		quantiles[i] = qs.At(i).Quantile()
	}
	row[otelschema.SummaryColQuantileValues] = otelschema.FloatList(values)
	row[otelschema.SummaryColQuantileQuantiles] = otelschema.FloatList(quantiles)
	return row
}
