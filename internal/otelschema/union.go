package otelschema

// Widen projects a typed metric row into the 27-column union layout: base
// columns are copied, the discriminator is set, this shape's specific
// columns are filled and every other shape's columns stay null.
//
// Pure and total given a row shaped like ForShape(shape).
func Widen(shape MetricShape, row []Value) []Value {
	out := make([]Value, UnionNumColumns)
	for i := range out {
		out[i] = Null()
	}
	copy(out[:MetricNumBaseColumns], row[:MetricNumBaseColumns])
	out[UnionColMetricType] = Str(shape.String())

	switch shape {
	case ShapeGauge:
		out[UnionColValue] = row[GaugeColValue]
	case ShapeSum:
		out[UnionColValue] = row[SumColValue]
		out[UnionColAggregationTemporality] = row[SumColAggregationTemporality]
		out[UnionColIsMonotonic] = row[SumColIsMonotonic]
	case ShapeHistogram:
		out[UnionColCount] = row[HistogramColCount]
		out[UnionColSum] = row[HistogramColSum]
		out[UnionColBucketCounts] = row[HistogramColBucketCounts]
		out[UnionColExplicitBounds] = row[HistogramColExplicitBounds]
		out[UnionColMin] = row[HistogramColMin]
		out[UnionColMax] = row[HistogramColMax]
	case ShapeExpHistogram:
		out[UnionColCount] = row[ExpHistogramColCount]
		out[UnionColSum] = row[ExpHistogramColSum]
		out[UnionColScale] = row[ExpHistogramColScale]
		out[UnionColZeroCount] = row[ExpHistogramColZeroCount]
		out[UnionColPositiveOffset] = row[ExpHistogramColPositiveOffset]
		out[UnionColPositiveBucketCounts] = row[ExpHistogramColPositiveBucketCounts]
		out[UnionColNegativeOffset] = row[ExpHistogramColNegativeOffset]
		out[UnionColNegativeBucketCounts] = row[ExpHistogramColNegativeBucketCounts]
		out[UnionColMin] = row[ExpHistogramColMin]
		out[UnionColMax] = row[ExpHistogramColMax]
	case ShapeSummary:
		out[UnionColCount] = row[SummaryColCount]
		out[UnionColSum] = row[SummaryColSum]
		out[UnionColQuantileValues] = row[SummaryColQuantileValues]
		out[UnionColQuantileQuantiles] = row[SummaryColQuantileQuantiles]
	}
	return out
}

// Narrow is the inverse of Widen: it projects a union row down to the typed
// layout of shape, copying base columns plus only this shape's specific
// columns and dropping the rest.
func Narrow(row []Value, shape MetricShape) []Value {
	out := make([]Value, ForShape(shape).NumColumns())
	copy(out[:MetricNumBaseColumns], row[:MetricNumBaseColumns])

	switch shape {
	case ShapeGauge:
		out[GaugeColValue] = row[UnionColValue]
	case ShapeSum:
		out[SumColValue] = row[UnionColValue]
		out[SumColAggregationTemporality] = row[UnionColAggregationTemporality]
		out[SumColIsMonotonic] = row[UnionColIsMonotonic]
	case ShapeHistogram:
		out[HistogramColCount] = row[UnionColCount]
		out[HistogramColSum] = row[UnionColSum]
		out[HistogramColBucketCounts] = row[UnionColBucketCounts]
		out[HistogramColExplicitBounds] = row[UnionColExplicitBounds]
		out[HistogramColMin] = row[UnionColMin]
		out[HistogramColMax] = row[UnionColMax]
	case ShapeExpHistogram:
		out[ExpHistogramColCount] = row[UnionColCount]
		out[ExpHistogramColSum] = row[UnionColSum]
		out[ExpHistogramColScale] = row[UnionColScale]
		out[ExpHistogramColZeroCount] = row[UnionColZeroCount]
		out[ExpHistogramColPositiveOffset] = row[UnionColPositiveOffset]
		out[ExpHistogramColPositiveBucketCounts] = row[UnionColPositiveBucketCounts]
		out[ExpHistogramColNegativeOffset] = row[UnionColNegativeOffset]
		out[ExpHistogramColNegativeBucketCounts] = row[UnionColNegativeBucketCounts]
		out[ExpHistogramColMin] = row[UnionColMin]
		out[ExpHistogramColMax] = row[UnionColMax]
	case ShapeSummary:
		out[SummaryColCount] = row[UnionColCount]
		out[SummaryColSum] = row[UnionColSum]
		out[SummaryColQuantileValues] = row[UnionColQuantileValues]
		out[SummaryColQuantileQuantiles] = row[UnionColQuantileQuantiles]
	}
	return out
}
