package otelschema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/otelbuf/internal/otelstorage"
)

func baseRow() []Value {
	return []Value{
		TS(1700000000_000000000),
		Str("checkout"),
		Str("http.server.duration"),
		Str("request latency"),
		Str("ms"),
		AttrsValue(otelstorage.Attrs{{Key: "host", Value: "a1"}}),
		Str("otelbuf.test"),
		Str("0.1.0"),
		AttrsValue(otelstorage.Attrs{{Key: "route", Value: "/pay"}}),
	}
}

func shapeRow(shape MetricShape) []Value {
	row := baseRow()
	switch shape {
	case ShapeGauge:
		row = append(row, Float(42))
	case ShapeSum:
		row = append(row, Float(7), Int(2), Bool(true))
	case ShapeHistogram:
		row = append(row,
			Uint(10), Float(55.5),
			UintList([]uint64{1, 4, 5}),
			FloatList([]float64{0.5, 1}),
			Float(0.1), Float(9.9),
		)
	case ShapeExpHistogram:
		row = append(row,
			Uint(20), Float(33.3),
			Int(3), Uint(2),
			Int(-1), UintList([]uint64{2, 8}),
			Int(0), UintList([]uint64{4, 6}),
			Float(-1.5), Float(8.25),
		)
	case ShapeSummary:
		row = append(row,
			Uint(100), Float(250),
			FloatList([]float64{1, 5, 9}),
			FloatList([]float64{0.5, 0.9, 0.99}),
		)
	}
	return row
}

func TestWidenNarrowRoundTrip(t *testing.T) {
	union := MetricsUnion()
	for shape := ShapeGauge; shape <= ShapeSummary; shape++ {
		t.Run(shape.String(), func(t *testing.T) {
			a := require.New(t)

			row := shapeRow(shape)
			a.NoError(ForShape(shape).Validate(row))

			wide := Widen(shape, row)
			a.NoError(union.Validate(wide))
			a.Equal(shape.String(), wide[UnionColMetricType].Str())

			narrow := Narrow(wide, shape)
			a.Len(narrow, len(row))
			for i := range row {
				a.True(row[i].Equal(narrow[i]), "column %d", i)
			}
		})
	}
}

func TestWidenNullsForeignColumns(t *testing.T) {
	a := require.New(t)

	wide := Widen(ShapeGauge, shapeRow(ShapeGauge))
	a.False(wide[UnionColValue].IsNull())
	for _, col := range []int{
		UnionColAggregationTemporality, UnionColIsMonotonic,
		UnionColCount, UnionColSum,
		UnionColBucketCounts, UnionColExplicitBounds,
		UnionColScale, UnionColZeroCount,
		UnionColPositiveOffset, UnionColPositiveBucketCounts,
		UnionColNegativeOffset, UnionColNegativeBucketCounts,
		UnionColQuantileValues, UnionColQuantileQuantiles,
		UnionColMin, UnionColMax,
	} {
		a.True(wide[col].IsNull(), "column %d", col)
	}
}

func TestWidenKeepsNullableSpecificNull(t *testing.T) {
	a := require.New(t)

	row := shapeRow(ShapeHistogram)
	row[HistogramColSum] = Null()
	row[HistogramColMin] = Null()
	row[HistogramColMax] = Null()

	wide := Widen(ShapeHistogram, row)
	a.True(wide[UnionColSum].IsNull())
	a.True(wide[UnionColMin].IsNull())
	a.True(wide[UnionColMax].IsNull())
	a.False(wide[UnionColCount].IsNull())
}

func TestSchemaShapes(t *testing.T) {
	a := require.New(t)

	a.Equal(TracesNumColumns, Traces().NumColumns())
	a.Equal(LogsNumColumns, Logs().NumColumns())
	a.Equal(GaugeNumColumns, Gauge().NumColumns())
	a.Equal(SumNumColumns, Sum().NumColumns())
	a.Equal(HistogramNumColumns, Histogram().NumColumns())
	a.Equal(ExpHistogramNumColumns, ExpHistogram().NumColumns())
	a.Equal(SummaryNumColumns, Summary().NumColumns())
	a.Equal(UnionNumColumns, MetricsUnion().NumColumns())

	for k := KindTraces; k <= KindMetricsSummary; k++ {
		s := For(k)
		a.Equal(k.String(), s.Name)
		a.Equal(TypeTimestamp, s.Columns[0].Type)

		parsed, ok := ParseTableKind(k.String())
		a.True(ok)
		a.Equal(k, parsed)
	}

	shape, ok := ParseMetricShape("exp_histogram")
	a.True(ok)
	a.Equal(ShapeExpHistogram, shape)
}

func TestSchemaValidate(t *testing.T) {
	a := require.New(t)

	s := Gauge()
	row := shapeRow(ShapeGauge)
	a.NoError(s.Validate(row))

	a.Error(s.Validate(row[:len(row)-1]))

	bad := shapeRow(ShapeGauge)
	bad[GaugeColValue] = Str("not a float")
	a.Error(s.Validate(bad))

	nulled := shapeRow(ShapeGauge)
	nulled[GaugeColValue] = Null()
	a.NoError(s.Validate(nulled))
}
