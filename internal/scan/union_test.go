package scan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

func sumRow(ts otelstorage.Timestamp, metric string, value float64) []otelschema.Value {
	return []otelschema.Value{
		otelschema.TS(ts),
		otelschema.Str("svc"),
		otelschema.Str(metric),
		otelschema.Str(""),
		otelschema.Str(""),
		otelschema.AttrsValue(nil),
		otelschema.Str(""),
		otelschema.Str(""),
		otelschema.AttrsValue(nil),
		otelschema.Float(value),
		otelschema.Int(2),
		otelschema.Bool(true),
	}
}

func unionSet() *colbuf.BufferSet {
	set := colbuf.NewBufferSet(colbuf.Options{ChunkRows: 8, MaxChunks: 8})
	set.Metric(otelschema.ShapeGauge).Append(gaugeRow(1*us, "svc", "cpu", 42))
	set.Metric(otelschema.ShapeGauge).Append(gaugeRow(2*us, "svc", "cpu", 43))
	set.Metric(otelschema.ShapeSum).Append(sumRow(3*us, "reqs", 7))
	set.FlushAll()
	return set
}

func TestUnionScanner(t *testing.T) {
	a := require.New(t)

	s, err := NewUnionScanner(unionSet(), UnionOptions{})
	a.NoError(err)
	a.Equal(otelschema.UnionNumColumns, s.Schema().NumColumns())

	byType := map[string]int{}
	var batch UnionBatch
	for s.Next(&batch) {
		for _, row := range batch.Rows {
			a.Len(row, otelschema.UnionNumColumns)
			byType[row[otelschema.UnionColMetricType].Str()]++
		}
	}
	a.NoError(s.Err())
	a.NoError(s.Close())
	a.Equal(map[string]int{"gauge": 2, "sum": 1}, byType)
}

func TestUnionScannerWidensColumns(t *testing.T) {
	a := require.New(t)

	s, err := NewUnionScanner(unionSet(), UnionOptions{MetricType: "sum"})
	a.NoError(err)

	var batch UnionBatch
	a.True(s.Next(&batch))
	a.Equal(otelschema.ShapeSum, batch.Shape)
	a.Len(batch.Rows, 1)

	row := batch.Rows[0]
	a.Equal("sum", row[otelschema.UnionColMetricType].Str())
	a.Equal(7.0, row[otelschema.UnionColValue].Float64())
	a.Equal(int64(2), row[otelschema.UnionColAggregationTemporality].Int64())
	a.True(row[otelschema.UnionColIsMonotonic].Bool())
	// Columns of other shapes stay null.
	a.True(row[otelschema.UnionColCount].IsNull())
	a.True(row[otelschema.UnionColBucketCounts].IsNull())
	a.True(row[otelschema.UnionColQuantileValues].IsNull())

	a.False(s.Next(&batch))
}

func TestUnionScannerMetricTypeFilter(t *testing.T) {
	a := require.New(t)

	s, err := NewUnionScanner(unionSet(), UnionOptions{MetricType: "gauge"})
	a.NoError(err)

	var total int
	var batch UnionBatch
	for s.Next(&batch) {
		a.Equal(otelschema.ShapeGauge, batch.Shape)
		total += len(batch.Rows)
	}
	a.Equal(2, total)
	// Skipped buffers are never snapshotted, so nothing is even pruned.
	a.Equal(int64(0), s.Metrics().ChunksPruned.Load())

	_, err = NewUnionScanner(unionSet(), UnionOptions{MetricType: "bogus"})
	a.Error(err)
}

func TestUnionScannerPredicates(t *testing.T) {
	a := require.New(t)

	// Discriminator predicate selects one shape's rows.
	s, err := NewUnionScanner(unionSet(), UnionOptions{Predicates: []Predicate{
		{Col: otelschema.UnionColMetricType, Op: OpEq, Value: otelschema.Str("sum")},
	}})
	a.NoError(err)

	var rows int
	var batch UnionBatch
	for s.Next(&batch) {
		rows += len(batch.Rows)
	}
	a.Equal(1, rows)

	// Timestamp pruning applies through the shared base columns.
	s, err = NewUnionScanner(unionSet(), UnionOptions{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpGt, Value: otelschema.TS(1000 * us)},
	}})
	a.NoError(err)
	a.False(s.Next(&batch))
	a.Equal(int64(2), s.Metrics().ChunksPruned.Load())
	a.Equal(int64(0), s.Metrics().RowsEvaluated.Load())

	// Metric name pruning through chunk statistics.
	s, err = NewUnionScanner(unionSet(), UnionOptions{Predicates: []Predicate{
		{Col: otelschema.MetricColMetricName, Op: OpEq, Value: otelschema.Str("reqs")},
	}})
	a.NoError(err)
	rows = 0
	for s.Next(&batch) {
		rows += len(batch.Rows)
	}
	a.Equal(1, rows)
	a.Equal(int64(1), s.Metrics().ChunksPruned.Load())
}

func TestUnionScannerNullRowKeepsDiscriminator(t *testing.T) {
	a := require.New(t)

	set := colbuf.NewBufferSet(colbuf.Options{ChunkRows: 8, MaxChunks: 8})
	buf := set.Metric(otelschema.ShapeGauge)
	null := make([]otelschema.Value, otelschema.GaugeNumColumns)
	for i := range null {
		null[i] = otelschema.Null()
	}
	buf.Append(null)
	set.FlushAll()

	s, err := NewUnionScanner(set, UnionOptions{})
	a.NoError(err)

	var batch UnionBatch
	a.True(s.Next(&batch))
	row := batch.Rows[0]
	a.Equal("gauge", row[otelschema.UnionColMetricType].Str())
	a.True(row[otelschema.MetricColTimestamp].IsNull())
	a.True(row[otelschema.UnionColValue].IsNull())
}
