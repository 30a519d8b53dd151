package scan

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

const us = 1000 // nanoseconds per microsecond

func gaugeRow(ts otelstorage.Timestamp, service, metric string, value float64) []otelschema.Value {
	return []otelschema.Value{
		otelschema.TS(ts),
		otelschema.Str(service),
		otelschema.Str(metric),
		otelschema.Str(""),
		otelschema.Str(""),
		otelschema.AttrsValue(nil),
		otelschema.Str(""),
		otelschema.Str(""),
		otelschema.AttrsValue(nil),
		otelschema.Float(value),
	}
}

func fillGauge(b *colbuf.RingBuffer, n int, service string) {
	for i := 0; i < n; i++ {
		b.Append(gaugeRow(otelstorage.Timestamp(i)*us, service, "m", float64(i)))
	}
	b.Flush()
}

func TestScannerFullScan(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
	fillGauge(b, 25, "svc")

	s, err := NewScanner(b, Options{})
	a.NoError(err)

	var total int
	var batch Batch
	for s.Next(&batch) {
		total += batch.Len()
	}
	a.NoError(s.Err())
	a.NoError(s.Close())
	a.Equal(25, total)
	a.Equal(int64(3), s.Metrics().ChunksScanned.Load())
	a.Equal(int64(0), s.Metrics().RowsEvaluated.Load())
}

func TestScannerBatchRows(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
	fillGauge(b, 25, "svc") // chunks of 10, 10, 5 rows

	s, err := NewScanner(b, Options{BatchRows: 4})
	a.NoError(err)

	var sizes []int
	var batch Batch
	for s.Next(&batch) {
		sizes = append(sizes, batch.Len())
	}
	a.Equal([]int{4, 4, 2, 4, 4, 2, 4, 1}, sizes)

	// The split applies to the filtered selection.
	s, err = NewScanner(b, Options{
		BatchRows: 3,
		Predicates: []Predicate{
			{Col: otelschema.GaugeColValue, Op: OpGtEq, Value: otelschema.Float(4)},
		},
	})
	a.NoError(err)

	var total int
	for s.Next(&batch) {
		a.LessOrEqual(batch.Len(), 3)
		total += batch.Len()
	}
	a.Equal(21, total)
}

func TestScannerSnapshotIsolation(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
	fillGauge(b, 10, "svc")

	s, err := NewScanner(b, Options{})
	a.NoError(err)

	// Rows appended after construction stay invisible.
	fillGauge(b, 10, "svc")

	var total int
	var batch Batch
	for s.Next(&batch) {
		total += batch.Len()
	}
	a.Equal(10, total)
}

func TestScannerProjection(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 4, 4)
	fillGauge(b, 2, "svc")

	s, err := NewScanner(b, Options{
		Projection: []int{otelschema.GaugeColValue, otelschema.MetricColServiceName},
	})
	a.NoError(err)

	var batch Batch
	a.True(s.Next(&batch))
	row := batch.Row(1)
	a.Len(row, 2)
	a.Equal(1.0, row[0].Float64())
	a.Equal("svc", row[1].Str())

	_, err = NewScanner(b, Options{Projection: []int{99}})
	a.Error(err)
}

func TestScannerPredicates(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 8, 8)
	b.Append(gaugeRow(1*us, "svc", "m", 1))
	b.Append(gaugeRow(2*us, "svc", "m", 5))
	nulled := gaugeRow(3*us, "svc", "m", 0)
	nulled[otelschema.GaugeColValue] = otelschema.Null()
	b.Append(nulled)
	b.Flush()

	collect := func(preds ...Predicate) []float64 {
		s, err := NewScanner(b, Options{Predicates: preds})
		a.NoError(err)
		var out []float64
		var batch Batch
		for s.Next(&batch) {
			for r := 0; r < batch.Len(); r++ {
				v := batch.Value(r, otelschema.GaugeColValue)
				if v.IsNull() {
					out = append(out, -1)
					continue
				}
				out = append(out, v.Float64())
			}
		}
		return out
	}

	a.Equal([]float64{5}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpGt, Value: otelschema.Float(2)}))
	a.Equal([]float64{1}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpEq, Value: otelschema.Float(1)}))
	// IS NULL matches only the nulled row.
	a.Equal([]float64{-1}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpIsNull}))
	a.Equal([]float64{1, 5}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpIsNotNull}))
	// Equality against a null constant matches only null cells.
	a.Equal([]float64{-1}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpEq, Value: otelschema.Null()}))
	// Inequality with exactly one null operand matches.
	a.Equal([]float64{1, 5}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpNotEq, Value: otelschema.Null()}))
	a.Equal([]float64{5, -1}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpNotEq, Value: otelschema.Float(1)}))
	// Ordered comparison with a null cell never matches.
	a.Equal([]float64{5}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpGtEq, Value: otelschema.Float(5)}))
	a.Equal([]float64{1}, collect(Predicate{Col: otelschema.GaugeColValue, Op: OpLt, Value: otelschema.Float(2)}))
	// Conjunction.
	a.Equal([]float64{5}, collect(
		Predicate{Col: otelschema.MetricColServiceName, Op: OpEq, Value: otelschema.Str("svc")},
		Predicate{Col: otelschema.GaugeColValue, Op: OpGt, Value: otelschema.Float(1)},
	))
}

func TestScannerBindErrors(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 4, 4)

	_, err := NewScanner(b, Options{Predicates: []Predicate{{Col: 99, Op: OpEq, Value: otelschema.Str("x")}}})
	a.Error(err)

	_, err = NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.GaugeColValue, Op: OpEq, Value: otelschema.Str("not a float")},
	}})
	a.Error(err)

	// Ordered comparison on a map column.
	_, err = NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColAttributes, Op: OpLt, Value: otelschema.AttrsValue(nil)},
	}})
	a.Error(err)
}

func TestScannerTimestampPruning(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
	fillGauge(b, 30, "svc") // timestamps 0..29us in 3 chunks

	// Disjoint range: every chunk is pruned and no row is evaluated.
	s, err := NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpGt, Value: otelschema.TS(1000 * us)},
	}})
	a.NoError(err)

	var batch Batch
	a.False(s.Next(&batch))
	a.Equal(int64(3), s.Metrics().ChunksPruned.Load())
	a.Equal(int64(0), s.Metrics().ChunksScanned.Load())
	a.Equal(int64(0), s.Metrics().RowsEvaluated.Load())

	// Overlapping range scans only the chunks that may match.
	s, err = NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpGtEq, Value: otelschema.TS(25 * us)},
	}})
	a.NoError(err)

	var total int
	for s.Next(&batch) {
		total += batch.Len()
	}
	a.Equal(5, total)
	a.Equal(int64(2), s.Metrics().ChunksPruned.Load())
	a.Equal(int64(1), s.Metrics().ChunksScanned.Load())
}

func TestScannerNullTimestamps(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 4, 4)
	b.Append(gaugeRow(1*us, "svc", "m", 1))
	nulled := gaugeRow(0, "svc", "m", 2)
	nulled[otelschema.MetricColTimestamp] = otelschema.Null()
	b.Append(nulled)
	b.Flush()

	// Null timestamps never match ordered predicates, so bounds computed
	// from the non-null values still prune the chunk.
	s, err := NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpGt, Value: otelschema.TS(1000 * us)},
	}})
	a.NoError(err)

	var batch Batch
	a.False(s.Next(&batch))
	a.Equal(int64(1), s.Metrics().ChunksPruned.Load())
	a.Equal(int64(0), s.Metrics().RowsEvaluated.Load())

	// An overlapping range scans the chunk and drops the null row.
	s, err = NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpGtEq, Value: otelschema.TS(1 * us)},
	}})
	a.NoError(err)
	a.True(s.Next(&batch))
	a.Equal(1, batch.Len())
	a.Equal(1.0, batch.Value(0, otelschema.GaugeColValue).Float64())

	// IS NULL keeps the chunk and selects only the null row.
	s, err = NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColTimestamp, Op: OpIsNull},
	}})
	a.NoError(err)
	a.True(s.Next(&batch))
	a.Equal(1, batch.Len())
	a.True(batch.Value(0, otelschema.MetricColTimestamp).IsNull())
}

func TestScannerDimensionPruning(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
	fillGauge(b, 10, "alpha")
	fillGauge(b, 10, "beta")

	s, err := NewScanner(b, Options{Predicates: []Predicate{
		{Col: otelschema.MetricColServiceName, Op: OpEq, Value: otelschema.Str("beta")},
	}})
	a.NoError(err)

	var total int
	var batch Batch
	for s.Next(&batch) {
		total += batch.Len()
	}
	a.Equal(10, total)
	a.Equal(int64(1), s.Metrics().ChunksPruned.Load())
	a.Equal(int64(1), s.Metrics().ChunksScanned.Load())
	// Pruned chunks contribute zero row evaluations.
	a.Equal(int64(10), s.Metrics().RowsEvaluated.Load())
}

func TestParallel(t *testing.T) {
	a := require.New(t)

	b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 100)
	fillGauge(b, 1000, "svc")

	s, err := NewScanner(b, Options{})
	a.NoError(err)

	var (
		mux   sync.Mutex
		total int
		seen  = map[*colbuf.Chunk]bool{}
	)
	err = Parallel(context.Background(), s, 8, func(_ context.Context, batch *Batch) error {
		mux.Lock()
		defer mux.Unlock()
		a.False(seen[batch.Chunk], "chunk delivered twice")
		seen[batch.Chunk] = true
		total += batch.Len()
		return nil
	})
	a.NoError(err)
	a.Equal(1000, total)
	a.Len(seen, 100)
}

func TestParallelSources(t *testing.T) {
	a := require.New(t)

	var scanners []*Scanner
	for i := 0; i < 5; i++ {
		b := colbuf.NewRingBuffer(otelschema.Gauge(), 10, 10)
		fillGauge(b, 30, "svc")
		s, err := NewScanner(b, Options{})
		a.NoError(err)
		scanners = append(scanners, s)
	}

	var (
		mux   sync.Mutex
		total int
		seen  = map[*colbuf.Chunk]bool{}
	)
	err := ParallelSources(context.Background(), scanners, 4, func(_ context.Context, _ *Scanner, batch *Batch) error {
		mux.Lock()
		defer mux.Unlock()
		a.False(seen[batch.Chunk], "chunk delivered twice")
		seen[batch.Chunk] = true
		total += batch.Len()
		return nil
	})
	a.NoError(err)
	a.Equal(150, total)
	a.Len(seen, 15)
}
