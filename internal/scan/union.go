package scan

import (
	"github.com/go-faster/errors"
	"go.uber.org/atomic"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/iterators"
	"github.com/go-faster/otelbuf/internal/otelschema"
)

var _ iterators.Iterator[UnionBatch] = (*UnionScanner)(nil)

// UnionOptions configures a union scanner.
type UnionOptions struct {
	// MetricType optionally restricts the scan to one shape; the buffers of
	// every other shape are skipped without reading. Accepts the union
	// discriminator names, with exp_histogram as an alias.
	MetricType string
	// Predicates are bound against the union layout, so they may reference
	// the discriminator and any shape-specific column.
	Predicates []Predicate
}

// UnionBatch is one chunk's worth of metric rows widened to the union
// layout.
type UnionBatch struct {
	Shape otelschema.MetricShape
	Rows  [][]otelschema.Value
}

type unionChunk struct {
	shape otelschema.MetricShape
	chunk *colbuf.Chunk
}

// UnionScanner iterates all five metric buffers as the synthesized
// 27-column union layout. Like Scanner it snapshots at construction and may
// be drained concurrently.
type UnionScanner struct {
	schema otelschema.Schema
	chunks []unionChunk
	cursor atomic.Int64
	preds  []Predicate

	metrics Metrics
}

// NewUnionScanner snapshots the metric buffers and validates options.
func NewUnionScanner(set *colbuf.BufferSet, opts UnionOptions) (*UnionScanner, error) {
	schema := otelschema.MetricsUnion()
	if err := bindPredicates(schema, opts.Predicates); err != nil {
		return nil, err
	}

	filter := otelschema.NumMetricShapes
	if opts.MetricType != "" {
		shape, ok := otelschema.ParseMetricShape(opts.MetricType)
		if !ok {
			return nil, errors.Errorf("unknown metric type %q", opts.MetricType)
		}
		filter = int(shape)
	}

	var chunks []unionChunk
	for shape := otelschema.ShapeGauge; shape <= otelschema.ShapeSummary; shape++ {
		if filter != otelschema.NumMetricShapes && filter != int(shape) {
			continue
		}
		for _, ch := range set.Metric(shape).Snapshot() {
			chunks = append(chunks, unionChunk{shape: shape, chunk: ch})
		}
	}
	return &UnionScanner{
		schema: schema,
		chunks: chunks,
		preds:  opts.Predicates,
	}, nil
}

// Schema returns the union layout.
func (s *UnionScanner) Schema() otelschema.Schema { return s.schema }

// Metrics returns the shared scan counters.
func (s *UnionScanner) Metrics() *Metrics { return &s.metrics }

// Next claims the next surviving chunk, widens its rows and fills b. It is
// safe for concurrent use.
func (s *UnionScanner) Next(b *UnionBatch) bool {
	for {
		idx := int(s.cursor.Inc() - 1)
		if idx >= len(s.chunks) {
			return false
		}
		uc := s.chunks[idx]
		// Base columns share indices between the union layout and every
		// shape layout, so chunk statistics apply unchanged.
		if chunkPruned(uc.chunk.Stats(), s.schema, s.preds) {
			s.metrics.ChunksPruned.Inc()
			continue
		}
		s.metrics.ChunksScanned.Inc()
		rows := s.widenChunk(uc)
		if len(s.preds) > 0 && len(rows) == 0 {
			continue
		}
		*b = UnionBatch{Shape: uc.shape, Rows: rows}
		return true
	}
}

// Err implements the iterator contract. Scanning a snapshot cannot fail.
func (s *UnionScanner) Err() error { return nil }

// Close implements the iterator contract.
func (s *UnionScanner) Close() error { return nil }

func (s *UnionScanner) widenChunk(uc unionChunk) [][]otelschema.Value {
	n := uc.chunk.Rows()
	rows := make([][]otelschema.Value, 0, n)
	if len(s.preds) > 0 {
		s.metrics.RowsEvaluated.Add(int64(n))
	}
	for r := 0; r < n; r++ {
		wide := otelschema.Widen(uc.shape, uc.chunk.Row(r))
		if len(s.preds) > 0 && !unionRowMatches(wide, s.preds) {
			continue
		}
		rows = append(rows, wide)
	}
	if len(s.preds) > 0 {
		s.metrics.RowsMatched.Add(int64(len(rows)))
	}
	return rows
}

func unionRowMatches(row []otelschema.Value, preds []Predicate) bool {
	for _, p := range preds {
		if !p.matches(row[p.Col]) {
			return false
		}
	}
	return true
}
