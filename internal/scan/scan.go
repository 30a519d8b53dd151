package scan

import (
	"github.com/go-faster/errors"
	"go.uber.org/atomic"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/iterators"
	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

var _ iterators.Iterator[Batch] = (*Scanner)(nil)

// Metrics counts scan work. Counters are atomic so concurrent workers share
// one instance.
type Metrics struct {
	ChunksScanned atomic.Int64
	ChunksPruned  atomic.Int64
	RowsEvaluated atomic.Int64
	RowsMatched   atomic.Int64
}

// Options configures a scanner.
type Options struct {
	// Projection lists the chunk columns to expose, nil meaning all.
	Projection []int
	// Predicates are pushed down: they prune chunks via statistics and
	// select rows within surviving chunks.
	Predicates []Predicate
	// BatchRows caps rows per batch; zero means chunk-sized batches.
	BatchRows int
}

// Scanner iterates batches over a snapshot of one buffer.
//
// The snapshot is taken at construction: rows appended or evicted afterwards
// are not observed. The chunk cursor is atomic, so a single Scanner may be
// drained by multiple goroutines, each receiving disjoint batches.
type Scanner struct {
	schema    otelschema.Schema
	chunks    []*colbuf.Chunk
	cursor    atomic.Int64
	proj      []int
	preds     []Predicate
	batchRows int

	metrics Metrics
}

// NewScanner snapshots the buffer and validates options.
func NewScanner(buf *colbuf.RingBuffer, opts Options) (*Scanner, error) {
	schema := buf.Schema()
	if err := bindPredicates(schema, opts.Predicates); err != nil {
		return nil, err
	}
	proj, err := bindProjection(schema, opts.Projection)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		schema:    schema,
		chunks:    buf.Snapshot(),
		proj:      proj,
		preds:     opts.Predicates,
		batchRows: opts.BatchRows,
	}, nil
}

func bindProjection(s otelschema.Schema, proj []int) ([]int, error) {
	if proj == nil {
		proj = make([]int, s.NumColumns())
		for i := range proj {
			proj[i] = i
		}
		return proj, nil
	}
	for _, col := range proj {
		if col < 0 || col >= s.NumColumns() {
			return nil, errProjection(s, col)
		}
	}
	return proj, nil
}

// Schema returns the scanned layout.
func (s *Scanner) Schema() otelschema.Schema { return s.schema }

// Metrics returns the shared scan counters.
func (s *Scanner) Metrics() *Metrics { return &s.metrics }

// Next claims the next surviving chunk and fills b. It is safe for
// concurrent use: each call claims a chunk no other caller receives.
func (s *Scanner) Next(b *Batch) bool {
	if s.emitRest(b) {
		return true
	}
	for {
		idx := int(s.cursor.Inc() - 1)
		if idx >= len(s.chunks) {
			return false
		}
		ch := s.chunks[idx]
		if chunkPruned(ch.Stats(), s.schema, s.preds) {
			s.metrics.ChunksPruned.Inc()
			continue
		}
		s.metrics.ChunksScanned.Inc()
		sel := s.filterChunk(ch)
		if len(s.preds) > 0 && len(sel) == 0 {
			continue
		}
		if s.batchRows > 0 {
			if sel == nil {
				sel = make([]int, ch.Rows())
				for i := range sel {
					sel[i] = i
				}
			}
			if len(sel) > s.batchRows {
				*b = Batch{Chunk: ch, Cols: s.proj, rest: sel}
				s.emitRest(b)
				return true
			}
		}
		*b = Batch{Chunk: ch, Cols: s.proj, Sel: sel}
		return true
	}
}

// emitRest hands out the next slice of a split chunk stashed in b.
func (s *Scanner) emitRest(b *Batch) bool {
	if b.rest == nil {
		return false
	}
	end := b.restOff + s.batchRows
	if end > len(b.rest) {
		end = len(b.rest)
	}
	b.Sel = b.rest[b.restOff:end]
	b.restOff = end
	if b.restOff >= len(b.rest) {
		b.rest, b.restOff = nil, 0
	}
	return true
}

// Err implements the iterator contract. Scanning a snapshot cannot fail.
func (s *Scanner) Err() error { return nil }

// Close implements the iterator contract.
func (s *Scanner) Close() error { return nil }

// filterChunk evaluates predicates per row and returns the selection, nil
// when no predicates are set.
func (s *Scanner) filterChunk(ch *colbuf.Chunk) []int {
	if len(s.preds) == 0 {
		return nil
	}
	var sel []int
	rows := ch.Rows()
	s.metrics.RowsEvaluated.Add(int64(rows))
	for r := 0; r < rows; r++ {
		if rowMatches(ch, r, s.preds) {
			sel = append(sel, r)
		}
	}
	s.metrics.RowsMatched.Add(int64(len(sel)))
	return sel
}

func rowMatches(ch *colbuf.Chunk, row int, preds []Predicate) bool {
	for _, p := range preds {
		if !p.matches(ch.Value(row, p.Col)) {
			return false
		}
	}
	return true
}

// chunkPruned reports whether chunk statistics prove no row can match.
//
// Timestamp pruning compares the predicate constant in rounded microseconds
// against the chunk bounds. Null cells never match equality or ordered
// predicates, so bounds computed from the non-null values prune null-bearing
// chunks soundly. Dimension pruning fires on equality against a uniform
// chunk with a different value.
func chunkPruned(st colbuf.Stats, schema otelschema.Schema, preds []Predicate) bool {
	for _, p := range preds {
		if p.Col == 0 && tsPruned(st, p) {
			return true
		}
		if p.Op != OpEq || p.Value.IsNull() {
			continue
		}
		if p.Col == schema.ServiceCol && !st.Service.Matches(p.Value.Str()) {
			return true
		}
		if p.Col == schema.MetricCol && !st.Metric.Matches(p.Value.Str()) {
			return true
		}
	}
	return false
}

func tsPruned(st colbuf.Stats, p Predicate) bool {
	switch {
	case p.Op == OpIsNotNull:
		return !st.HasTS
	case p.Op == OpIsNull || (p.Op == OpEq && p.Value.IsNull()):
		return !st.NullTS
	case p.Op == OpNotEq || p.Value.IsNull():
		return false
	case !st.HasTS:
		// Every timestamp is null, so no row can match.
		return true
	}
	us := otelstorage.TimestampMicros(p.Value.Timestamp())
	switch p.Op {
	case OpEq:
		return us < st.TSMinMicros || us > st.TSMaxMicros
	case OpLt, OpLtEq:
		return st.TSMinMicros > us
	case OpGt, OpGtEq:
		return st.TSMaxMicros < us
	default:
		return false
	}
}

func errProjection(s otelschema.Schema, col int) error {
	return errors.Errorf("%s: projection column %d out of range", s.Name, col)
}
