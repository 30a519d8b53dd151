package colbuf

import (
	"github.com/go-faster/otelbuf/internal/otelschema"
	"github.com/go-faster/otelbuf/internal/otelstorage"
)

// DimState classifies one tracked dimension of a chunk.
type DimState uint8

const (
	// DimAbsent means the layout has no such dimension column.
	DimAbsent DimState = iota
	// DimUniform means every row carries the same non-null value.
	DimUniform
	// DimMixed means values differ or nulls are present.
	DimMixed
)

// DimSummary summarizes one dimension column across a chunk. Value is set
// only in the uniform state.
type DimSummary struct {
	State DimState
	Value string
}

// Matches reports whether a row with dimension value v may exist in a chunk
// with this summary.
func (d DimSummary) Matches(v string) bool {
	return d.State != DimUniform || d.Value == v
}

// Stats carries pruning statistics for one sealed chunk.
//
// Timestamp bounds are microseconds, rounded half up from the stored
// nanosecond values, and cover non-null timestamps only; HasTS is false when
// every row's timestamp is null. NullTS reports whether any row's timestamp
// is null, since such rows are invisible to the bounds.
type Stats struct {
	TSMinMicros int64
	TSMaxMicros int64
	HasTS       bool
	NullTS      bool

	Service DimSummary
	Metric  DimSummary
}

func (s *Stats) observeTS(v otelschema.Value) {
	if v.IsNull() {
		s.NullTS = true
		return
	}
	us := otelstorage.TimestampMicros(v.Timestamp())
	if !s.HasTS {
		s.TSMinMicros, s.TSMaxMicros, s.HasTS = us, us, true
		return
	}
	if us < s.TSMinMicros {
		s.TSMinMicros = us
	}
	if us > s.TSMaxMicros {
		s.TSMaxMicros = us
	}
}

func observeDim(d *DimSummary, first bool, v otelschema.Value) {
	if d.State == DimMixed {
		return
	}
	if v.IsNull() {
		d.State, d.Value = DimMixed, ""
		return
	}
	if first {
		d.State, d.Value = DimUniform, v.Str()
		return
	}
	if d.Value != v.Str() {
		d.State, d.Value = DimMixed, ""
	}
}

// Chunk is an immutable, sealed run of rows in columnar form. Chunks are
// shared by reference between the owning buffer and snapshots, so a chunk
// evicted from its buffer stays readable through snapshots holding it.
type Chunk struct {
	schema otelschema.Schema
	cols   []*column
	rows   int
	stats  Stats
}

// Schema returns the chunk layout.
func (c *Chunk) Schema() otelschema.Schema { return c.schema }

// Rows returns the row count.
func (c *Chunk) Rows() int { return c.rows }

// Stats returns the chunk's pruning statistics.
func (c *Chunk) Stats() Stats { return c.stats }

// Value returns the cell at (row, col).
func (c *Chunk) Value(row, col int) otelschema.Value {
	return c.cols[col].value(row)
}

// Row materializes one full row. Scans read columns directly; this is for
// tests and row-shaped consumers.
func (c *Chunk) Row(row int) []otelschema.Value {
	out := make([]otelschema.Value, len(c.cols))
	for i, col := range c.cols {
		out[i] = col.value(row)
	}
	return out
}

// chunkBuilder accumulates rows for the buffer's building chunk and tracks
// statistics incrementally.
type chunkBuilder struct {
	schema otelschema.Schema
	cols   []*column
	rows   int
	stats  Stats
}

func newChunkBuilder(schema otelschema.Schema) *chunkBuilder {
	cols := make([]*column, len(schema.Columns))
	for i, col := range schema.Columns {
		cols[i] = newColumn(col.Type)
	}
	return &chunkBuilder{schema: schema, cols: cols}
}

func (b *chunkBuilder) appendRow(row []otelschema.Value) {
	first := b.rows == 0
	for i, v := range row {
		b.cols[i].append(v)
	}
	b.stats.observeTS(row[0])
	if b.schema.ServiceCol >= 0 {
		observeDim(&b.stats.Service, first, row[b.schema.ServiceCol])
	}
	if b.schema.MetricCol >= 0 {
		observeDim(&b.stats.Metric, first, row[b.schema.MetricCol])
	}
	b.rows++
}

// seal freezes the accumulated rows into an immutable chunk and resets the
// builder. Returns nil when empty.
func (b *chunkBuilder) seal() *Chunk {
	if b.rows == 0 {
		return nil
	}
	ch := &Chunk{schema: b.schema, cols: b.cols, rows: b.rows, stats: b.stats}
	cols := make([]*column, len(b.schema.Columns))
	for i, col := range b.schema.Columns {
		cols[i] = newColumn(col.Type)
	}
	b.cols, b.rows, b.stats = cols, 0, Stats{}
	return ch
}
