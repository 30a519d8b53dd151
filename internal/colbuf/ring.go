package colbuf

import (
	"sync"

	"github.com/go-faster/otelbuf/internal/otelschema"
)

// RingBuffer is a bounded, thread-safe columnar buffer for one table.
//
// Writers append rows into a building chunk; once the chunk reaches
// chunkRows it is sealed and, if the buffer already holds maxChunks sealed
// chunks, the oldest one is evicted. Readers take snapshots of the sealed
// chunks and are never blocked by eviction: chunks are immutable and shared
// by reference.
type RingBuffer struct {
	schema    otelschema.Schema
	chunkRows int
	maxChunks int

	mux     sync.RWMutex
	chunks  []*Chunk
	builder *chunkBuilder
	evicted int64
}

// NewRingBuffer creates a buffer holding at most maxChunks sealed chunks of
// chunkRows rows each. Both must be positive.
func NewRingBuffer(schema otelschema.Schema, chunkRows, maxChunks int) *RingBuffer {
	if chunkRows <= 0 || maxChunks <= 0 {
		panic("colbuf: chunkRows and maxChunks must be positive")
	}
	return &RingBuffer{
		schema:    schema,
		chunkRows: chunkRows,
		maxChunks: maxChunks,
		builder:   newChunkBuilder(schema),
	}
}

// Schema returns the buffer layout.
func (b *RingBuffer) Schema() otelschema.Schema { return b.schema }

// Append stores one row. The row must match the buffer schema; a mismatch is
// a programming error and panics.
func (b *RingBuffer) Append(row []otelschema.Value) {
	if err := b.schema.Validate(row); err != nil {
		panic(err)
	}
	b.mux.Lock()
	defer b.mux.Unlock()
	b.appendLocked(row)
}

// AppendBatch stores rows under a single lock acquisition.
func (b *RingBuffer) AppendBatch(rows [][]otelschema.Value) {
	if len(rows) == 0 {
		return
	}
	for _, row := range rows {
		if err := b.schema.Validate(row); err != nil {
			panic(err)
		}
	}
	b.mux.Lock()
	defer b.mux.Unlock()
	for _, row := range rows {
		b.appendLocked(row)
	}
}

func (b *RingBuffer) appendLocked(row []otelschema.Value) {
	b.builder.appendRow(row)
	if b.builder.rows >= b.chunkRows {
		b.sealLocked()
	}
}

func (b *RingBuffer) sealLocked() {
	ch := b.builder.seal()
	if ch == nil {
		return
	}
	b.chunks = append(b.chunks, ch)
	for len(b.chunks) > b.maxChunks {
		b.chunks[0] = nil
		b.chunks = b.chunks[1:]
		b.evicted++
	}
}

// Flush seals the building chunk so its rows become visible to snapshots.
func (b *RingBuffer) Flush() {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.sealLocked()
}

// Snapshot returns the sealed chunks, oldest first. The returned slice is
// owned by the caller; the chunks themselves are immutable and stay valid
// after subsequent writes and evictions.
func (b *RingBuffer) Snapshot() []*Chunk {
	b.mux.RLock()
	defer b.mux.RUnlock()
	out := make([]*Chunk, len(b.chunks))
	copy(out, b.chunks)
	return out
}

// Len returns the retained row count, building chunk included.
func (b *RingBuffer) Len() int {
	b.mux.RLock()
	defer b.mux.RUnlock()
	n := b.builder.rows
	for _, ch := range b.chunks {
		n += ch.rows
	}
	return n
}

// Evicted returns the number of chunks evicted since creation.
func (b *RingBuffer) Evicted() int64 {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.evicted
}

// Writer is a scoped writer holding the buffer's write lock between Begin
// and Close. It assembles rows cell by cell; cells left unset are null.
type Writer struct {
	buf *RingBuffer
	row []otelschema.Value
}

// Begin locks the buffer for writing. The caller must Close the writer.
func (b *RingBuffer) Begin() *Writer {
	b.mux.Lock()
	return &Writer{buf: b, row: newNullRow(b.schema.NumColumns())}
}

// Set stores a cell of the pending row.
func (w *Writer) Set(col int, v otelschema.Value) {
	w.row[col] = v
}

// SetNull clears a cell of the pending row.
func (w *Writer) SetNull(col int) {
	w.row[col] = otelschema.Null()
}

// Commit validates and appends the pending row, then resets to an all-null
// row. Panics on schema mismatch.
func (w *Writer) Commit() {
	if err := w.buf.schema.Validate(w.row); err != nil {
		panic(err)
	}
	w.buf.appendLocked(w.row)
	w.row = newNullRow(w.buf.schema.NumColumns())
}

// Close releases the buffer lock. The pending uncommitted row is discarded.
func (w *Writer) Close() {
	w.buf.mux.Unlock()
	w.buf = nil
}

func newNullRow(n int) []otelschema.Value {
	row := make([]otelschema.Value, n)
	for i := range row {
		row[i] = otelschema.Null()
	}
	return row
}
