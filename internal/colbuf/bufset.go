package colbuf

import "github.com/go-faster/otelbuf/internal/otelschema"

// Options configures buffer capacity.
//
// TargetRows is the retained row budget per table; it is translated into a
// chunk count so eviction granularity is whole chunks. MaxChunks, when set,
// overrides the derived count.
type Options struct {
	TargetRows int
	ChunkRows  int
	MaxChunks  int
}

// Capacity defaults.
const (
	DefaultTargetRows = 1_000_000
	DefaultChunkRows  = 8192
)

func (opt *Options) setDefaults() {
	if opt.TargetRows <= 0 {
		opt.TargetRows = DefaultTargetRows
	}
	if opt.ChunkRows <= 0 {
		opt.ChunkRows = DefaultChunkRows
	}
	if opt.MaxChunks <= 0 {
		opt.MaxChunks = (opt.TargetRows + opt.ChunkRows - 1) / opt.ChunkRows
		if opt.MaxChunks < 1 {
			opt.MaxChunks = 1
		}
	}
}

// BufferSet owns one ring buffer per stored table.
type BufferSet struct {
	bufs [otelschema.NumTables]*RingBuffer
}

// NewBufferSet creates buffers for all seven tables.
func NewBufferSet(opt Options) *BufferSet {
	opt.setDefaults()
	s := &BufferSet{}
	for k := otelschema.KindTraces; k <= otelschema.KindMetricsSummary; k++ {
		s.bufs[k] = NewRingBuffer(otelschema.For(k), opt.ChunkRows, opt.MaxChunks)
	}
	return s
}

// Table returns the buffer for a stored table.
func (s *BufferSet) Table(kind otelschema.TableKind) *RingBuffer {
	return s.bufs[kind]
}

// Metric returns the buffer backing a metric shape.
func (s *BufferSet) Metric(shape otelschema.MetricShape) *RingBuffer {
	return s.bufs[shape.TableKind()]
}

// FlushAll seals every building chunk.
func (s *BufferSet) FlushAll() {
	for _, b := range s.bufs {
		b.Flush()
	}
}

// TotalRows returns the retained row count across all tables.
func (s *BufferSet) TotalRows() int {
	var n int
	for _, b := range s.bufs {
		n += b.Len()
	}
	return n
}
