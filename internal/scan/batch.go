package scan

import (
	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/otelschema"
)

// Batch is one chunk's worth of scan output. It references the immutable
// chunk instead of copying rows: Cols maps batch columns to chunk columns
// and Sel selects the matching rows, nil meaning every row.
type Batch struct {
	Chunk *colbuf.Chunk
	Cols  []int
	Sel   []int

	// Remainder of the claimed chunk when Options.BatchRows splits it.
	// Goroutine-local: each worker drains its own batch variable.
	rest    []int
	restOff int
}

// Len returns the selected row count.
func (b *Batch) Len() int {
	if b.Sel != nil {
		return len(b.Sel)
	}
	return b.Chunk.Rows()
}

func (b *Batch) chunkRow(row int) int {
	if b.Sel != nil {
		return b.Sel[row]
	}
	return row
}

// Value returns the cell at batch position (row, col), col indexing Cols.
func (b *Batch) Value(row, col int) otelschema.Value {
	return b.Chunk.Value(b.chunkRow(row), b.Cols[col])
}

// Row materializes one projected row.
func (b *Batch) Row(row int) []otelschema.Value {
	out := make([]otelschema.Value, len(b.Cols))
	r := b.chunkRow(row)
	for i, col := range b.Cols {
		out[i] = b.Chunk.Value(r, col)
	}
	return out
}
