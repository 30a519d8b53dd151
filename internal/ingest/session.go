package ingest

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// OnError selects how malformed documents and records are handled.
type OnError uint8

const (
	// OnErrorFail aborts ingestion on the first malformed input.
	OnErrorFail OnError = iota
	// OnErrorSkip drops malformed input and continues.
	OnErrorSkip
	// OnErrorNullify stores an all-null placeholder row per malformed input
	// and continues.
	OnErrorNullify
)

// String implements fmt.Stringer.
func (o OnError) String() string {
	switch o {
	case OnErrorFail:
		return "fail"
	case OnErrorSkip:
		return "skip"
	case OnErrorNullify:
		return "nullify"
	default:
		return "unknown"
	}
}

// ParseOnError maps a policy name to its mode.
func ParseOnError(s string) (OnError, error) {
	switch s {
	case "fail":
		return OnErrorFail, nil
	case "skip":
		return OnErrorSkip, nil
	case "nullify":
		return OnErrorNullify, nil
	default:
		return 0, errors.Errorf("on_error must be one of 'fail', 'skip', or 'nullify', got %q", s)
	}
}

// Session carries the outcome of one ingestion run. Counters are atomic so
// callers may observe them while ingestion is still running.
type Session struct {
	ID     uuid.UUID
	Source string

	// Format and JSONLines are set after detection, before any decoding.
	Format    Format
	JSONLines bool

	// Records counts rows appended from successfully decoded input.
	Records atomic.Int64
	// Documents counts decoded documents or lines, malformed ones included.
	Documents atomic.Int64
	// ParseErrors counts malformed documents or lines.
	ParseErrors atomic.Int64
	// Skipped counts malformed inputs dropped under the skip policy.
	Skipped atomic.Int64
	// Nullified counts placeholder rows stored under the nullify policy.
	Nullified atomic.Int64
	// DroppedNulls counts placeholder rows that could not be routed because
	// no signal was ever detected for the source.
	DroppedNulls atomic.Int64
	// DroppedMetrics counts metrics of empty or unknown type.
	DroppedMetrics atomic.Int64
}

func newSession(source string) *Session {
	return &Session{
		ID:     uuid.New(),
		Source: source,
	}
}
