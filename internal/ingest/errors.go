package ingest

import "fmt"

// FormatError reports input that is neither OTLP JSON nor OTLP protobuf.
// Format detection fails closed: undetectable input aborts ingestion
// regardless of the error policy.
type FormatError struct {
	Source string
	Reason string
}

// Error implements error.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: unsupported input format: %s", e.Source, e.Reason)
}

// SizeLimitError reports a document or line exceeding the configured byte
// limit.
type SizeLimitError struct {
	Source string
	Limit  int64
}

// Error implements error.
func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s: input exceeds maximum supported size of %d bytes", e.Source, e.Limit)
}

// ParseError reports a malformed document or record. Line is 1-based for
// JSON Lines input and zero for whole-document input.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: parse: %s", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: parse: %s", e.Source, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }
