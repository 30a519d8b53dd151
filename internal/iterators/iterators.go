// Package iterators defines the scan iterator contract.
package iterators

// Iterator is a batch iterator interface.
//
// Scanners hand out immutable chunk batches through it; implementations may
// allow multiple goroutines to call Next concurrently, each draining a
// disjoint subset of batches.
type Iterator[T any] interface {
	// Next returns true, if there is element and fills t.
	Next(t *T) bool
	// Err returns an error caused during iteration, if any.
	Err() error
	// Close closes iterator.
	Close() error
}

// ForEach calls given callback for each iterator element.
//
// NOTE: ForEach does not close iterator.
func ForEach[T any](i Iterator[T], cb func(T) error) error {
	var t T
	for i.Next(&t) {
		if err := cb(t); err != nil {
			return err
		}
	}
	return i.Err()
}
