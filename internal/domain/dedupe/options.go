// Package dedupe tracks checkin submission ids for at-most-once intake.
package dedupe

// defaultMaxSize bounds the cache when no option overrides it.
const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of submission ids kept in memory.
// maxSize <= 0 selects unbounded mode (no eviction).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
