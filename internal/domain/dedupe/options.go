package dedupe

// Option configures the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithCapacity presizes the key set.
func WithCapacity(n int) Option {
	return func(d *inMemoryDeduper) {
		if n > 0 {
			d.hint = n
		}
	}
}
