package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*window)

// WithMaxSize sets how many recent ids are remembered. Values below one are ignored.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		if maxSize > 0 {
			w.maxSize = maxSize
		}
	}
}
