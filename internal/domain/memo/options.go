package memo

// Option applies a configuration option to the in-memory memo.
type Option func(*inMemoryMemo)

// WithMaxSize bounds the number of cached predictions.
// If maxSize <= 0 the memo is disabled and never stores anything.
func WithMaxSize(maxSize int) Option {
	return func(m *inMemoryMemo) {
		m.maxSize = maxSize
	}
}
