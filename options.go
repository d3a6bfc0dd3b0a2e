package arena

import "log/slog"

type poolConfig struct {
	chunkSize int
	offHeap   bool
	locking   bool
	registry  *Registry
	logger    *Logger
}

func defaultPoolConfig() poolConfig {
	return poolConfig{
		chunkSize: DefaultChunkSize,
		registry:  defaultRegistry,
		logger:    NoopLogger(),
	}
}

// Option configures a Pool.
type Option func(*poolConfig)

// WithChunkSize sets the size of each byte chunk. Values <= 0 select DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(c *poolConfig) {
		c.chunkSize = size
	}
}

// WithOffHeap maps byte chunks outside the Go heap. Typed slabs for element
// types holding pointers stay on the heap. Chunks fall back to the heap
// when mapping fails.
func WithOffHeap() Option {
	return func(c *poolConfig) {
		c.offHeap = true
	}
}

// WithLocking serializes every operation on the pool's arena so handles and
// containers may be shared between goroutines.
func WithLocking() Option {
	return func(c *poolConfig) {
		c.locking = true
	}
}

// WithRegistry registers the pool's arena in r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(c *poolConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithLogger configures structured logging for the pool.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(c *poolConfig) {
		if l == nil {
			l = NoopLogger()
		}
		c.logger = l
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
func WithLogLevel(level slog.Level) Option {
	return func(c *poolConfig) {
		c.logger = NewTextLogger(level)
	}
}

type scopeConfig struct {
	logger *Logger
}

// ScopeOption configures a Scope.
type ScopeOption func(*scopeConfig)

// WithScopeLogger sets the logger that reports guard misuse.
func WithScopeLogger(l *Logger) ScopeOption {
	return func(c *scopeConfig) {
		if l == nil {
			l = NoopLogger()
		}
		c.logger = l
	}
}
