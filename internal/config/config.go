// Package config holds the small set of knobs the async engine accepts at
// construction, using the functional-options pattern once there was more
// than a couple of positional parameters worth naming.
package config

import "github.com/rs/zerolog"

// Options configures an engine at construction time.
type Options struct {
	// LogLevel sets the global zerolog level for the process. Defaults to
	// zerolog.InfoLevel.
	LogLevel zerolog.Level

	// QueueCapacity is a sizing hint logged at startup for operators
	// tuning buffer sizes; the underlying queue is unbounded and a push
	// only ever blocks for the duration of its own critical section, never
	// on capacity.
	QueueCapacity int
}

// Option mutates an Options in place.
type Option func(*Options)

// Default returns the engine's default configuration.
func Default() Options {
	return Options{
		LogLevel:      zerolog.InfoLevel,
		QueueCapacity: 0,
	}
}

// WithLogLevel overrides the global zerolog level.
func WithLogLevel(level zerolog.Level) Option {
	return func(o *Options) { o.LogLevel = level }
}

// WithQueueCapacity records a sizing hint for the ingress/egress queues.
func WithQueueCapacity(n int) Option {
	return func(o *Options) { o.QueueCapacity = n }
}

// Apply starts from Default and folds in every opt in order.
func Apply(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
