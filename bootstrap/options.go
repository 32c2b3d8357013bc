package bootstrap

import (
	"time"

	"github.com/kbukum/lazyq/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	components      []string
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the global logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration of the OnStop phase.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithComponentLoggers registers a logger per name in the logger registry,
// derived from the application logger, so logger.Get(name) resolves to it.
func WithComponentLoggers(names ...string) Option {
	return func(o *appOptions) {
		o.components = append(o.components, names...)
	}
}
