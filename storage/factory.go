package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/lazyq/logger"
)

// Factory creates a Storage implementation from validated config.
type Factory func(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// RegisterFactory registers a storage backend factory for the given provider name.
// Backend packages call this in an init function.
func RegisterFactory(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New creates a Storage implementation based on the given Config.
// The backend package for cfg.Provider must have been imported so its
// factory is registered.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mu.RLock()
	f, ok := factories[cfg.Provider]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", map[string]interface{}{"provider": cfg.Provider})
	return f(ctx, cfg, l)
}
