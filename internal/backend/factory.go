package backend

import (
	"context"
	"fmt"

	"expensebook/internal/cache"
	"expensebook/internal/log"
	"expensebook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv  storage.KV
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		kv, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		kv = storage.NewMemoryKV()
		f.logger.DebugContext(ctx, "Initialized memory backend")
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheSize == 0 {
		return &BackendResult{KV: kv, Cleanup: kv.Close}, nil
	}
	return f.withCache(kv, config), nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (storage.KV, error) {
	kv, err := storage.NewSQLiteKV(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Debug("Initialized SQLite backend",
		log.FieldPath, config.SQLiteDBPath,
		"schema_version", kv.SchemaVersion())

	return kv, nil
}

func (f *DefaultFactory) withCache(kv storage.KV, config Config) *BackendResult {
	values := storage.NewValueCache(config.CacheSize, config.CacheTTL)
	manager := cache.NewManager(f.logger.Logger)
	manager.Register(values)

	interval := config.CleanupInterval
	if interval <= 0 {
		interval = config.CacheTTL
	}
	manager.StartCleanup(interval)

	cached := storage.NewCachedKV(kv, values)
	f.logger.Debug("Read cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL)

	return &BackendResult{
		KV: cached,
		Cleanup: func() error {
			manager.Stop()
			stats := values.Stats()
			f.logger.Debug("Read cache stopped", "hits", stats.Hits, "misses", stats.Misses)
			return cached.Close()
		},
	}
}
