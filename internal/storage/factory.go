package storage

import (
	"context"
	"fmt"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/memory"
	"github.com/gravadigital/wisha-api/internal/storage/objectstore"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// StorageType represents the type of relational storage backend
type StorageType string

// UploadBackend selects where uploaded media is kept
type UploadBackend string

const (
	// StorageTypePostgres represents PostgreSQL storage
	StorageTypePostgres StorageType = "postgres"
	// StorageTypeMemory keeps everything in process, for local runs without a database
	StorageTypeMemory StorageType = "memory"

	UploadBackendMinio UploadBackend = "minio"
	UploadBackendDisk  UploadBackend = "disk"
)

// Backends bundles every store the service talks to
type Backends struct {
	Repos   postgres.RepositoryContainer
	Objects objectstore.Store
	Cache   cache.Store
}

// Close releases the cache and the database connection
func (b *Backends) Close() error {
	var firstErr error
	if b.Cache != nil {
		if err := b.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if b.Repos != nil {
		if err := b.Repos.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory provides a factory pattern for creating storage containers
type Factory struct {
	storageType StorageType
}

// NewFactory creates a new storage factory
func NewFactory(storageType StorageType) *Factory {
	return &Factory{
		storageType: storageType,
	}
}

// CreateContainer creates a storage container based on the configured type
func (f *Factory) CreateContainer(cfg *config.Config) (postgres.RepositoryContainer, error) {
	switch f.storageType {
	case StorageTypePostgres:
		return postgres.NewContainer(cfg)
	case StorageTypeMemory:
		logger.Storage("memory").Warn("Using in-memory repositories, data is lost on restart")
		return memory.NewContainer(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", f.storageType)
	}
}

// CreateObjectStore picks the upload backend from cfg.Upload.Backend
func (f *Factory) CreateObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch UploadBackend(cfg.Upload.Backend) {
	case UploadBackendMinio:
		store, err := objectstore.NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case UploadBackendDisk:
		return objectstore.NewDiskStore(cfg.Upload.Dir, "/uploads")
	default:
		return nil, fmt.Errorf("unsupported upload backend: %s", cfg.Upload.Backend)
	}
}

// CreateCache connects to Redis when an address is configured and falls back
// to a process-local store otherwise.
func (f *Factory) CreateCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.Redis.Addr == "" {
		logger.Storage("memory").Warn("REDIS_ADDR not set, sessions and preferences are kept in memory")
		return cache.NewMemoryStore(), nil
	}
	return cache.NewRedisStore(ctx, cfg)
}

// Open creates every backend, closing what was already opened if a later step fails
func (f *Factory) Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	repos, err := f.CreateContainer(cfg)
	if err != nil {
		return nil, err
	}
	b := &Backends{Repos: repos}

	if b.Cache, err = f.CreateCache(ctx, cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	if b.Objects, err = f.CreateObjectStore(ctx, cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// GetSupportedTypes returns a list of supported storage types
func GetSupportedTypes() []StorageType {
	return []StorageType{
		StorageTypePostgres,
		StorageTypeMemory,
	}
}

// ValidateStorageType validates if a storage type is supported
func ValidateStorageType(storageType string) (StorageType, error) {
	st := StorageType(storageType)

	for _, supported := range GetSupportedTypes() {
		if st == supported {
			return st, nil
		}
	}

	return "", fmt.Errorf("unsupported storage type: %s. Supported types: %v", storageType, GetSupportedTypes())
}

// DefaultFactory returns a factory configured with the default storage type
func DefaultFactory() *Factory {
	return NewFactory(StorageTypePostgres)
}
