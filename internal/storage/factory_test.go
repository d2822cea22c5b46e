package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/objectstore"
)

func TestValidateStorageType(t *testing.T) {
	st, err := ValidateStorageType("postgres")
	require.NoError(t, err)
	assert.Equal(t, StorageTypePostgres, st)

	st, err = ValidateStorageType("memory")
	require.NoError(t, err)
	assert.Equal(t, StorageTypeMemory, st)

	_, err = ValidateStorageType("mysql")
	assert.Error(t, err)
}

func TestCreateCacheFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{}

	store, err := DefaultFactory().CreateCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryStore{}, store)
}

func TestCreateObjectStoreDisk(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upload.Backend = "disk"
	cfg.Upload.Dir = t.TempDir()

	store, err := DefaultFactory().CreateObjectStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &objectstore.DiskStore{}, store)
	assert.Equal(t, "/uploads/a/b.png", store.PublicURL("a/b.png"))
}

func TestCreateObjectStoreUnknown(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upload.Backend = "ftp"

	_, err := DefaultFactory().CreateObjectStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestCreateContainerMemory(t *testing.T) {
	repos, err := NewFactory(StorageTypeMemory).CreateContainer(&config.Config{})
	require.NoError(t, err)
	assert.NoError(t, repos.Health(context.Background()))
}
