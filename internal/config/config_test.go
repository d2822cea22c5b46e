package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "wisha-bucket", cfg.Storage.Bucket)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(52428800), cfg.Upload.MaxFileSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "wisha_test")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TOKEN_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, "wisha_test", cfg.DB.Name)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.Host = "db"
	cfg.DB.Port = "5432"
	cfg.DB.Name = "wisha"
	cfg.DB.SSLMode = "disable"

	assert.Equal(t, "postgres://u:p@db:5432/wisha?sslmode=disable", cfg.GetDatabaseURL())
}

func TestStoragePublicURL(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Endpoint = "minio:9000"
	cfg.Storage.Bucket = "wisha-bucket"
	assert.Equal(t, "http://minio:9000/wisha-bucket", cfg.StoragePublicURL())

	cfg.Storage.UseSSL = true
	assert.Equal(t, "https://minio:9000/wisha-bucket", cfg.StoragePublicURL())

	cfg.Storage.PublicBaseURL = "https://cdn.wisha.app/media/"
	assert.Equal(t, "https://cdn.wisha.app/media", cfg.StoragePublicURL())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b "))
	assert.Empty(t, SplitList(""))
}
