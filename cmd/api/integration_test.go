//go:build integration
// +build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/server"
	"github.com/gravadigital/wisha-api/internal/storage"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// Integration tests that require a real PostgreSQL database
// Run with: go test -tags=integration

func testConfig(t *testing.T) *config.Config {
	cfg := config.Load()
	if testDB := os.Getenv("TEST_DB_NAME"); testDB != "" {
		cfg.DB.Name = testDB
	}
	cfg.DB.Type = string(storage.StorageTypePostgres)
	cfg.Upload.Backend = string(storage.UploadBackendDisk)
	cfg.Upload.Dir = t.TempDir()
	cfg.Redis.Addr = ""
	return cfg
}

func TestDatabaseConnection(t *testing.T) {
	cfg := testConfig(t)

	db, err := postgres.Connect(cfg)
	require.NoError(t, err, "Should be able to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping(), "Should be able to ping the database")
	sqlDB.Close()
}

func TestDatabaseMigration(t *testing.T) {
	cfg := testConfig(t)

	db, err := postgres.Connect(cfg)
	require.NoError(t, err, "Should be able to connect to test database")
	defer postgres.Close(db)

	assert.NoError(t, postgres.AutoMigrate(db), "Should be able to run migrations")
}

func TestSignupCreateEventAndPost(t *testing.T) {
	cfg := testConfig(t)

	backends, err := storage.NewFactory(storage.StorageTypePostgres).Open(context.Background(), cfg)
	require.NoError(t, err)
	defer backends.Close()

	router := server.New(cfg, backends).Router()

	email := "it-" + uuid.NewString()[:8] + "@example.com"
	body := map[string]any{
		"eventName": "Integration Party",
		"category":  "birthday",
		"credentials": map[string]any{
			"email":     email,
			"password":  "secret123",
			"firstName": "Ada",
		},
	}
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			Event struct {
				ID string `json:"id"`
			} `json:"event"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.Event.ID)

	raw, _ = json.Marshal(map[string]string{"content": "Congrats!", "guestName": "Bob"})
	req = httptest.NewRequest(http.MethodPost, "/api/events/"+created.Data.Event.ID+"/messages", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
