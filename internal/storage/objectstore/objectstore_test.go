package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	eventID := uuid.New()

	key := NewKey("messages", eventID, "Cake.PNG")
	parts := strings.Split(key, "/")

	require.Len(t, parts, 3)
	assert.Equal(t, "messages", parts[0])
	assert.Equal(t, eventID.String(), parts[1])
	assert.True(t, strings.HasSuffix(parts[2], ".png"))
	_, err := uuid.Parse(strings.TrimSuffix(parts[2], ".png"))
	assert.NoError(t, err)
}

func TestNewKeyDefaultsFolder(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewKey("", uuid.New(), "a.webm"), "uploads/"))
}

func TestCleanKey(t *testing.T) {
	got, err := CleanKey("/messages/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "messages/a/b.png", got)

	for _, bad := range []string{"", "../etc/passwd", "a/../../b", "/"} {
		_, err := CleanKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestDiskStoreUploadAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	obj, err := store.Upload(ctx, "messages/ev/file.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)

	assert.Equal(t, int64(5), obj.Size)
	assert.Equal(t, "http://localhost:8080/uploads/messages/ev/file.txt", obj.URL)

	data, err := os.ReadFile(filepath.Join(root, "messages", "ev", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, obj.Key))
	assert.ErrorIs(t, store.Delete(ctx, obj.Key), ErrObjectNotFound)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}
