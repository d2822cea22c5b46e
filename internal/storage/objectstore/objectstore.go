// Package objectstore holds uploaded board media. The production backend is a
// MinIO/S3 bucket; a local directory backend serves development setups.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when deleting a key that does not exist
var ErrObjectNotFound = errors.New("object not found")

// Object describes a stored upload
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// Store is the minimal surface the services need from an object backend
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// NewKey builds an object key of the form <folder>/<eventID>/<uuid><ext>
func NewKey(folder string, eventID uuid.UUID, filename string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", folder, eventID, uuid.New(), ext)
}

// CleanKey rejects keys that could escape the bucket or directory root
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
