package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/objectstore"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit
var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// StorageService puts board media into the object store
type StorageService struct {
	store   objectstore.Store
	maxSize int64
	log     *log.Logger
}

// NewStorageService crea el servicio de archivos. Con maxSize <= 0 no hay límite de tamaño.
func NewStorageService(store objectstore.Store, maxSize int64) *StorageService {
	return &StorageService{
		store:   store,
		maxSize: maxSize,
		log:     logger.Service("storage"),
	}
}

// Upload stores r under <folder>/<eventID>/<uuid><ext> and returns its public location
func (s *StorageService) Upload(ctx context.Context, folder string, eventID uuid.UUID, filename, contentType string, size int64, r io.Reader) (*objectstore.Object, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	key := objectstore.NewKey(folder, eventID, filename)
	s.log.Debug("uploading object", "key", key, "size", size, "content_type", contentType)

	obj, err := s.store.Upload(ctx, key, r, size, contentType)
	if err != nil {
		s.log.Error("upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	s.log.Info("object uploaded", "key", obj.Key, "size", obj.Size)
	return obj, nil
}

// Delete removes an object; a missing key is not an error
func (s *StorageService) Delete(ctx context.Context, key string) error {
	err := s.store.Delete(ctx, key)
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		s.log.Debug("object already gone", "key", key)
		return nil
	}
	if err != nil {
		s.log.Error("failed to delete object", "key", key, "error", err)
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *StorageService) PublicURL(key string) string {
	return s.store.PublicURL(key)
}

// KeyFromURL recovers the object key from a public URL produced by this
// store. It returns false for foreign URLs such as GIF links.
func (s *StorageService) KeyFromURL(url string) (string, bool) {
	base := strings.TrimSuffix(s.store.PublicURL(""), "/")
	if base == "" || !strings.HasPrefix(url, base+"/") {
		return "", false
	}
	key := strings.TrimPrefix(url, base+"/")
	if _, err := objectstore.CleanKey(key); err != nil {
		return "", false
	}
	return key, true
}
