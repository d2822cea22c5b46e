package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/wisha-api/internal/logger"
)

// DiskStore writes uploads below a local directory served at baseURL
type DiskStore struct {
	root    string
	baseURL string
	log     *log.Logger
}

// NewDiskStore creates root if needed
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskStore{root: root, baseURL: baseURL, log: logger.Storage("disk")}, nil
}

// Root is the directory objects are written under
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		s.log.Error("Failed to create file", "path", dst, "error", err)
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(dst)
		s.log.Error("Failed to save file", "path", dst, "error", err)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	s.log.Info("File saved", "key", key, "size", written)
	return &Object{Key: key, URL: s.PublicURL(key), Size: written, ContentType: contentType}, nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.log.Info("File deleted", "key", key)
	return nil
}

func (s *DiskStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}
