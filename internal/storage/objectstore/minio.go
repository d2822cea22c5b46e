package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/logger"
)

const publicReadPolicy = `{
    "Version": "2012-10-17",
    "Statement": [{
        "Effect": "Allow",
        "Principal": {"AWS": ["*"]},
        "Action": ["s3:GetObject"],
        "Resource": ["arn:aws:s3:::%s/*"]
    }]
}`

// MinioStore keeps objects in a MinIO (or any S3 compatible) bucket
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *log.Logger
}

// NewMinioStore connects to the configured endpoint
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	l := logger.Storage("minio")

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		l.Error("Failed to create object storage client", "endpoint", cfg.Storage.Endpoint, "error", err)
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	l.Info("Object storage client created", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	return &MinioStore{
		client:  client,
		bucket:  cfg.Storage.Bucket,
		baseURL: cfg.StoragePublicURL(),
		log:     l,
	}, nil
}

// EnsureBucket creates the bucket on first start and makes its objects publicly readable
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		s.log.Error("Failed to check bucket", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		s.log.Debug("Bucket already exists", "bucket", s.bucket)
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		s.log.Error("Failed to create bucket", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket)); err != nil {
		s.log.Error("Failed to set bucket policy", "bucket", s.bucket, "error", err)
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	s.log.Info("Bucket created", "bucket", s.bucket)
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Uploading object", "key", key, "size", size, "content_type", contentType)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error("Failed to upload object", "key", key, "error", err)
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	s.log.Info("Object uploaded", "key", key, "size", info.Size)
	return &Object{Key: key, URL: s.PublicURL(key), Size: info.Size, ContentType: contentType}, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrObjectNotFound
		}
		s.log.Error("Failed to delete object", "key", key, "error", err)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.log.Info("Object deleted", "key", key)
	return nil
}

func (s *MinioStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}
