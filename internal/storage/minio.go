package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Marcel-mosha/task-manager/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioUploader uploads backup archives to a MinIO (or S3-compatible)
// bucket.
type MinioUploader struct {
	client *minio.Client
	bucket string
}

// NewMinioUploader constructs a MinIO uploader from config.
func NewMinioUploader(cfg config.StorageConfig) (*MinioUploader, error) {
	if strings.TrimSpace(cfg.Minio.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.Minio.AccessKey) == "" || strings.TrimSpace(cfg.Minio.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioUploader{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket ensures the configured bucket exists.
func (m *MinioUploader) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// Upload stores an object in the configured bucket.
func (m *MinioUploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Bucket returns the configured bucket name.
func (m *MinioUploader) Bucket() string {
	return m.bucket
}

// Close is a no-op; the MinIO client holds no persistent connection.
func (m *MinioUploader) Close() error {
	return nil
}
