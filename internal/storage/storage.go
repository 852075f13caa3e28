// Package storage uploads backup archives to an object store. MinIO and
// Google Cloud Storage backends are supported.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Marcel-mosha/task-manager/config"
)

// Uploader writes objects into a configured bucket.
type Uploader interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Bucket() string
	Close() error
}

// NewUploader constructs the backend selected by config, or nil when no
// backend is configured.
func NewUploader(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		return NewMinioUploader(cfg)
	case "gcs":
		return NewGCSUploader(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
