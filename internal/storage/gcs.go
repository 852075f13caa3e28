package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Marcel-mosha/task-manager/config"
	"google.golang.org/api/option"
)

// GCSUploader uploads backup archives to a Google Cloud Storage bucket.
type GCSUploader struct {
	client    *storage.Client
	bucket    string
	projectID string
}

// NewGCSUploader constructs a GCS uploader from config.
func NewGCSUploader(ctx context.Context, cfg config.StorageConfig) (*GCSUploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.GCS.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCS.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSUploader{
		client:    client,
		bucket:    cfg.Bucket,
		projectID: cfg.GCS.ProjectID,
	}, nil
}

// EnsureBucket ensures the configured bucket exists.
func (g *GCSUploader) EnsureBucket(ctx context.Context) error {
	_, err := g.client.Bucket(g.bucket).Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if strings.TrimSpace(g.projectID) == "" {
		return errors.New("gcs project id is required to create bucket")
	}
	return g.client.Bucket(g.bucket).Create(ctx, g.projectID, nil)
}

// Upload stores an object in the configured bucket.
func (g *GCSUploader) Upload(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if strings.TrimSpace(contentType) != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// Bucket returns the configured bucket name.
func (g *GCSUploader) Bucket() string {
	return g.bucket
}

// Close closes the underlying GCS client.
func (g *GCSUploader) Close() error {
	return g.client.Close()
}
