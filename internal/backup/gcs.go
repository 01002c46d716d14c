package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
)

// GCSStorage is ObjectStorage backed by a Google Cloud Storage bucket.
// It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
type GCSStorage struct {
	bucket string
}

// NewGCSStorage creates object storage over the given bucket.
func NewGCSStorage(bucket string) *GCSStorage {
	return &GCSStorage{bucket: bucket}
}

// Write implements ObjectStorage.
func (g *GCSStorage) Write(ctx context.Context, objectName string, data []byte) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", objectName, err)
	}

	return nil
}

// Read implements ObjectStorage.
func (g *GCSStorage) Read(ctx context.Context, objectName string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(g.bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", objectName, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", objectName, err)
	}

	return data, nil
}

var _ ObjectStorage = (*GCSStorage)(nil)
