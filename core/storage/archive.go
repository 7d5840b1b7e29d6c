package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

// Archiver writes JSON documents to a bucket under date-partitioned keys.
// A nil Archiver accepts every call and stores nothing.
type Archiver struct {
	client Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewArchiver creates an archiver writing to bucket under prefix.
func NewArchiver(client Client, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// FromConfig returns nil when archiving is disabled.
func FromConfig(cfg Config) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewArchiver(client, cfg.Bucket, cfg.Prefix), nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	if a == nil {
		return nil
	}
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Key returns the object key a document named name would be stored at.
func (a *Archiver) Key(name string) string {
	t := a.now().UTC()
	return path.Join(a.prefix, t.Format("2006/01/02"), fmt.Sprintf("%s-%s.json", t.Format("150405"), name))
}

// Save marshals v as JSON and uploads it. It returns the object key.
func (a *Archiver) Save(ctx context.Context, name string, v any) (string, error) {
	if a == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	key := a.Key(name)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
