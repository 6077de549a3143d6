package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"songvote/internal/state"
)

// DocumentRepo keeps each document as one object, gs://bucket/prefix/<name>.json.
// Object writes become visible only when the writer is closed, so a reader
// never observes a partial document.
type DocumentRepo struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS client from credentialsFile, or from application
// default credentials when it is empty.
func New(ctx context.Context, bucket, prefix, credentialsFile string) (*DocumentRepo, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &DocumentRepo{client: client, bucket: bucket, prefix: prefix}, nil
}

func (r *DocumentRepo) Read(ctx context.Context, name string) ([]byte, error) {
	rd, err := r.client.Bucket(r.bucket).Object(ObjectName(r.prefix, name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

func (r *DocumentRepo) Write(ctx context.Context, name string, body []byte) error {
	w := r.client.Bucket(r.bucket).Object(ObjectName(r.prefix, name)).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}
	return nil
}

func (r *DocumentRepo) Close() error {
	return r.client.Close()
}

func ObjectName(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name + ".json"
	}
	return path.Join(prefix, name+".json")
}
