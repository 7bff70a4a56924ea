package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket
type GCS struct {
	client *gcs.Client
	bucket string
	log    *zap.Logger
}

// NewGCS connects and checks that the bucket is reachable. An empty
// credentialsFile falls back to application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string, log *zap.Logger) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Cloud Storage: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s is not accessible: %w", bucket, err)
	}
	log.Info("Google Cloud Storage ready", zap.String("bucket", bucket))
	return &GCS{client: client, bucket: bucket, log: log}, nil
}

func (g *GCS) Save(ctx context.Context, r io.Reader, contentType, folder, filename string) (Object, error) {
	key := objectName(folder, filename, contentType)

	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	writer.ContentType = contentType

	n, err := io.Copy(writer, r)
	if err != nil {
		writer.Close()
		return Object{}, fmt.Errorf("copy file to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Object{}, fmt.Errorf("close GCS writer: %w", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
	g.log.Debug("file uploaded", zap.String("object", key))
	return Object{Key: key, URL: url, Size: n}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (g *GCS) Close() error {
	return g.client.Close()
}
