// Package storage keeps uploaded KYC documents on local disk, Google Cloud
// Storage or an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kyc-hub/config"
)

var ErrInvalidKey = errors.New("invalid object key")

// Object describes a stored upload
type Object struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type Storage interface {
	Save(ctx context.Context, r io.Reader, contentType, folder, filename string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	case "gcs":
		return NewGCS(ctx, cfg.Bucket, cfg.GCSCredentialsFile, log)
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:       cfg.Bucket,
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		}, WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// objectName builds "<folder>/<uuid>_<nanos>.<ext>"
func objectName(folder, filename, contentType string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = extensionFor(contentType)
	}
	name := fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().UnixNano(), ext)
	if folder = strings.Trim(folder, "/"); folder != "" {
		return folder + "/" + name
	}
	return name
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/tiff":
		return "tiff"
	case "image/bmp":
		return "bmp"
	case "application/pdf":
		return "pdf"
	default:
		return "bin"
	}
}

// validKey rejects keys that could escape the storage root
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
