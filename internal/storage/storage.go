package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the pipeline needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	ReadObject(ctx context.Context, key string) ([]byte, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// NewObjectStorage builds the client selected by cfg.Provider.
func NewObjectStorage(cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "sevalla", "s3":
		return NewSevallaClient(SevallaConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "minio":
		return NewMinioClient(MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "local":
		return NewLocalClient(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
