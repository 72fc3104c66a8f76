package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection info for a MinIO server.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioClient implements ObjectStorage with the MinIO SDK.
type MinioClient struct {
	client *minio.Client
	bucket string
}

func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket must be provided")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

// ListObjects lists the objects directly under prefix.
func (c *MinioClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := strings.Trim(prefix, "/")
	opts := minio.ListObjectsOptions{}
	if dir != "" {
		opts.Prefix = dir + "/"
	}

	var results []ObjectInfo
	for object := range c.client.ListObjects(ctx, c.bucket, opts) {
		if object.Err != nil {
			return nil, fmt.Errorf("minio list failed: %w", object.Err)
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		results = append(results, ObjectInfo{Key: path.Clean(object.Key), Size: object.Size})
	}
	return results, nil
}

// ReadObject returns the full content of key.
func (c *MinioClient) ReadObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get %s failed: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("minio read %s failed: %w", key, err)
	}
	return data, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *MinioClient) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := c.client.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("minio download %s failed: %w", key, err)
	}
	return nil
}

// UploadObject writes data to key.
func (c *MinioClient) UploadObject(ctx context.Context, key string, data []byte) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return fmt.Errorf("minio put %s failed: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*MinioClient)(nil)

func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
