package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chartmuseum/storage"
)

// SevallaConfig encapsulates the connection info for Sevalla (S3-compatible) storage.
type SevallaConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// SevallaClient implements ObjectStorage for Sevalla / S3-compatible services.
type SevallaClient struct {
	cfg      SevallaConfig
	endpoint string
	region   string

	mu       sync.Mutex
	backends map[string]storage.Backend
}

// NewSevallaClient builds a new SevallaClient backed by chartmuseum's Amazon storage backend.
func NewSevallaClient(cfg SevallaConfig) (*SevallaClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("sevalla endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("sevalla credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("sevalla bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	return &SevallaClient{
		cfg:      cfg,
		endpoint: endpoint,
		region:   region,
		backends: make(map[string]storage.Backend),
	}, nil
}

// backendFor returns a backend rooted at dir. The chartmuseum backend only
// lists objects directly under its own prefix, so each listed directory gets
// its own backend.
func (c *SevallaClient) backendFor(dir string) storage.Backend {
	dir = strings.Trim(dir, "/")

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[dir]; ok {
		return b
	}
	b := storage.NewAmazonS3BackendWithOptions(
		c.cfg.Bucket,
		dir,
		c.region,
		c.endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)
	c.backends[dir] = b
	return b
}

// ListObjects lists the objects directly under prefix. Keys are returned in
// full, including the prefix.
func (c *SevallaClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := strings.Trim(prefix, "/")
	files, err := c.backendFor(dir).ListObjects("")
	if err != nil {
		return nil, fmt.Errorf("sevalla list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(files))
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  path.Join(dir, object.Path),
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// ReadObject returns the full content of key.
func (c *SevallaClient) ReadObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.backendFor("").GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("sevalla get %s failed: %w", key, err)
	}
	return object.Content, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *SevallaClient) DownloadObject(ctx context.Context, key, destPath string) error {
	content, err := c.ReadObject(ctx, key)
	if err != nil {
		return err
	}
	return writeLocalFile(destPath, content)
}

// UploadObject writes data to key, replacing any existing object.
func (c *SevallaClient) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := c.backendFor("").PutObject(key, data); err != nil {
		return fmt.Errorf("sevalla put %s failed: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*SevallaClient)(nil)

func awsBool(v bool) *bool {
	return &v
}

func writeLocalFile(destPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}
