package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalClient implements ObjectStorage over a directory tree. Keys are slash
// separated paths relative to the root.
type LocalClient struct {
	root string
}

func NewLocalClient(root string) (*LocalClient, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("local storage root must be provided")
	}
	return &LocalClient{root: root}, nil
}

func (c *LocalClient) path(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(strings.Trim(key, "/")))
}

// ListObjects lists the regular files directly under prefix. A missing
// directory yields an error, the same as an unreachable bucket prefix.
func (c *LocalClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	dir := strings.Trim(prefix, "/")
	entries, err := os.ReadDir(c.path(dir))
	if err != nil {
		return nil, fmt.Errorf("local list %s failed: %w", dir, err)
	}

	results := make([]ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		results = append(results, ObjectInfo{Key: path.Join(dir, entry.Name()), Size: info.Size()})
	}
	return results, ctx.Err()
}

func (c *LocalClient) ReadObject(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, fmt.Errorf("local read %s failed: %w", key, err)
	}
	return data, nil
}

func (c *LocalClient) DownloadObject(ctx context.Context, key, destPath string) error {
	content, err := c.ReadObject(ctx, key)
	if err != nil {
		return err
	}
	return writeLocalFile(destPath, content)
}

func (c *LocalClient) UploadObject(ctx context.Context, key string, data []byte) error {
	return writeLocalFile(c.path(key), data)
}

var _ ObjectStorage = (*LocalClient)(nil)
