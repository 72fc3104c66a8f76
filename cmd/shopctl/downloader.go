package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/storage"
	"github.com/andresuchdata/shopdash/backend-go/internal/tabular"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// downloader mirrors the raw source objects of a bucket prefix into a local
// directory, keeping the orders/ads/master/fixed_cost layout.
type downloader struct {
	client  storage.ObjectStorage
	prefix  string
	destDir string
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "storage-provider", Usage: "Object storage provider (sevalla, minio, local)", EnvVars: []string{"STORAGE_PROVIDER"}},
		&cli.StringFlag{Name: "storage-endpoint", Usage: "Object storage endpoint", EnvVars: []string{"STORAGE_ENDPOINT"}},
		&cli.StringFlag{Name: "storage-bucket", Usage: "Object storage bucket", EnvVars: []string{"STORAGE_BUCKET"}},
		&cli.StringFlag{Name: "storage-prefix", Usage: "Key prefix of the raw tables", EnvVars: []string{"STORAGE_PREFIX"}},
		&cli.StringFlag{Name: "storage-access-key", Usage: "Object storage access key", EnvVars: []string{"STORAGE_ACCESS_KEY"}},
		&cli.StringFlag{Name: "storage-secret-key", Usage: "Object storage secret key", EnvVars: []string{"STORAGE_SECRET_KEY"}},
	}
}

// applyStorageFlags layers explicitly set flags over the loaded config.
func applyStorageFlags(c *cli.Context, cfg config.StorageConfig) config.StorageConfig {
	if c.IsSet("storage-provider") {
		cfg.Provider = strings.ToLower(c.String("storage-provider"))
	}
	if c.IsSet("storage-endpoint") {
		cfg.Endpoint = c.String("storage-endpoint")
	}
	if c.IsSet("storage-bucket") {
		cfg.Bucket = c.String("storage-bucket")
	}
	if c.IsSet("storage-prefix") {
		cfg.Prefix = c.String("storage-prefix")
	}
	if c.IsSet("storage-access-key") {
		cfg.AccessKey = c.String("storage-access-key")
	}
	if c.IsSet("storage-secret-key") {
		cfg.SecretKey = c.String("storage-secret-key")
	}
	return cfg
}

func newDownloader(client storage.ObjectStorage, prefix, destDir string) (*downloader, error) {
	if destDir == "" {
		destDir = "./data/input"
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}
	return &downloader{client: client, prefix: strings.Trim(prefix, "/"), destDir: destDir}, nil
}

// downloadAll fetches every source table. Only the orders directory is required.
func (d *downloader) downloadAll(ctx context.Context) ([]string, error) {
	// 1. Orders
	paths, err := d.downloadObjects(ctx, path.Join(d.prefix, storage.OrdersDir))
	if err != nil {
		return nil, fmt.Errorf("failed to download orders: %w", err)
	}

	// 2. Ads
	adsPaths, err := d.downloadObjects(ctx, path.Join(d.prefix, storage.AdsDir))
	if err != nil {
		log.Warn().Err(err).Msg("ads not downloaded")
	}
	paths = append(paths, adsPaths...)

	// 3. Master and fixed cost tables
	for _, name := range []string{storage.MasterName, storage.FixedCostName} {
		if p, ok := d.downloadSingle(ctx, name); ok {
			paths = append(paths, p)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func (d *downloader) downloadObjects(ctx context.Context, prefix string) ([]string, error) {
	objects, err := d.client.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if tabular.Supported(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no CSV or XLSX files found for prefix %s", prefix)
	}

	localPaths := make([]string, 0, len(keys))
	for _, key := range keys {
		localPath := filepath.Join(d.destDir, filepath.FromSlash(objectRelativePath(d.prefix, key)))
		if err := d.client.DownloadObject(ctx, key, localPath); err != nil {
			return nil, err
		}
		localPaths = append(localPaths, localPath)
	}
	return localPaths, nil
}

func (d *downloader) downloadSingle(ctx context.Context, name string) (string, bool) {
	for _, ext := range storage.TableExtensions {
		key := resolveObjectKey(d.prefix, name+ext)
		localPath := filepath.Join(d.destDir, name+ext)
		if err := d.client.DownloadObject(ctx, key, localPath); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("object not downloaded")
			continue
		}
		return localPath, true
	}
	log.Warn().Str("name", name).Msg("table not found in storage")
	return "", false
}

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed+"/") {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return path.Base(key)
	}
	return rel
}
