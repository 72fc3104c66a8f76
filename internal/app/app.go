// Package app assembles the pipeline, its sources and its stores from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/drive"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/shopdash/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// NewPipeline builds the sales pipeline with the configured variant switches.
func NewPipeline(cfg config.PipelineConfig) *sales.Pipeline {
	pc := sales.DefaultConfig()
	pc.PercentRule = sales.ParsePercentRule(cfg.PercentRule)
	pc.IncludeFixedCost = cfg.IncludeFixedCost
	pc.CategoryTagging = cfg.CategoryTagging
	pc.Location = cfg.Location()
	if len(cfg.CancelledStatuses) > 0 {
		pc.CancelledStatuses = cfg.CancelledStatuses
	}
	if len(cfg.ShippingAliases) > 0 {
		pc.ShippingAliases = sales.DefaultShippingAliases.Merge(cfg.ShippingAliases)
	}
	return sales.NewPipeline(pc)
}

// NewSourceLoader returns the loader selected by cfg.App.Source.
func NewSourceLoader(ctx context.Context, cfg *config.Config) (pipeline.SourceLoader, error) {
	switch cfg.App.Source {
	case "", "drive":
		return newDriveLoader(ctx, cfg.Drive)
	case "storage":
		client, err := storage.NewObjectStorage(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		return storage.NewLoader(client, cfg.Storage.Prefix, cfg.Drive.DownloadParallel), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.App.Source)
	}
}

func newDriveLoader(ctx context.Context, cfg config.DriveConfig) (*drive.Loader, error) {
	credentials, err := driveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	ordersFolder, err := svc.ResolveFolder(ctx, cfg.OrdersFolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve orders folder: %w", err)
	}

	var adsFolder string
	if cfg.AdsFolderID != "" {
		adsFolder, err = svc.ResolveFolder(ctx, cfg.AdsFolderID)
		if err != nil {
			log.Warn().Err(err).Msg("ads folder not resolvable, ads will be skipped")
			adsFolder = ""
		}
	}

	return drive.NewLoader(svc, svc, drive.LoaderConfig{
		OrdersFolderID:   ordersFolder,
		AdsFolderID:      adsFolder,
		MasterSheetID:    cfg.MasterSheetID,
		MasterWorksheet:  cfg.MasterWorksheet,
		FixedWorksheets:  cfg.FixedWorksheets,
		DownloadParallel: cfg.DownloadParallel,
	}), nil
}

func driveCredentials(cfg config.DriveConfig) ([]byte, error) {
	if raw := strings.TrimSpace(cfg.CredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", cfg.CredentialsFile, err)
	}
	return data, nil
}

// Stores holds the optional persistence layer.
type Stores struct {
	DB    *postgres.DB
	Runs  *pipeline.Repository
	Facts repository.FactRepository
}

// OpenStores connects and migrates the database when it is enabled. A nil
// Stores means persistence is off.
func OpenStores(ctx context.Context, cfg *config.DatabaseConfig) (*Stores, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Stores{
		DB:    db,
		Runs:  pipeline.NewRepository(db.DB),
		Facts: postgres.NewFactRepository(db),
	}, nil
}

// Close releases the connection pool.
func (s *Stores) Close() {
	if s == nil || s.DB == nil {
		return
	}
	if err := s.DB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

// NewExporter returns the CSV exporter when exports are enabled, uploading to
// the bucket when configured.
func NewExporter(cfg *config.Config) *pipeline.SnapshotExporter {
	if !cfg.Pipeline.ExportCSV {
		return nil
	}

	var uploader pipeline.Uploader
	if cfg.Storage.UploadExports {
		client, err := storage.NewObjectStorage(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("export uploads disabled, storage client unavailable")
		} else {
			uploader = client
		}
	}
	return pipeline.NewSnapshotExporter(cfg.App.DataDir, uploader, cfg.Storage.Prefix)
}

// NewRunner wires loader, stores and exporter into one runner.
func NewRunner(cfg *config.Config, loader pipeline.SourceLoader, stores *Stores) *pipeline.Runner {
	opts := []pipeline.RunnerOption{}
	if stores != nil {
		opts = append(opts, pipeline.WithRunStore(stores.Runs), pipeline.WithFactStore(stores.Facts))
	}
	if exporter := NewExporter(cfg); exporter != nil {
		opts = append(opts, pipeline.WithExporter(exporter))
	}
	return pipeline.NewRunner(NewPipeline(cfg.Pipeline), loader, opts...)
}
