package drive

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/tabular"
	"github.com/rs/zerolog/log"
)

// SheetSource reads worksheet values of a spreadsheet.
type SheetSource interface {
	ReadWorksheet(ctx context.Context, spreadsheetID, worksheet string) ([][]interface{}, error)
}

// LoaderConfig names where each raw table lives.
type LoaderConfig struct {
	OrdersFolderID   string
	AdsFolderID      string
	MasterSheetID    string
	MasterWorksheet  string
	FixedWorksheets  []string // tried in order
	DownloadParallel int
}

// Loader reads one refresh cycle's raw tables from Drive and Sheets.
type Loader struct {
	folders *FolderReader
	sheets  SheetSource
	cfg     LoaderConfig
}

func NewLoader(files FileSource, sheets SheetSource, cfg LoaderConfig) *Loader {
	if cfg.MasterWorksheet == "" {
		cfg.MasterWorksheet = "MASTER_ITEM"
	}
	if len(cfg.FixedWorksheets) == 0 {
		cfg.FixedWorksheets = []string{"FIX_COST", "FIXED_COST"}
	}
	return &Loader{
		folders: NewFolderReader(files, cfg.DownloadParallel),
		sheets:  sheets,
		cfg:     cfg,
	}
}

// Name identifies the source in logs and run records.
func (l *Loader) Name() string {
	return "drive"
}

// Load fetches orders, ads, master and fixed-cost tables. Only a failure to
// list the orders folder is returned; every other source degrades to empty.
func (l *Loader) Load(ctx context.Context) (sales.Sources, error) {
	var src sales.Sources

	orders, files, err := l.folders.ReadFolder(ctx, l.cfg.OrdersFolderID)
	if err != nil {
		return src, fmt.Errorf("load orders: %w", err)
	}
	src.Orders = orders
	log.Info().Int("files", files).Int("rows", orders.Len()).Msg("loaded order exports")

	if l.cfg.AdsFolderID != "" {
		ads, files, err := l.folders.ReadFolder(ctx, l.cfg.AdsFolderID)
		if err != nil {
			if ctx.Err() != nil {
				return src, ctx.Err()
			}
			log.Warn().Err(err).Msg("ads folder unavailable, continuing without ads")
		} else {
			src.Ads = ads
			log.Info().Int("files", files).Int("rows", ads.Len()).Msg("loaded ads exports")
		}
	}

	if l.cfg.MasterSheetID == "" {
		log.Warn().Msg("no master sheet configured")
		return src, nil
	}

	master, err := l.readWorksheet(ctx, l.cfg.MasterWorksheet)
	if err != nil {
		log.Warn().Err(err).Msg("master sheet unavailable, costs default to zero")
	} else {
		src.Master = master
	}

	for _, name := range l.cfg.FixedWorksheets {
		fixed, err := l.readWorksheet(ctx, name)
		if err != nil {
			log.Debug().Err(err).Str("worksheet", name).Msg("fixed cost worksheet not readable")
			continue
		}
		src.FixedCost = fixed
		break
	}

	return src, ctx.Err()
}

func (l *Loader) readWorksheet(ctx context.Context, name string) (*sales.Table, error) {
	values, err := l.sheets.ReadWorksheet(ctx, l.cfg.MasterSheetID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return tabular.ValuesToTable(values), nil
}
