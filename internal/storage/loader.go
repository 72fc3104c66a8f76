package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/tabular"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Bucket layout below the configured prefix.
const (
	OrdersDir     = "orders"
	AdsDir        = "ads"
	MasterName    = "master"
	FixedCostName = "fixed_cost"
)

// TableExtensions are tried in order for single-table objects.
var TableExtensions = []string{".csv", ".xlsx"}

const defaultWorkers = 4

// Loader reads one refresh cycle's raw tables from a bucket laid out as
//
//	<prefix>/orders/*.csv|xlsx
//	<prefix>/ads/*.csv|xlsx
//	<prefix>/master.csv|xlsx
//	<prefix>/fixed_cost.csv|xlsx
type Loader struct {
	client  ObjectStorage
	prefix  string
	workers int
}

func NewLoader(client ObjectStorage, prefix string, workers int) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{client: client, prefix: strings.Trim(prefix, "/"), workers: workers}
}

// Name identifies the source in logs and run records.
func (l *Loader) Name() string {
	return "storage"
}

// Load fetches orders, ads, master and fixed-cost tables. Only a failure to
// list the orders directory is returned.
func (l *Loader) Load(ctx context.Context) (sales.Sources, error) {
	var src sales.Sources

	orders, err := l.readDir(ctx, path.Join(l.prefix, OrdersDir))
	if err != nil {
		return src, fmt.Errorf("load orders: %w", err)
	}
	src.Orders = orders
	log.Info().Int("rows", orders.Len()).Msg("loaded order exports from storage")

	ads, err := l.readDir(ctx, path.Join(l.prefix, AdsDir))
	if err != nil {
		if ctx.Err() != nil {
			return src, ctx.Err()
		}
		log.Warn().Err(err).Msg("ads directory unavailable, continuing without ads")
	} else {
		src.Ads = ads
	}

	src.Master = l.readSingle(ctx, MasterName)
	src.FixedCost = l.readSingle(ctx, FixedCostName)

	return src, ctx.Err()
}

func (l *Loader) readDir(ctx context.Context, dir string) (*sales.Table, error) {
	objects, err := l.client.ListObjects(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var keys []string
	for _, obj := range objects {
		if tabular.Supported(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)

	tables := make([]*sales.Table, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, key := range keys {
		g.Go(func() error {
			data, err := l.client.ReadObject(gctx, key)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().Err(err).Str("key", key).Msg("skipping object that failed to download")
				return nil
			}
			table, err := tabular.DecodeFile(key, data)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("skipping object that failed to decode")
				return nil
			}
			tables[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sales.ConcatTables(tables...), nil
}

// readSingle tries <prefix>/<name>.csv then .xlsx; a missing object yields nil.
func (l *Loader) readSingle(ctx context.Context, name string) *sales.Table {
	for _, ext := range TableExtensions {
		key := path.Join(l.prefix, name+ext)
		data, err := l.client.ReadObject(ctx, key)
		if err != nil {
			log.Debug().Err(err).Str("key", key).Msg("object not readable")
			continue
		}
		table, err := tabular.DecodeFile(key, data)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to decode object")
			continue
		}
		return table
	}
	log.Warn().Str("name", name).Msg("no table found in storage")
	return nil
}
