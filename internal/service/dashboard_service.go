package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/cache"
	"github.com/andresuchdata/shopdash/backend-go/internal/domain"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/report"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Dataset is the snapshot cache key of the sales facts.
const Dataset = "daily_sales"

// Refresher produces a new snapshot. *pipeline.Runner implements it.
type Refresher interface {
	Run(ctx context.Context) (*sales.Snapshot, *pipeline.PipelineRun, error)
}

// RunHistory lists recorded pipeline runs.
type RunHistory interface {
	RecentRuns(ctx context.Context, pipelineName string, limit int) ([]pipeline.PipelineRun, error)
}

type refreshResult struct {
	snap *sales.Snapshot
	run  *pipeline.PipelineRun
}

type DashboardService struct {
	runner    Refresher
	snapshots cache.SnapshotCache
	reports   cache.ReportCache
	facts     repository.FactRepository
	history   RunHistory

	group singleflight.Group

	mu      sync.RWMutex
	current *sales.Snapshot
	lastRun *pipeline.PipelineRun
}

// Option customizes a DashboardService.
type Option func(*DashboardService)

// WithFactRepository serves fact queries from the persisted table.
func WithFactRepository(repo repository.FactRepository) Option {
	return func(s *DashboardService) { s.facts = repo }
}

// WithRunHistory exposes recorded pipeline runs.
func WithRunHistory(history RunHistory) Option {
	return func(s *DashboardService) { s.history = history }
}

func NewDashboardService(runner Refresher, snapshots cache.SnapshotCache, reports cache.ReportCache, opts ...Option) *DashboardService {
	if snapshots == nil {
		snapshots = cache.NewMemorySnapshotCache(0, nil)
	}
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	s := &DashboardService{runner: runner, snapshots: snapshots, reports: reports}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs the pipeline once. Concurrent callers share a single run.
func (s *DashboardService) Refresh(ctx context.Context) (*pipeline.PipelineRun, error) {
	res, err := s.refresh(ctx)
	if res == nil {
		return nil, err
	}
	return res.run, err
}

func (s *DashboardService) refresh(ctx context.Context) (*refreshResult, error) {
	v, err, shared := s.group.Do(Dataset, func() (interface{}, error) {
		snap, run, err := s.runner.Run(ctx)
		if err != nil {
			s.setLastRun(run)
			return &refreshResult{run: run}, err
		}

		s.mu.Lock()
		s.current = snap
		s.lastRun = run
		s.mu.Unlock()

		if err := s.snapshots.Set(ctx, Dataset, snap); err != nil {
			log.Warn().Err(err).Msg("dashboard: cache set snapshot failed")
		}
		if err := s.reports.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("dashboard: report cache invalidation failed")
		}
		return &refreshResult{snap: snap, run: run}, nil
	})
	if shared {
		log.Debug().Msg("dashboard: joined an in-flight refresh")
	}

	res, _ := v.(*refreshResult)
	return res, err
}

// Snapshot returns the cached snapshot, running the pipeline on a miss. When
// a refresh fails the previous snapshot is served if there is one.
func (s *DashboardService) Snapshot(ctx context.Context) (*sales.Snapshot, error) {
	if snap, ok, err := s.snapshots.Get(ctx, Dataset); err == nil && ok {
		return snap, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get snapshot failed")
	}

	res, err := s.refresh(ctx)
	if err == nil {
		return res.snap, nil
	}

	s.mu.RLock()
	stale := s.current
	s.mu.RUnlock()
	if stale != nil {
		log.Warn().Err(err).Msg("dashboard: refresh failed, serving previous snapshot")
		return stale, nil
	}
	return nil, fmt.Errorf("refresh daily sales: %w", err)
}

// LastRun returns the most recent run of this process, or nil.
func (s *DashboardService) LastRun() *pipeline.PipelineRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}

func (s *DashboardService) setLastRun(run *pipeline.PipelineRun) {
	if run == nil {
		return
	}
	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
}

// RecentRuns lists recorded runs, newest first. Without run history only the
// last run of this process is returned.
func (s *DashboardService) RecentRuns(ctx context.Context, limit int) ([]pipeline.PipelineRun, error) {
	if s.history != nil {
		return s.history.RecentRuns(ctx, Dataset, limit)
	}
	runs := []pipeline.PipelineRun{}
	if last := s.LastRun(); last != nil {
		runs = append(runs, *last)
	}
	return runs, nil
}

// Facts returns fact rows within [from, to] for the given SKUs (all when empty).
func (s *DashboardService) Facts(ctx context.Context, from, to time.Time, skus []string) ([]sales.DailyFact, error) {
	if s.facts != nil {
		facts, err := s.facts.ListFacts(ctx, repository.FactFilter{From: from, To: to, SKUs: skus})
		if err == nil {
			return facts, nil
		}
		log.Warn().Err(err).Msg("dashboard: fact table unavailable, reading snapshot")
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	facts := report.FactsBetween(snap.Facts, from, to)
	if len(skus) > 0 {
		facts = report.FilterSKUs(facts, skus)
	}
	return facts, nil
}

func (s *DashboardService) SKUs(ctx context.Context) ([]domain.SKUInfo, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.SKUList(snap), nil
}

func (s *DashboardService) Years(ctx context.Context) ([]int, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Years(snap.Facts), nil
}

func (s *DashboardService) Monthly(ctx context.Context, year, month int, mode domain.SKUMode, skus []string) (domain.MonthlyReport, error) {
	params := map[string]string{
		"year":  strconv.Itoa(year),
		"month": strconv.Itoa(month),
		"mode":  string(mode),
		"skus":  strings.Join(skus, ","),
	}
	return cachedReport(ctx, s, "monthly", params, func(snap *sales.Snapshot) domain.MonthlyReport {
		return report.MonthlyMatrix(snap, year, month, mode, skus)
	})
}

func (s *DashboardService) Daily(ctx context.Context, from, to time.Time, mode domain.SKUMode, skus []string) (domain.DailyReport, error) {
	params := map[string]string{
		"from": from.Format(sales.DateLayout),
		"to":   to.Format(sales.DateLayout),
		"mode": string(mode),
		"skus": strings.Join(skus, ","),
	}
	return cachedReport(ctx, s, "daily", params, func(snap *sales.Snapshot) domain.DailyReport {
		return report.DailyBreakdown(snap.Facts, snap.SKUNames, from, to, mode, skus)
	})
}

func (s *DashboardService) Trend(ctx context.Context, from, to time.Time, skus []string) (domain.TrendReport, error) {
	params := map[string]string{
		"from": from.Format(sales.DateLayout),
		"to":   to.Format(sales.DateLayout),
		"skus": strings.Join(skus, ","),
	}
	return cachedReport(ctx, s, "trend", params, func(snap *sales.Snapshot) domain.TrendReport {
		return report.Trend(snap.Facts, from, to, skus)
	})
}

func (s *DashboardService) PnL(ctx context.Context, year int) (domain.PnLReport, error) {
	params := map[string]string{"year": strconv.Itoa(year)}
	return cachedReport(ctx, s, "pnl", params, func(snap *sales.Snapshot) domain.PnLReport {
		return report.YearlyPnL(snap, year)
	})
}

func (s *DashboardService) Commission(ctx context.Context, year, month int) (domain.CommissionReport, error) {
	params := map[string]string{"year": strconv.Itoa(year), "month": strconv.Itoa(month)}
	return cachedReport(ctx, s, "commission", params, func(snap *sales.Snapshot) domain.CommissionReport {
		return report.Commission(snap.Facts, year, month)
	})
}

func cachedReport[T any](ctx context.Context, s *DashboardService, kind string, params map[string]string, build func(*sales.Snapshot) T) (T, error) {
	var out T
	if ok, err := s.reports.Get(ctx, kind, params, &out); err == nil && ok {
		return out, nil
	} else if err != nil {
		log.Warn().Err(err).Str("report", kind).Msg("dashboard: cache get report failed")
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return out, err
	}
	out = build(snap)

	if err := s.reports.Set(ctx, kind, params, out); err != nil {
		log.Warn().Err(err).Str("report", kind).Msg("dashboard: cache set report failed")
	}
	return out, nil
}
