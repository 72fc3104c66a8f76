package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/rs/zerolog/log"
)

// Runner executes one refresh: load sources, build the snapshot, persist and
// export it, recording the run when a RunStore is configured.
type Runner struct {
	pipeline *sales.Pipeline
	loader   SourceLoader
	runs     RunStore
	facts    FactStore
	exporter *SnapshotExporter
	now      func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRunStore records every run.
func WithRunStore(store RunStore) RunnerOption {
	return func(r *Runner) { r.runs = store }
}

// WithFactStore persists every successful snapshot.
func WithFactStore(store FactStore) RunnerOption {
	return func(r *Runner) { r.facts = store }
}

// WithExporter exports every successful snapshot to CSV.
func WithExporter(exporter *SnapshotExporter) RunnerOption {
	return func(r *Runner) { r.exporter = exporter }
}

// WithClock overrides the clock used for run timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(p *sales.Pipeline, loader SourceLoader, opts ...RunnerOption) *Runner {
	r := &Runner{pipeline: p, loader: loader, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one refresh. A failed load or fact persistence fails the run;
// export and run-record failures are only logged.
func (r *Runner) Run(ctx context.Context) (*sales.Snapshot, *PipelineRun, error) {
	run := &PipelineRun{
		PipelineName: r.pipeline.Name(),
		Source:       r.loader.Name(),
		Status:       StatusProcessing,
		StartedAt:    r.now(),
	}
	r.createRun(ctx, run)

	log.Info().Str("pipeline", run.PipelineName).Str("source", run.Source).Msg("starting refresh")

	// 1. Load raw tables
	src, err := r.loader.Load(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load sources: %w", err)
		return nil, r.fail(ctx, run, err), err
	}

	// 2. Build the snapshot
	snap := r.pipeline.Run(src)
	run.applyStats(snap.Stats)

	// 3. Persist facts
	if r.facts != nil {
		if err := r.facts.ReplaceFacts(ctx, run.ID, snap.Facts); err != nil {
			err = fmt.Errorf("failed to persist facts: %w", err)
			return nil, r.fail(ctx, run, err), err
		}
	}

	// 4. Export CSV
	if r.exporter != nil {
		exportPath, err := r.exporter.Export(ctx, snap, run.StartedAt)
		if err != nil {
			log.Warn().Err(err).Msg("fact export failed")
		}
		run.ExportPath = exportPath
	}

	// 5. Mark run as completed
	completed := r.now()
	run.Status = StatusCompleted
	run.CompletedAt = &completed
	r.finishRun(ctx, run)

	log.Info().
		Int("facts", run.Facts).
		Int("order_rows", run.OrderRows).
		Int("unmatched_lines", run.UnmatchedLines).
		Dur("took", run.Duration()).
		Msg("refresh completed")

	return snap, run, nil
}

func (r *Runner) fail(ctx context.Context, run *PipelineRun, err error) *PipelineRun {
	completed := r.now()
	run.Status = StatusFailed
	run.ErrorMessage = err.Error()
	run.CompletedAt = &completed
	r.finishRun(ctx, run)
	log.Error().Err(err).Str("pipeline", run.PipelineName).Msg("refresh failed")
	return run
}

func (r *Runner) createRun(ctx context.Context, run *PipelineRun) {
	if r.runs == nil {
		return
	}
	if err := r.runs.CreateRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record pipeline run")
	}
}

func (r *Runner) finishRun(ctx context.Context, run *PipelineRun) {
	if r.runs == nil || run.ID == 0 {
		return
	}
	if err := r.runs.FinishRun(ctx, run); err != nil {
		log.Warn().Err(err).Int64("run_id", run.ID).Msg("failed to update pipeline run")
	}
}
