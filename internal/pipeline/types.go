package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
)

// SourceLoader reads the raw tables of one refresh cycle.
type SourceLoader interface {
	// Name identifies the source in logs and run records
	Name() string

	// Load fetches orders, ads, master and fixed-cost tables
	Load(ctx context.Context) (sales.Sources, error)
}

// RunStore persists pipeline run records.
type RunStore interface {
	CreateRun(ctx context.Context, run *PipelineRun) error
	FinishRun(ctx context.Context, run *PipelineRun) error
}

// FactStore replaces the persisted fact table with a new snapshot.
type FactStore interface {
	ReplaceFacts(ctx context.Context, runID int64, facts []sales.DailyFact) error
}

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// PipelineRun tracks a single refresh of the fact table
type PipelineRun struct {
	ID             int64          `db:"id" json:"id"`
	PipelineName   string         `db:"pipeline_name" json:"pipeline_name"`
	Source         string         `db:"source" json:"source"`
	Status         PipelineStatus `db:"status" json:"status"`
	OrderRows      int            `db:"order_rows" json:"order_rows"`
	CancelledRows  int            `db:"cancelled_rows" json:"cancelled_rows"`
	UnmatchedLines int            `db:"unmatched_lines" json:"unmatched_lines"`
	Facts          int            `db:"facts" json:"facts"`
	ExportPath     string         `db:"export_path" json:"export_path,omitempty"`
	StartedAt      time.Time      `db:"started_at" json:"started_at"`
	CompletedAt    *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage   string         `db:"error_message" json:"error_message,omitempty"`
}

// Duration returns how long the run took, or zero while it is still running.
func (r *PipelineRun) Duration() time.Duration {
	if r == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

func (r *PipelineRun) applyStats(stats sales.RunStats) {
	r.OrderRows = stats.Orders.Total
	r.CancelledRows = stats.Orders.Cancelled
	r.UnmatchedLines = stats.UnmatchedLines
	r.Facts = stats.Facts
}
