package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository handles database operations for pipeline tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new pipeline repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const runColumns = `id, pipeline_name, source, status, order_rows, cancelled_rows,
	unmatched_lines, facts, export_path, started_at, completed_at, error_message`

// CreateRun inserts a run record and sets run.ID
func (r *Repository) CreateRun(ctx context.Context, run *PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (pipeline_name, source, status, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		run.PipelineName, run.Source, run.Status, run.StartedAt,
	).Scan(&run.ID); err != nil {
		return fmt.Errorf("create pipeline run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and counters of a run
func (r *Repository) FinishRun(ctx context.Context, run *PipelineRun) error {
	query := `
		UPDATE pipeline_runs
		SET status = $1, order_rows = $2, cancelled_rows = $3, unmatched_lines = $4,
		    facts = $5, export_path = $6, completed_at = $7, error_message = $8
		WHERE id = $9
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.OrderRows, run.CancelledRows, run.UnmatchedLines,
		run.Facts, run.ExportPath, run.CompletedAt, run.ErrorMessage, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish pipeline run %d: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a pipeline run by ID; a missing run yields nil
func (r *Repository) GetRun(ctx context.Context, id int64) (*PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE id = $1`

	var run PipelineRun
	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline run %d: %w", id, err)
	}
	return &run, nil
}

// RecentRuns lists the latest runs of a pipeline, newest first
func (r *Repository) RecentRuns(ctx context.Context, pipelineName string, limit int) ([]PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + `
		FROM pipeline_runs
		WHERE pipeline_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	runs := []PipelineRun{}
	if err := r.db.SelectContext(ctx, &runs, query, pipelineName, limit); err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	return runs, nil
}

var _ RunStore = (*Repository)(nil)
