package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id              BIGSERIAL PRIMARY KEY,
		pipeline_name   TEXT NOT NULL,
		source          TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		order_rows      INTEGER NOT NULL DEFAULT 0,
		cancelled_rows  INTEGER NOT NULL DEFAULT 0,
		unmatched_lines INTEGER NOT NULL DEFAULT 0,
		facts           INTEGER NOT NULL DEFAULT 0,
		export_path     TEXT NOT NULL DEFAULT '',
		started_at      TIMESTAMPTZ NOT NULL,
		completed_at    TIMESTAMPTZ,
		error_message   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_name_started
		ON pipeline_runs (pipeline_name, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS daily_facts (
		run_id              BIGINT REFERENCES pipeline_runs (id) ON DELETE SET NULL,
		fact_date           DATE NOT NULL,
		sku                 TEXT NOT NULL,
		product_name        TEXT NOT NULL DEFAULT '',
		category            TEXT NOT NULL DEFAULT '',
		order_count         INTEGER NOT NULL DEFAULT 0,
		quantity            DOUBLE PRECISION NOT NULL DEFAULT 0,
		revenue             DOUBLE PRECISION NOT NULL DEFAULT 0,
		product_cost        DOUBLE PRECISION NOT NULL DEFAULT 0,
		box_cost            DOUBLE PRECISION NOT NULL DEFAULT 0,
		delivery_cost       DOUBLE PRECISION NOT NULL DEFAULT 0,
		cod_cost            DOUBLE PRECISION NOT NULL DEFAULT 0,
		admin_commission    DOUBLE PRECISION NOT NULL DEFAULT 0,
		telesale_commission DOUBLE PRECISION NOT NULL DEFAULT 0,
		ad_spend            DOUBLE PRECISION NOT NULL DEFAULT 0,
		other_costs         DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_cost          DOUBLE PRECISION NOT NULL DEFAULT 0,
		net_profit          DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (fact_date, sku)
	)`,
}

// Migrate creates the tables used by the refresh pipeline when missing.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("database schema is up to date")
	return nil
}
