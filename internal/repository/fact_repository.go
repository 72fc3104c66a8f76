package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
)

// FactFilter narrows a fact query. Zero dates and an empty SKU list mean no bound.
type FactFilter struct {
	From time.Time
	To   time.Time
	SKUs []string
}

type FactRepository interface {
	// ReplaceFacts swaps the whole fact table for one refresh's output
	ReplaceFacts(ctx context.Context, runID int64, facts []sales.DailyFact) error
	ListFacts(ctx context.Context, filter FactFilter) ([]sales.DailyFact, error)
	CountFacts(ctx context.Context) (int, error)
}
