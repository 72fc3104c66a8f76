package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type factRepository struct {
	db *DB
}

func NewFactRepository(db *DB) *factRepository {
	return &factRepository{db: db}
}

var _ repository.FactRepository = (*factRepository)(nil)

type factRow struct {
	Date               time.Time `db:"fact_date"`
	SKU                string    `db:"sku"`
	ProductName        string    `db:"product_name"`
	Category           string    `db:"category"`
	OrderCount         int       `db:"order_count"`
	Quantity           float64   `db:"quantity"`
	Revenue            float64   `db:"revenue"`
	ProductCost        float64   `db:"product_cost"`
	BoxCost            float64   `db:"box_cost"`
	DeliveryCost       float64   `db:"delivery_cost"`
	CODCost            float64   `db:"cod_cost"`
	AdminCommission    float64   `db:"admin_commission"`
	TelesaleCommission float64   `db:"telesale_commission"`
	AdSpend            float64   `db:"ad_spend"`
	OtherCosts         float64   `db:"other_costs"`
	TotalCost          float64   `db:"total_cost"`
	NetProfit          float64   `db:"net_profit"`
}

func (r factRow) toFact() sales.DailyFact {
	date := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
	return sales.DailyFact{
		Date:               date,
		SKU:                r.SKU,
		ProductName:        r.ProductName,
		Category:           r.Category,
		OrderCount:         r.OrderCount,
		Quantity:           r.Quantity,
		Revenue:            r.Revenue,
		ProductCost:        r.ProductCost,
		BoxCost:            r.BoxCost,
		DeliveryCost:       r.DeliveryCost,
		CODCost:            r.CODCost,
		AdminCommission:    r.AdminCommission,
		TelesaleCommission: r.TelesaleCommission,
		AdSpend:            r.AdSpend,
		OtherCosts:         r.OtherCosts,
		TotalCost:          r.TotalCost,
		NetProfit:          r.NetProfit,
		Year:               date.Year(),
		Month:              int(date.Month()),
		Day:                date.Day(),
	}
}

const factColumns = `fact_date, sku, product_name, category, order_count, quantity, revenue,
	product_cost, box_cost, delivery_cost, cod_cost, admin_commission, telesale_commission,
	ad_spend, other_costs, total_cost, net_profit`

func (r *factRepository) ReplaceFacts(ctx context.Context, runID int64, facts []sales.DailyFact) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Drop the previous snapshot
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_facts`); err != nil {
			return fmt.Errorf("failed to clear daily facts: %w", err)
		}

		if len(facts) == 0 {
			return nil
		}

		// 2. Insert the new snapshot
		query := `
			INSERT INTO daily_facts (
				run_id, ` + factColumns + `
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		var run interface{}
		if runID > 0 {
			run = runID
		}

		for _, f := range facts {
			_, err := stmt.ExecContext(
				ctx,
				run,
				f.Date.Format(sales.DateLayout),
				f.SKU,
				f.ProductName,
				f.Category,
				f.OrderCount,
				f.Quantity,
				f.Revenue,
				f.ProductCost,
				f.BoxCost,
				f.DeliveryCost,
				f.CODCost,
				f.AdminCommission,
				f.TelesaleCommission,
				f.AdSpend,
				f.OtherCosts,
				f.TotalCost,
				f.NetProfit,
			)
			if err != nil {
				return fmt.Errorf("failed to insert fact %s/%s: %w", f.Date.Format(sales.DateLayout), f.SKU, err)
			}
		}

		return nil
	})
}

func (r *factRepository) ListFacts(ctx context.Context, filter repository.FactFilter) ([]sales.DailyFact, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if !filter.From.IsZero() {
		args = append(args, filter.From.Format(sales.DateLayout))
		clauses = append(clauses, fmt.Sprintf("fact_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.Format(sales.DateLayout))
		clauses = append(clauses, fmt.Sprintf("fact_date <= $%d", len(args)))
	}
	if len(filter.SKUs) > 0 {
		args = append(args, pq.Array(filter.SKUs))
		clauses = append(clauses, fmt.Sprintf("sku = ANY($%d)", len(args)))
	}

	query := `SELECT ` + factColumns + ` FROM daily_facts`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY fact_date, sku"

	var rows []factRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list daily facts: %w", err)
	}

	facts := make([]sales.DailyFact, len(rows))
	for i, row := range rows {
		facts[i] = row.toFact()
	}
	return facts, nil
}

func (r *factRepository) CountFacts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM daily_facts`); err != nil {
		return 0, fmt.Errorf("failed to count daily facts: %w", err)
	}
	return n, nil
}
