package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/shopdash/backend-go/internal/config"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return Wrap(sqlx.NewDb(db, "sqlmock")), mock
}

func TestReplaceFacts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFactRepository(db)

	fact := sales.DailyFact{
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		SKU:       "ABC",
		Revenue:   1000,
		TotalCost: 400,
		NetProfit: 600,
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_facts").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO daily_facts")
	prep.ExpectExec().
		WithArgs(int64(4), "2024-03-01", "ABC", "", "", 0, 0.0, 1000.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 400.0, 600.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceFacts(context.Background(), 4, []sales.DailyFact{fact}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceFactsRollsBackOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFactRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_facts").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO daily_facts")
	prep.ExpectExec().WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := repo.ReplaceFacts(context.Background(), 0, []sales.DailyFact{{SKU: "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value too long")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFactsFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFactRepository(db)

	rows := sqlmock.NewRows([]string{
		"fact_date", "sku", "product_name", "category", "order_count", "quantity", "revenue",
		"product_cost", "box_cost", "delivery_cost", "cod_cost", "admin_commission", "telesale_commission",
		"ad_spend", "other_costs", "total_cost", "net_profit",
	}).AddRow(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "ABC", "Serum", "", 2, 3.0, 900.0,
		300.0, 20.0, 50.0, 0.0, 10.0, 0.0, 100.0, 80.0, 480.0, 420.0)

	mock.ExpectQuery(`SELECT (.+) FROM daily_facts WHERE fact_date >= \$1 AND fact_date <= \$2 AND sku = ANY\(\$3\) ORDER BY fact_date, sku`).
		WithArgs("2024-03-01", "2024-03-31", pq.Array([]string{"ABC"})).
		WillReturnRows(rows)

	facts, err := repo.ListFacts(context.Background(), repository.FactFilter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		SKUs: []string{"ABC"},
	})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Serum", facts[0].ProductName)
	assert.Equal(t, 420.0, facts[0].NetProfit)
	assert.Equal(t, 5, facts[0].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFactsWithoutFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFactRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM daily_facts ORDER BY fact_date, sku`).
		WillReturnRows(sqlmock.NewRows([]string{"fact_date", "sku"}))

	facts, err := repo.ListFacts(context.Background(), repository.FactFilter{})
	require.NoError(t, err)
	assert.Empty(t, facts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnString(t *testing.T) {
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable",
		ConnString(&config.DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "shop", SSLMode: "disable"}))
}

func TestMigrate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pipeline_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_pipeline_runs_name_started").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS daily_facts").WillReturnError(errors.New("permission denied"))

	err := db.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 3")
	assert.NoError(t, mock.ExpectationsWereMet())
}
