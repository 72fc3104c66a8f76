package report

import (
	"testing"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/domain"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(sales.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func fact(date, sku string, revenue, product, ads float64) sales.DailyFact {
	f := sales.DailyFact{Date: day(date), SKU: sku, ProductName: "name-" + sku, Revenue: revenue, ProductCost: product, AdSpend: ads}
	f.Finalize()
	return f
}

func marchSnapshot(includeFixed bool) *sales.Snapshot {
	var book sales.FixedCostBook
	book.Add(2024, 3, 3100)

	return &sales.Snapshot{
		Facts: []sales.DailyFact{
			fact("2024-03-01", "A", 1000, 400, 100),
			fact("2024-03-01", "B", 0, 0, 200),
			fact("2024-03-02", "A", 600, 200, 0),
			fact("2024-03-05", "C", 300, 100, 0),
			fact("2024-04-01", "A", 999, 0, 0),
		},
		FixedCosts:       book,
		SKUs:             []string{"A", "B", "C", "D"},
		SKUNames:         map[string]string{"A": "Serum", "B": "Toner", "C": "Mask", "D": "Soap"},
		IncludeFixedCost: includeFixed,
	}
}

func TestSelectSKUsModes(t *testing.T) {
	snap := marchSnapshot(true)
	march := FactsInMonth(snap.Facts, 2024, 3)

	assert.Equal(t, []string{"A", "B", "C"}, SelectSKUs(march, domain.ModeActive, nil, snap.SKUs))
	assert.Equal(t, []string{"A", "C"}, SelectSKUs(march, domain.ModeSold, nil, snap.SKUs))
	assert.Equal(t, []string{"B"}, SelectSKUs(march, domain.ModeAdsNoSale, nil, snap.SKUs))
	assert.Equal(t, []string{"A", "B", "C", "D"}, SelectSKUs(march, domain.ModeAll, nil, snap.SKUs))
	assert.Equal(t, []string{"A", "C"}, SelectSKUs(march, domain.ModeAdsNoSale, []string{"C", "A", "C"}, snap.SKUs),
		"explicit selection wins over the mode")
}

func TestMonthlyMatrix(t *testing.T) {
	report := MonthlyMatrix(marchSnapshot(true), 2024, 3, domain.ModeActive, nil)

	assert.Equal(t, 31, report.DaysInMonth)
	assert.Equal(t, "มีนาคม", report.MonthName)
	require.Len(t, report.SKUs, 3)
	assert.Equal(t, domain.SKUInfo{SKU: "A", Name: "Serum"}, report.SKUs[0])

	assert.Equal(t, domain.MonthlyCards{
		TotalSales:    1900,
		OperatingCost: 700,
		AdSpend:       300,
		FixedCost:     3100,
		NetProfit:     -2200,
	}, report.Cards)
	assert.Equal(t, 100.0, report.FixedCostDaily)

	require.Len(t, report.Days, 31)
	first := report.Days[0]
	assert.Equal(t, "2024-03-01", first.Date)
	assert.Equal(t, 1000.0, first.Revenue)
	assert.Equal(t, 200.0, first.NetProfit)
	assert.Equal(t, map[string]float64{"A": 500, "B": -200, "C": 0}, first.BySKU)

	quiet := report.Days[2]
	assert.Equal(t, 0.0, quiet.Revenue)
	assert.Equal(t, -100.0, quiet.NetProfit, "days without sales still carry the fixed cost share")
}

func TestMonthlyMatrixWithoutFixedCost(t *testing.T) {
	report := MonthlyMatrix(marchSnapshot(false), 2024, 3, domain.ModeSold, nil)

	assert.Equal(t, 0.0, report.Cards.FixedCost)
	assert.Equal(t, 1900.0-800, report.Cards.NetProfit)
	assert.Equal(t, 500.0, report.Days[0].NetProfit)
	assert.Len(t, report.SKUs, 2)
}

func TestMonthlyMatrixNoSKUs(t *testing.T) {
	report := MonthlyMatrix(marchSnapshot(true), 2023, 1, domain.ModeActive, nil)

	assert.Empty(t, report.SKUs)
	assert.Empty(t, report.Days)
	assert.Equal(t, domain.MonthlyCards{}, report.Cards)
}

func TestMonthlyMatrixUnattributedAds(t *testing.T) {
	snap := marchSnapshot(false)
	snap.UnattributedAds = map[string]float64{"2024-03-01": 700, "2024-04-02": 50}

	report := MonthlyMatrix(snap, 2024, 3, domain.ModeActive, nil)

	assert.Equal(t, 1000.0, report.Cards.AdSpend)
	assert.Equal(t, 700.0, report.Cards.UnattributedAdSpend)
	assert.Equal(t, 700.0, report.Cards.OperatingCost)
	assert.Equal(t, 1900.0-1000-700, report.Cards.NetProfit)
	assert.Equal(t, 300.0-700, report.Days[0].NetProfit)
	assert.Equal(t, 600.0-200, report.Days[1].NetProfit)
}

func TestDailyBreakdown(t *testing.T) {
	snap := marchSnapshot(true)

	report := DailyBreakdown(snap.Facts, snap.SKUNames, day("2024-03-01"), day("2024-03-02"), domain.ModeActive, nil)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "A", report.Rows[0].SKU)
	assert.Equal(t, "Serum", report.Rows[0].Name)
	assert.Equal(t, 1600.0, report.Rows[0].Revenue)
	assert.Equal(t, 900.0, report.Rows[0].NetProfit)
	assert.Equal(t, "B", report.Rows[1].SKU)
	assert.Equal(t, 1600.0, report.TotalRevenue)
	assert.Equal(t, 700.0, report.TotalNetProfit)
	assert.Equal(t, "2024-03-01", report.From)

	sold := DailyBreakdown(snap.Facts, snap.SKUNames, day("2024-03-01"), day("2024-03-31"), domain.ModeSold, nil)
	assert.Len(t, sold.Rows, 2)

	burn := DailyBreakdown(snap.Facts, snap.SKUNames, day("2024-03-01"), day("2024-03-31"), domain.ModeAdsNoSale, nil)
	require.Len(t, burn.Rows, 1)
	assert.Equal(t, "B", burn.Rows[0].SKU)

	picked := DailyBreakdown(snap.Facts, nil, time.Time{}, time.Time{}, domain.ModeActive, []string{"C"})
	require.Len(t, picked.Rows, 1)
	assert.Equal(t, "name-C", picked.Rows[0].Name)
}

func TestTrend(t *testing.T) {
	snap := marchSnapshot(true)

	report := Trend(snap.Facts, day("2024-03-01"), day("2024-04-30"), []string{"A"})
	assert.Equal(t, []domain.TrendPoint{
		{Date: "2024-03-01", SKU: "A", Revenue: 1000},
		{Date: "2024-03-02", SKU: "A", Revenue: 600},
		{Date: "2024-04-01", SKU: "A", Revenue: 999},
	}, report.Points)

	assert.Empty(t, Trend(snap.Facts, time.Time{}, time.Time{}, nil).Points)
}

func TestYearlyPnL(t *testing.T) {
	f := sales.DailyFact{
		Date:               day("2024-06-10"),
		SKU:                "A",
		Revenue:            1000,
		ProductCost:        300,
		BoxCost:            20,
		DeliveryCost:       50,
		CODCost:            10,
		AdminCommission:    30,
		TelesaleCommission: 40,
		AdSpend:            100,
	}
	f.Finalize()

	var book sales.FixedCostBook
	book.Add(2024, 1, 500)
	book.Add(2024, 2, 500)
	book.Add(2023, 12, 999)

	snap := &sales.Snapshot{Facts: []sales.DailyFact{f}, FixedCosts: book, IncludeFixedCost: true}

	pnl := YearlyPnL(snap, 2024)
	assert.Equal(t, 680.0, pnl.GrossProfit)
	assert.Equal(t, 1000.0, pnl.FixedCost)
	assert.Equal(t, -550.0, pnl.NetProfit)

	snap.IncludeFixedCost = false
	assert.Equal(t, 450.0, YearlyPnL(snap, 2024).NetProfit)
	assert.Equal(t, domain.PnLReport{Year: 2022}, YearlyPnL(snap, 2022))

	snap.UnattributedAds = map[string]float64{"2024-02-01": 250, "2023-12-31": 999}
	pnl = YearlyPnL(snap, 2024)
	assert.Equal(t, 250.0, pnl.UnattributedAdSpend)
	assert.Equal(t, 350.0, pnl.AdSpend)
	assert.Equal(t, 200.0, pnl.NetProfit)
}

func TestCommission(t *testing.T) {
	facts := []sales.DailyFact{
		{Date: day("2024-03-01"), AdminCommission: 10, TelesaleCommission: 5, Year: 2024, Month: 3},
		{Date: day("2024-03-09"), AdminCommission: 20, Year: 2024, Month: 3},
		{Date: day("2024-04-01"), AdminCommission: 99, Year: 2024, Month: 4},
	}

	report := Commission(facts, 2024, 3)
	assert.Equal(t, 30.0, report.Admin)
	assert.Equal(t, 5.0, report.Telesale)
	assert.Equal(t, 35.0, report.Total)
}

func TestYearsAndSKUList(t *testing.T) {
	snap := marchSnapshot(true)
	snap.Facts = append(snap.Facts, fact("2023-12-31", "A", 1, 0, 0))

	assert.Equal(t, []int{2024, 2023}, Years(snap.Facts))
	assert.Equal(t, domain.SKUInfo{SKU: "D", Name: "Soap"}, SKUList(snap)[3])
}
