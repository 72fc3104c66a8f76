package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)

func testSources() Sources {
	return Sources{
		Orders: NewTable(orderHeader, [][]string{
			orderRow("1", "สำเร็จ", "Flash", "2024-03-01 09:00:00", "ABC123-red", "2", "500", "admin01", "COD"),
			orderRow("2", "ยกเลิก", "Flash", "2024-03-01 10:00:00", "ABC123-blue", "5", "5000", "admin01", "COD"),
			orderRow("3", "สำเร็จ", "Kerry", "??", "ABC123-red", "1", "250", "", "Transfer"),
			orderRow("4", "สำเร็จ", "J&T", "2024-03-02 12:00:00", "NEW01-x", "1", "300", "tele_som", "Transfer"),
		}),
		Ads: NewTable(
			[]string{"Campaign", "Date", "Cost"},
			[][]string{
				{"[XYZ999] Summer Sale", "2024-03-01", "1000"},
				{"[ABC123] Boost", "2024-03-01", "100"},
			},
		),
		Master: NewTable(
			[]string{"SKU", "ชื่อสินค้า", "ต้นทุน", "ราคากล่อง", "ค่าส่งเฉลี่ย", "Flash Express", DefaultRateColumn, ColAdminCommission, "ประเภท"},
			[][]string{
				{"ABC123", "Serum", "100", "10", "30", "5", "2", "10", "premium"},
				{"XYZ999", "Cleanser", "50", "5", "20", "", "", "", ""},
			},
		),
		FixedCost: NewTable(
			[]string{"เดือน", "ปี", "Fix_Cost"},
			[][]string{{"มีนาคม", "2567", "31000"}},
		),
	}
}

func testPipeline(mutate func(*Config)) *Pipeline {
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return fixedNow }
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPipeline(cfg)
}

func findFact(t *testing.T, facts []DailyFact, date, sku string) DailyFact {
	t.Helper()
	for _, f := range facts {
		if f.Key() == (FactKey{Date: date, SKU: sku}) {
			return f
		}
	}
	require.Failf(t, "fact not found", "%s/%s", date, sku)
	return DailyFact{}
}

func TestPipelineRun(t *testing.T) {
	snap := testPipeline(nil).Run(testSources())

	require.NotNil(t, snap)
	assert.Equal(t, fixedNow, snap.GeneratedAt)
	assert.Equal(t, IntakeStats{Total: 4, Cancelled: 1, InvalidDate: 1, Kept: 2}, snap.Stats.Orders)
	assert.Equal(t, 2, snap.Stats.MasterItems)
	assert.Equal(t, 1, snap.Stats.UnmatchedLines)
	assert.Equal(t, 2, snap.Stats.AdsRows)
	require.Len(t, snap.Facts, 3)
	assert.Equal(t, []string{"ABC123", "NEW01", "XYZ999"}, snap.SKUs)

	abc := findFact(t, snap.Facts, "2024-03-01", "ABC123")
	assert.Equal(t, 1, abc.OrderCount, "cancelled line contributes nothing")
	assert.Equal(t, 500.0, abc.Revenue)
	assert.Equal(t, 200.0, abc.ProductCost)
	assert.Equal(t, 10.0, abc.BoxCost)
	assert.Equal(t, 30.0, abc.DeliveryCost)
	assert.InDelta(t, 26.75, abc.CODCost, 1e-9)
	assert.InDelta(t, 50.0, abc.AdminCommission, 1e-9)
	assert.Equal(t, 100.0, abc.AdSpend)
	assert.Equal(t, "Serum", abc.ProductName)
	assert.Equal(t, abc.Revenue-abc.TotalCost, abc.NetProfit)

	unmatched := findFact(t, snap.Facts, "2024-03-02", "NEW01")
	assert.Equal(t, 300.0, unmatched.Revenue)
	assert.Zero(t, unmatched.TotalCost)
	assert.Equal(t, "NEW01", unmatched.ProductName)

	adsOnly := findFact(t, snap.Facts, "2024-03-01", "XYZ999")
	assert.Zero(t, adsOnly.OrderCount)
	assert.Equal(t, "Cleanser", adsOnly.ProductName)
	assert.Equal(t, -1000.0, adsOnly.NetProfit)

	assert.Equal(t, "Serum", snap.SKUNames["ABC123"])
	assert.Equal(t, "Cleanser", snap.SKUNames["XYZ999"])
	assert.Equal(t, 31000.0, snap.FixedCosts.Lookup(2024, 3))
	assert.True(t, snap.IncludeFixedCost)

	for _, f := range snap.Facts {
		assert.Empty(t, f.Category, "category tagging is off by default")
	}
}

func TestPipelineScenarioDCancelledExcluded(t *testing.T) {
	src := Sources{
		Orders: NewTable(orderHeader, [][]string{
			orderRow("9", "ยกเลิก", "Flash", "2024-03-05 09:00:00", "ONLYCANCEL-red", "1", "100", "", "COD"),
			orderRow("10", "สำเร็จ", "Flash", "2024-03-05 09:00:00", "KEEP-red", "1", "100", "", "COD"),
		}),
	}

	snap := testPipeline(nil).Run(src)

	require.Len(t, snap.Facts, 1)
	assert.Equal(t, "KEEP", snap.Facts[0].SKU)
	assert.NotContains(t, snap.SKUs, "ONLYCANCEL")
}

func TestPipelineScenarioEInvalidDateDropped(t *testing.T) {
	src := Sources{
		Orders: NewTable(orderHeader, [][]string{
			orderRow("11", "สำเร็จ", "Flash", "31/31/2024", "BADDATE-red", "1", "100", "", ""),
		}),
	}

	var snap *Snapshot
	assert.NotPanics(t, func() { snap = testPipeline(nil).Run(src) })

	assert.True(t, snap.Empty())
	assert.Empty(t, snap.SKUs)
	assert.Equal(t, 1, snap.Stats.Orders.InvalidDate)
}

func TestPipelineEmptyOrders(t *testing.T) {
	src := testSources()
	src.Orders = nil

	snap := testPipeline(nil).Run(src)

	assert.True(t, snap.Empty())
	assert.Empty(t, snap.SKUs)
	assert.NotNil(t, snap.SKUNames)
}

func TestPipelineEmptyMasterDegradesToZeroCost(t *testing.T) {
	src := testSources()
	src.Master = nil

	snap := testPipeline(nil).Run(src)

	abc := findFact(t, snap.Facts, "2024-03-01", "ABC123")
	assert.Equal(t, 500.0, abc.Revenue)
	assert.Zero(t, abc.ProductCost)
	assert.Zero(t, abc.CODCost)
	assert.Equal(t, 100.0, abc.AdSpend)
}

func TestPipelineCategoryTagging(t *testing.T) {
	snap := testPipeline(func(c *Config) { c.CategoryTagging = true }).Run(testSources())

	assert.Equal(t, "premium", findFact(t, snap.Facts, "2024-03-01", "ABC123").Category)
	assert.Equal(t, DefaultCategory, findFact(t, snap.Facts, "2024-03-01", "XYZ999").Category)
	assert.Equal(t, DefaultCategory, findFact(t, snap.Facts, "2024-03-02", "NEW01").Category)
}

func TestPipelinePercentRuleAboveOne(t *testing.T) {
	src := testSources()
	src.Master = NewTable(
		[]string{"SKU", "Flash Express"},
		[][]string{{"ABC123", "0.05"}},
	)

	always := testPipeline(nil).Run(src)
	aboveOne := testPipeline(func(c *Config) { c.PercentRule = PercentAboveOne }).Run(src)

	assert.InDelta(t, 500*0.0005*CODSurchargeFactor, findFact(t, always.Facts, "2024-03-01", "ABC123").CODCost, 1e-9)
	assert.InDelta(t, 500*0.05*CODSurchargeFactor, findFact(t, aboveOne.Facts, "2024-03-01", "ABC123").CODCost, 1e-9)
}

func TestPipelineAllCancelledKeepsAdsAndFixedCost(t *testing.T) {
	src := testSources()
	src.Orders = NewTable(orderHeader, [][]string{
		orderRow("21", "ยกเลิก", "Flash", "2024-03-01 09:00:00", "ABC123-red", "1", "500", "", "COD"),
	})

	snap := testPipeline(nil).Run(src)

	assert.Equal(t, 1, snap.Stats.Orders.Cancelled)
	require.Len(t, snap.Facts, 2)
	assert.Equal(t, []string{"ABC123", "XYZ999"}, snap.SKUs)
	assert.Equal(t, 100.0, findFact(t, snap.Facts, "2024-03-01", "ABC123").AdSpend)
	assert.Equal(t, -1000.0, findFact(t, snap.Facts, "2024-03-01", "XYZ999").NetProfit)
	assert.Equal(t, 1, snap.FixedCosts.Len())
	assert.Equal(t, 31000.0, snap.FixedCosts.Lookup(2024, 3))
}

func TestPipelineUnattributedAdsReachSnapshot(t *testing.T) {
	src := testSources()
	src.Ads.Rows = append(src.Ads.Rows,
		[]string{"Brand awareness", "2024-03-01", "700"},
		[]string{"Retargeting", "2024-03-02", "50"},
	)

	snap := testPipeline(nil).Run(src)

	assert.Equal(t, map[string]float64{"2024-03-01": 700, "2024-03-02": 50}, snap.UnattributedAds)
	assert.Equal(t, 750.0, snap.UnattributedAdSpend(2024, 3))
	assert.Equal(t, 750.0, snap.UnattributedAdSpend(2024, 0))
	assert.Zero(t, snap.UnattributedAdSpend(2024, 4))
	require.Len(t, snap.Facts, 3, "untagged spend does not create facts")
}

func TestPipelineReadsUnlistedCourierRateColumn(t *testing.T) {
	src := testSources()
	src.Orders = NewTable(orderHeader, [][]string{
		orderRow("31", "สำเร็จ", "Ninja Van", "2024-03-03 09:00:00", "ABC123-red", "1", "1000", "", "COD"),
	})
	src.Master = NewTable(
		[]string{"SKU", "ชื่อสินค้า", "Ninja Van", DefaultRateColumn},
		[][]string{{"ABC123", "Serum", "9", "2"}},
	)

	snap := testPipeline(nil).Run(src)

	abc := findFact(t, snap.Facts, "2024-03-03", "ABC123")
	assert.InDelta(t, 1000*0.09*CODSurchargeFactor, abc.CODCost, 1e-9)
}
