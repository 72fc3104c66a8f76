package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioMaster() *MasterItem {
	return &MasterItem{
		SKU:                    "ABC123",
		Name:                   "Serum",
		UnitCost:               100,
		BoxCost:                12,
		AvgShippingCost:        35,
		ShippingRates:          map[string]float64{"Flash Express": 0.05, DefaultRateColumn: 0.02},
		AdminCommissionRate:    0.1,
		TelesaleCommissionRate: 0.05,
		Category:               DefaultCategory,
	}
}

func TestCostCalculatorScenarioA(t *testing.T) {
	calc := NewCostCalculator(nil, nil, nil)
	line := RawOrderLine{
		OrderID:       "1",
		OrderTime:     time.Date(2024, time.March, 1, 14, 30, 0, 0, time.UTC),
		Variant:       "ABC123-red",
		SKU:           ExtractSKU("ABC123-red"),
		Quantity:      2,
		PaidAmount:    500,
		PaymentMethod: "COD",
		Courier:       "Flash",
	}

	got := calc.Enrich(line, scenarioMaster())

	assert.True(t, got.Matched)
	assert.Equal(t, CivilDate(2024, time.March, 1), got.Date)
	assert.Equal(t, 200.0, got.ProductCost)
	assert.Equal(t, 0.05, got.ShipRate)
	assert.True(t, got.IsCOD)
	assert.InDelta(t, 26.75, got.CODCost, 1e-9)
	assert.Equal(t, 500.0, got.PaidAmount)
	assert.Equal(t, RoleUnknown, got.Role)
	assert.Zero(t, got.AdminCommission)
	assert.Zero(t, got.TelesaleCommission)
	assert.Equal(t, "Serum", got.ProductName)
	assert.Equal(t, 12.0, got.BoxCost)
	assert.Equal(t, 35.0, got.DeliveryCost)
}

func TestCostCalculatorNoMatchSafety(t *testing.T) {
	calc := NewCostCalculator(nil, nil, nil)
	line := RawOrderLine{
		SKU:           "GHOST",
		OrderTime:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Quantity:      3,
		PaidAmount:    900,
		PaymentMethod: "เก็บเงินปลายทาง",
		Courier:       "Flash",
		Creator:       "admin01",
	}

	got := calc.Enrich(line, nil)

	assert.False(t, got.Matched)
	assert.Zero(t, got.ProductCost)
	assert.Zero(t, got.ShipRate)
	assert.True(t, got.IsCOD)
	assert.Zero(t, got.CODCost)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Zero(t, got.AdminCommission)
	assert.Equal(t, 900.0, got.PaidAmount)
	assert.Equal(t, "GHOST", got.ProductName)
}

func TestCostCalculatorCommissions(t *testing.T) {
	calc := NewCostCalculator(nil, nil, nil)
	base := RawOrderLine{
		SKU:           "ABC123",
		OrderTime:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Quantity:      1,
		PaidAmount:    1000,
		PaymentMethod: "Bank Transfer",
		Courier:       "Kerry",
	}

	admin := base
	admin.RoleHint = "Admin"
	got := calc.Enrich(admin, scenarioMaster())
	assert.Equal(t, 100.0, got.AdminCommission)
	assert.Zero(t, got.TelesaleCommission)
	assert.False(t, got.IsCOD)
	assert.Zero(t, got.CODCost)
	assert.Equal(t, 0.02, got.ShipRate, "Kerry has no column, standard delivery applies")

	tele := base
	tele.Creator = "Telesale-Nok"
	got = calc.Enrich(tele, scenarioMaster())
	assert.Zero(t, got.AdminCommission)
	assert.Equal(t, 50.0, got.TelesaleCommission)
}

func TestCostCalculatorCustomCODTerms(t *testing.T) {
	calc := NewCostCalculator(nil, nil, []string{"cash"})

	got := calc.Enrich(RawOrderLine{SKU: "ABC123", PaidAmount: 100, PaymentMethod: "Cash on delivery", Courier: "Flash"}, scenarioMaster())
	assert.True(t, got.IsCOD)

	got = calc.Enrich(RawOrderLine{SKU: "ABC123", PaidAmount: 100, PaymentMethod: "COD", Courier: "Flash"}, scenarioMaster())
	assert.False(t, got.IsCOD)
}

func TestCostCalculatorEnrichAll(t *testing.T) {
	calc := NewCostCalculator(nil, nil, nil)
	catalog := NewCatalog(*scenarioMaster())

	lines := []RawOrderLine{
		{SKU: "ABC123", Quantity: 1, PaidAmount: 10},
		{SKU: "NOPE", Quantity: 1, PaidAmount: 20},
	}

	enriched, unmatched := calc.EnrichAll(lines, catalog)

	require.Len(t, enriched, 2)
	assert.Equal(t, 1, unmatched)
	assert.True(t, enriched[0].Matched)
	assert.False(t, enriched[1].Matched)
	assert.Equal(t, 100.0, enriched[0].ProductCost)
}
