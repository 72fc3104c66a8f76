package report

import (
	"sort"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/domain"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
)

// MonthlyMatrix builds the day-by-SKU net profit matrix of a month.
func MonthlyMatrix(snap *sales.Snapshot, year, month int, mode domain.SKUMode, selected []string) domain.MonthlyReport {
	days := sales.DaysInMonth(year, month)
	report := domain.MonthlyReport{
		Year:        year,
		Month:       month,
		MonthName:   sales.ThaiMonthName(month),
		DaysInMonth: days,
		Mode:        mode,
		SKUs:        []domain.SKUInfo{},
		Days:        []domain.MonthlyDayRow{},
	}

	monthFacts := FactsInMonth(snap.Facts, year, month)
	skus := SelectSKUs(monthFacts, mode, selected, snap.SKUs)
	if len(skus) == 0 {
		return report
	}
	for _, sku := range skus {
		report.SKUs = append(report.SKUs, domain.SKUInfo{SKU: sku, Name: snap.SKUNames[sku]})
	}

	view := FilterSKUs(monthFacts, skus)

	// 1. Fixed cost of the month and its daily share
	var fixedTotal, fixedDaily float64
	if snap.IncludeFixedCost {
		fixedTotal = snap.FixedCosts.Lookup(year, month)
		fixedDaily = snap.FixedCosts.DailyShare(year, month)
	}
	report.FixedCostDaily = fixedDaily

	// 2. Cards. Untagged ad spend is a shop-level cost, like the fixed cost.
	var totalCost, skuAds float64
	for _, f := range view {
		report.Cards.TotalSales += f.Revenue
		skuAds += f.AdSpend
		totalCost += f.TotalCost
	}
	untagged := snap.UnattributedAdSpend(year, month)
	report.Cards.OperatingCost = totalCost - skuAds
	report.Cards.AdSpend = skuAds + untagged
	report.Cards.UnattributedAdSpend = untagged
	report.Cards.FixedCost = fixedTotal
	report.Cards.NetProfit = report.Cards.TotalSales - totalCost - untagged - fixedTotal

	// 3. One row per calendar day, including days without sales
	byDay := make(map[int][]sales.DailyFact, days)
	for _, f := range view {
		byDay[f.Day] = append(byDay[f.Day], f)
	}
	for day := 1; day <= days; day++ {
		row := domain.MonthlyDayRow{
			Day:   day,
			Date:  time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(sales.DateLayout),
			BySKU: make(map[string]float64, len(skus)),
		}
		for _, sku := range skus {
			row.BySKU[sku] = 0
		}
		var profit float64
		for _, f := range byDay[day] {
			row.Revenue += f.Revenue
			profit += f.NetProfit
			row.BySKU[f.SKU] += f.NetProfit
		}
		row.NetProfit = profit - fixedDaily - snap.UnattributedAds[row.Date]
		report.Days = append(report.Days, row)
	}

	return report
}

// DailyBreakdown sums facts per SKU over [from, to]. ModeActive and ModeAll
// keep every SKU with facts in the range.
func DailyBreakdown(facts []sales.DailyFact, names map[string]string, from, to time.Time, mode domain.SKUMode, selected []string) domain.DailyReport {
	report := domain.DailyReport{
		From: dateString(from),
		To:   dateString(to),
		Mode: mode,
		Rows: []domain.SKUBreakdown{},
	}

	ranged := FactsBetween(facts, from, to)
	if len(selected) > 0 {
		ranged = FilterSKUs(ranged, selected)
	}

	index := make(map[string]int)
	for _, f := range ranged {
		i, ok := index[f.SKU]
		if !ok {
			i = len(report.Rows)
			index[f.SKU] = i
			report.Rows = append(report.Rows, domain.SKUBreakdown{SKU: f.SKU})
		}
		row := &report.Rows[i]
		if f.ProductName != "" {
			row.Name = f.ProductName
		}
		row.Quantity += f.Quantity
		row.Revenue += f.Revenue
		row.ProductCost += f.ProductCost
		row.BoxCost += f.BoxCost
		row.DeliveryCost += f.DeliveryCost
		row.CODCost += f.CODCost
		row.AdminCommission += f.AdminCommission
		row.TelesaleCommission += f.TelesaleCommission
		row.AdSpend += f.AdSpend
		row.NetProfit += f.NetProfit
	}

	rows := report.Rows[:0]
	for _, row := range report.Rows {
		if mode == domain.ModeSold || mode == domain.ModeAdsNoSale {
			if !modeKeeps(mode, row.Revenue, row.AdSpend) {
				continue
			}
		}
		if name, ok := names[row.SKU]; ok && name != "" {
			row.Name = name
		}
		rows = append(rows, row)
	}
	sortBreakdown(rows)
	report.Rows = rows

	for _, row := range report.Rows {
		report.TotalRevenue += row.Revenue
		report.TotalNetProfit += row.NetProfit
	}
	return report
}

// Trend returns the revenue series of skus over [from, to], ordered by date then SKU.
func Trend(facts []sales.DailyFact, from, to time.Time, skus []string) domain.TrendReport {
	report := domain.TrendReport{
		From:   dateString(from),
		To:     dateString(to),
		SKUs:   sortedUnique(skus),
		Points: []domain.TrendPoint{},
	}
	if len(report.SKUs) == 0 {
		return report
	}

	series := FilterSKUs(FactsBetween(facts, from, to), report.SKUs)
	sales.SortFacts(series)
	for _, f := range series {
		report.Points = append(report.Points, domain.TrendPoint{
			Date:    f.Date.Format(sales.DateLayout),
			SKU:     f.SKU,
			Revenue: f.Revenue,
		})
	}
	return report
}

// YearlyPnL builds the profit and loss statement of a year.
func YearlyPnL(snap *sales.Snapshot, year int) domain.PnLReport {
	pnl := domain.PnLReport{Year: year}

	for _, f := range snap.Facts {
		if f.Year != year {
			continue
		}
		pnl.Sales += f.Revenue
		pnl.ProductCost += f.ProductCost
		pnl.BoxCost += f.BoxCost
		pnl.Shipping += f.DeliveryCost
		pnl.COD += f.CODCost
		pnl.AdminCommission += f.AdminCommission
		pnl.TelesaleCommission += f.TelesaleCommission
		pnl.AdSpend += f.AdSpend
	}
	pnl.UnattributedAdSpend = snap.UnattributedAdSpend(year, 0)
	pnl.AdSpend += pnl.UnattributedAdSpend
	if snap.IncludeFixedCost {
		pnl.FixedCost = snap.FixedCosts.YearTotal(year)
	}

	pnl.GrossProfit = pnl.Sales - pnl.ProductCost - pnl.BoxCost
	pnl.NetProfit = pnl.GrossProfit - pnl.Shipping - pnl.COD - pnl.AdminCommission -
		pnl.TelesaleCommission - pnl.AdSpend - pnl.FixedCost
	return pnl
}

// Commission totals admin and telesale commissions of a month.
func Commission(facts []sales.DailyFact, year, month int) domain.CommissionReport {
	report := domain.CommissionReport{
		Year:      year,
		Month:     month,
		MonthName: sales.ThaiMonthName(month),
	}
	for _, f := range FactsInMonth(facts, year, month) {
		report.Admin += f.AdminCommission
		report.Telesale += f.TelesaleCommission
	}
	report.Total = report.Admin + report.Telesale
	return report
}

// SKUList returns the snapshot's SKUs with their display names.
func SKUList(snap *sales.Snapshot) []domain.SKUInfo {
	out := make([]domain.SKUInfo, 0, len(snap.SKUs))
	for _, sku := range snap.SKUs {
		out = append(out, domain.SKUInfo{SKU: sku, Name: snap.SKUNames[sku]})
	}
	return out
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(sales.DateLayout)
}

// sortBreakdown orders rows by revenue, highest first, then SKU.
func sortBreakdown(rows []domain.SKUBreakdown) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].SKU < rows[j].SKU
	})
}
