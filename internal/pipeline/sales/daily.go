package sales

import (
	"sort"
	"time"
)

// BuildDailyFacts groups enriched lines by (date, SKU) and outer-joins the ad
// spend onto the groups. Box and delivery costs take the max within a group;
// every other measure is summed. The result is sorted by date, then SKU.
func BuildDailyFacts(lines []EnrichedOrderLine, ads AdsAggregation) []DailyFact {
	groups := make(map[FactKey]*DailyFact, len(lines)+len(ads.BySKU))

	for i := range lines {
		line := &lines[i]
		key := FactKey{Date: line.Date.Format(DateLayout), SKU: line.SKU}

		fact, ok := groups[key]
		if !ok {
			fact = &DailyFact{
				Date:        line.Date,
				SKU:         line.SKU,
				ProductName: line.ProductName,
				Category:    line.Category,
			}
			groups[key] = fact
		}

		fact.OrderCount++
		fact.Quantity += line.Quantity
		fact.Revenue += line.PaidAmount
		fact.ProductCost += line.ProductCost
		if line.BoxCost > fact.BoxCost {
			fact.BoxCost = line.BoxCost
		}
		if line.DeliveryCost > fact.DeliveryCost {
			fact.DeliveryCost = line.DeliveryCost
		}
		fact.CODCost += line.CODCost
		fact.AdminCommission += line.AdminCommission
		fact.TelesaleCommission += line.TelesaleCommission
		if fact.Category == "" {
			fact.Category = line.Category
		}
	}

	for key, spend := range ads.BySKU {
		fact, ok := groups[key]
		if !ok {
			date, err := time.Parse(DateLayout, key.Date)
			if err != nil {
				continue
			}
			fact = &DailyFact{Date: date, SKU: key.SKU}
			groups[key] = fact
		}
		fact.AdSpend += spend
	}

	facts := make([]DailyFact, 0, len(groups))
	for _, fact := range groups {
		fact.Finalize()
		facts = append(facts, *fact)
	}
	SortFacts(facts)

	return facts
}

// Finalize zeroes non-finite measures and derives the total, other-cost and
// net-profit columns plus the calendar parts of the date.
func (f *DailyFact) Finalize() {
	f.Quantity = finite(f.Quantity)
	f.Revenue = finite(f.Revenue)
	f.ProductCost = finite(f.ProductCost)
	f.BoxCost = finite(f.BoxCost)
	f.DeliveryCost = finite(f.DeliveryCost)
	f.CODCost = finite(f.CODCost)
	f.AdminCommission = finite(f.AdminCommission)
	f.TelesaleCommission = finite(f.TelesaleCommission)
	f.AdSpend = finite(f.AdSpend)

	f.OtherCosts = f.BoxCost + f.DeliveryCost + f.CODCost + f.AdminCommission + f.TelesaleCommission
	f.TotalCost = f.ProductCost + f.BoxCost + f.DeliveryCost + f.CODCost + f.AdminCommission + f.TelesaleCommission + f.AdSpend
	f.NetProfit = f.Revenue - f.TotalCost

	f.Year = f.Date.Year()
	f.Month = int(f.Date.Month())
	f.Day = f.Date.Day()
}

// SortFacts orders facts by date, then SKU.
func SortFacts(facts []DailyFact) {
	sort.Slice(facts, func(i, j int) bool {
		if !facts[i].Date.Equal(facts[j].Date) {
			return facts[i].Date.Before(facts[j].Date)
		}
		return facts[i].SKU < facts[j].SKU
	})
}
