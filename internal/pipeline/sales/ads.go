package sales

import (
	"regexp"
	"strings"
	"time"
)

var (
	adsCostAliases     = []string{"จำนวนเงินที่ใช้จ่ายไป (THB)", "Cost", "Amount", "Ads_Cost", "Ads_Amount"}
	adsDateAliases     = []string{"วัน", "Date"}
	adsCampaignAliases = []string{"ชื่อแคมเปญ", "Campaign"}
)

// campaignSKUPattern captures the SKU token of a campaign name, e.g. "[ABC123] Summer".
var campaignSKUPattern = regexp.MustCompile(`\[(.*?)\]`)

// AdsAggregation is daily ad spend grouped by (date, SKU token).
type AdsAggregation struct {
	BySKU map[FactKey]float64
	// UnattributedByDate holds spend of campaigns without a SKU token.
	UnattributedByDate map[string]float64
	Rows               int
	// Skipped is set when a cost, date or campaign column could not be found.
	Skipped bool
	// InvalidDate counts rows dropped for an unparseable date.
	InvalidDate int
}

// NewAdsAggregation returns an empty aggregation.
func NewAdsAggregation() AdsAggregation {
	return AdsAggregation{
		BySKU:              make(map[FactKey]float64),
		UnattributedByDate: make(map[string]float64),
	}
}

// Total returns all spend, attributed or not.
func (a AdsAggregation) Total() float64 {
	total := 0.0
	for _, v := range a.BySKU {
		total += v
	}
	for _, v := range a.UnattributedByDate {
		total += v
	}
	return total
}

// ExtractCampaignSKU returns the bracketed token of a campaign name.
func ExtractCampaignSKU(campaign string) (string, bool) {
	m := campaignSKUPattern.FindStringSubmatch(campaign)
	if m == nil {
		return "", false
	}
	sku := strings.TrimSpace(m[1])
	return sku, sku != ""
}

// AggregateAds sums ad spend per (date, SKU). A table without recognizable
// cost, date and campaign columns produces an empty, skipped aggregation.
func AggregateAds(t *Table, layouts []string, loc *time.Location) AdsAggregation {
	agg := NewAdsAggregation()
	if t.Empty() {
		return agg
	}
	t = NewTable(t.Header, t.Rows)

	idxCost := t.Column(adsCostAliases...)
	idxDate := t.Column(adsDateAliases...)
	idxCampaign := t.Column(adsCampaignAliases...)
	if idxCost < 0 || idxDate < 0 || idxCampaign < 0 {
		agg.Skipped = true
		return agg
	}

	for _, row := range t.Rows {
		date, ok := ParseDate(t.Cell(row, idxDate), layouts, loc)
		if !ok {
			agg.InvalidDate++
			continue
		}
		agg.Rows++

		day := date.Format(DateLayout)
		spend := NormalizeAmount(t.Cell(row, idxCost))
		sku, ok := ExtractCampaignSKU(t.Cell(row, idxCampaign))
		if !ok {
			agg.UnattributedByDate[day] += spend
			continue
		}
		agg.BySKU[FactKey{Date: day, SKU: sku}] += spend
	}

	return agg
}
