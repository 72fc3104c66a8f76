package sales

import (
	"sort"
	"strings"
)

// ShippingAliases maps raw courier labels from the order export to the
// master-sheet rate column they are charged against. Keys are stored
// trimmed and lower-cased so lookups ignore case.
type ShippingAliases map[string]string

// DefaultShippingAliases covers the courier spellings seen in shop exports.
var DefaultShippingAliases = NewShippingAliases(map[string]string{
	"J&T":               "J&T Express",
	"J&T Express":       "J&T Express",
	"JNT":               "J&T Express",
	"Flash":             "Flash Express",
	"Flash Express":     "Flash Express",
	"Kerry":             "Kerry Express",
	"Kerry Express":     "Kerry Express",
	"Thailand Post":     "ThailandPost",
	"ThailandPost":      "ThailandPost",
	"ไปรษณีย์ไทย":       "ThailandPost",
	"DHL":               "DHL_1",
	"DHL Domestic":      "DHL_1",
	"Shopee Express":    "SPX Express",
	"SPX Express":       "SPX Express",
	"SPX":               "SPX Express",
	"Lazada Express":    "LEX TH",
	"LEX":               "LEX TH",
	"LEX TH":            "LEX TH",
	"Express Delivery":  "Express Delivery - ส่งด่วน",
	"ส่งด่วน":           "Express Delivery - ส่งด่วน",
	"Standard Delivery": DefaultRateColumn,
	"ส่งธรรมดาในประเทศ": DefaultRateColumn,
})

// NewShippingAliases builds an alias table from raw label -> column entries.
func NewShippingAliases(entries map[string]string) ShippingAliases {
	return ShippingAliases{}.Merge(entries)
}

// Merge returns a copy of a with extra layered on top. Labels equal up to
// case collapse into one entry; among them the one sorting last wins, so the
// result does not depend on map order.
func (a ShippingAliases) Merge(extra map[string]string) ShippingAliases {
	out := make(ShippingAliases, len(a)+len(extra))
	for _, src := range []map[string]string{a, extra} {
		labels := make([]string, 0, len(src))
		for k := range src {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		for _, k := range labels {
			if key := aliasKey(k); key != "" {
				out[key] = strings.TrimSpace(src[k])
			}
		}
	}
	return out
}

// Canonical returns the rate column for courier. Unknown labels pass through
// unchanged so a master sheet may carry a column named after the raw label.
func (a ShippingAliases) Canonical(courier string) string {
	label := strings.TrimSpace(courier)
	if label == "" {
		return ""
	}
	if col, ok := a[aliasKey(label)]; ok {
		return col
	}
	return label
}

func aliasKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ResolveShipRate returns the shipping rate of item for courier, falling back
// to the standard delivery column when the courier's own rate is missing or
// not positive. A nil item resolves to 0.
func ResolveShipRate(courier string, item *MasterItem, aliases ShippingAliases) float64 {
	if item == nil {
		return 0
	}
	if aliases == nil {
		aliases = DefaultShippingAliases
	}

	if col := aliases.Canonical(courier); col != "" {
		if rate, ok := item.ShippingRates[col]; ok && rate > 0 {
			return rate
		}
	}
	if rate := item.ShippingRates[DefaultRateColumn]; rate > 0 {
		return rate
	}
	return 0
}
