package domain

import "strings"

// SKUMode selects which SKUs a report shows when none are picked explicitly.
type SKUMode string

const (
	// ModeActive keeps SKUs with revenue or ad spend in the period
	ModeActive SKUMode = "active"
	// ModeSold keeps SKUs with revenue
	ModeSold SKUMode = "sold"
	// ModeAdsNoSale keeps SKUs that spent on ads but sold nothing
	ModeAdsNoSale SKUMode = "ads_no_sale"
	// ModeAll keeps every SKU of the snapshot
	ModeAll SKUMode = "all"
)

var skuModes = map[string]SKUMode{
	"active":      ModeActive,
	"sold":        ModeSold,
	"ads_no_sale": ModeAdsNoSale,
	"all":         ModeAll,
}

// ParseSKUMode returns the mode for a given label (case-insensitive). An
// empty label means ModeActive.
func ParseSKUMode(label string) (SKUMode, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return ModeActive, true
	}
	mode, ok := skuModes[label]

	return mode, ok
}
