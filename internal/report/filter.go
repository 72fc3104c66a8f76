package report

import (
	"sort"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/domain"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
)

type skuTotals struct {
	revenue float64
	ads     float64
}

// FactsBetween returns the facts dated within [from, to]. A zero bound is open.
func FactsBetween(facts []sales.DailyFact, from, to time.Time) []sales.DailyFact {
	out := make([]sales.DailyFact, 0, len(facts))
	for _, f := range facts {
		if !from.IsZero() && f.Date.Before(civil(from)) {
			continue
		}
		if !to.IsZero() && f.Date.After(civil(to)) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FactsInMonth returns the facts of one calendar month.
func FactsInMonth(facts []sales.DailyFact, year, month int) []sales.DailyFact {
	out := make([]sales.DailyFact, 0)
	for _, f := range facts {
		if f.Year == year && f.Month == month {
			out = append(out, f)
		}
	}
	return out
}

// FilterSKUs keeps facts whose SKU is in skus.
func FilterSKUs(facts []sales.DailyFact, skus []string) []sales.DailyFact {
	keep := make(map[string]struct{}, len(skus))
	for _, s := range skus {
		keep[s] = struct{}{}
	}
	out := make([]sales.DailyFact, 0, len(facts))
	for _, f := range facts {
		if _, ok := keep[f.SKU]; ok {
			out = append(out, f)
		}
	}
	return out
}

// SelectSKUs picks the SKUs a period view shows. An explicit selection wins
// over the mode. ModeAll returns the snapshot's SKU list.
func SelectSKUs(facts []sales.DailyFact, mode domain.SKUMode, selected, all []string) []string {
	if len(selected) > 0 {
		return sortedUnique(selected)
	}
	if mode == domain.ModeAll {
		return sortedUnique(all)
	}

	totals := make(map[string]*skuTotals)
	for _, f := range facts {
		t, ok := totals[f.SKU]
		if !ok {
			t = &skuTotals{}
			totals[f.SKU] = t
		}
		t.revenue += f.Revenue
		t.ads += f.AdSpend
	}

	skus := make([]string, 0, len(totals))
	for sku, t := range totals {
		if modeKeeps(mode, t.revenue, t.ads) {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	return skus
}

func modeKeeps(mode domain.SKUMode, revenue, ads float64) bool {
	switch mode {
	case domain.ModeSold:
		return revenue > 0
	case domain.ModeAdsNoSale:
		return ads > 0 && revenue == 0
	case domain.ModeAll:
		return true
	default:
		return revenue > 0 || ads > 0
	}
}

// Years lists the years present in facts, newest first.
func Years(facts []sales.DailyFact) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, f := range facts {
		if _, ok := seen[f.Year]; !ok {
			seen[f.Year] = struct{}{}
			years = append(years, f.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
