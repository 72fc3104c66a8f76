package sales

import (
	"sort"
	"strings"
)

// Master sheet column names as maintained by the shop.
const (
	ColMasterSKU          = "SKU"
	ColMasterName         = "ชื่อสินค้า"
	ColUnitCost           = "ต้นทุน"
	ColBoxCost            = "ราคากล่อง"
	ColAvgShippingCost    = "ค่าส่งเฉลี่ย"
	ColAdminCommission    = "ค่าคอมมิชชั่น Admin"
	ColTelesaleCommission = "ค่าคอมมิชชั่น Telesale"
	ColCategory           = "ประเภท"

	// DefaultRateColumn is used when the courier's own rate column is missing or zero.
	DefaultRateColumn = "Standard Delivery - ส่งธรรมดาในประเทศ"

	// DefaultCategory tags items whose category cell is absent or blank.
	DefaultCategory = "normal"

	// UnknownName is the last-resort display name.
	UnknownName = "Unknown"
)

// DefaultRateColumns are the per-courier percent columns of the master sheet.
var DefaultRateColumns = []string{
	"J&T Express",
	"Flash Express",
	"Kerry Express",
	"ThailandPost",
	"DHL_1",
	"LEX TH",
	"SPX Express",
	"Express Delivery - ส่งด่วน",
	DefaultRateColumn,
}

var (
	skuColumnAliases      = []string{ColMasterSKU, "sku", "รหัสสินค้า"}
	nameColumnAliases     = []string{"Product Name", "Name", "Item Name", "ชื่อ", "ชื่อสินค้า (TH)"}
	unitCostAliases       = []string{ColUnitCost, "Unit Cost", "Cost"}
	boxCostAliases        = []string{ColBoxCost, "Box Cost", "Box"}
	avgShippingAliases    = []string{ColAvgShippingCost, "Avg Shipping Cost", "Shipping Cost"}
	adminCommissionAlias  = []string{ColAdminCommission, "Admin Commission"}
	teleCommissionAliases = []string{ColTelesaleCommission, "Telesale Commission"}
	categoryAliases       = []string{ColCategory, "Category", "Type", "ประเภทสินค้า"}
)

// ColumnResolver picks a column of t, or reports that none fits.
type ColumnResolver func(t *Table) (int, bool)

// ByName resolves the first of names present in the header.
func ByName(names ...string) ColumnResolver {
	return func(t *Table) (int, bool) {
		idx := t.Column(names...)
		return idx, idx >= 0
	}
}

// ByPosition resolves a fixed column index when the header is wide enough.
func ByPosition(i int) ColumnResolver {
	return func(t *Table) (int, bool) {
		if t == nil || i < 0 || i >= len(t.Header) {
			return -1, false
		}
		return i, true
	}
}

// ResolveColumn runs resolvers in order and returns the first hit, or -1.
func ResolveColumn(t *Table, resolvers ...ColumnResolver) int {
	for _, r := range resolvers {
		if idx, ok := r(t); ok {
			return idx
		}
	}
	return -1
}

// DisplayNameResolvers is the fallback chain for the display-name column.
// Rows whose resolved cell is blank fall back to the SKU, then to UnknownName.
var DisplayNameResolvers = []ColumnResolver{
	ByName(ColMasterName),
	ByName(nameColumnAliases...),
	ByPosition(1),
}

// MasterOptions controls how the master sheet is read
type MasterOptions struct {
	PercentRule PercentRule
	// RateColumns are always read as rates under these names, whatever the
	// header spelling. Defaults to DefaultRateColumns.
	RateColumns []string
}

// Catalog is the resolved master sheet, keyed by SKU.
type Catalog struct {
	items map[string]*MasterItem
	order []string
}

// NewCatalog builds a catalog from items; later items override earlier ones.
func NewCatalog(items ...MasterItem) *Catalog {
	c := &Catalog{items: make(map[string]*MasterItem)}
	for i := range items {
		c.put(items[i])
	}
	return c
}

func (c *Catalog) put(item MasterItem) {
	if _, ok := c.items[item.SKU]; !ok {
		c.order = append(c.order, item.SKU)
	}
	it := item
	c.items[item.SKU] = &it
}

// Lookup returns the master item for sku.
func (c *Catalog) Lookup(sku string) (*MasterItem, bool) {
	if c == nil {
		return nil, false
	}
	item, ok := c.items[strings.TrimSpace(sku)]
	return item, ok
}

// Len returns the number of distinct SKUs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns the items in first-seen SKU order.
func (c *Catalog) Items() []MasterItem {
	if c == nil {
		return nil
	}
	out := make([]MasterItem, 0, len(c.order))
	for _, sku := range c.order {
		out = append(out, *c.items[sku])
	}
	return out
}

// SKUs returns the catalog SKUs sorted.
func (c *Catalog) SKUs() []string {
	if c == nil {
		return nil
	}
	out := append([]string(nil), c.order...)
	sort.Strings(out)
	return out
}

// Names maps SKU to display name.
func (c *Catalog) Names() map[string]string {
	names := make(map[string]string)
	if c == nil {
		return names
	}
	for sku, item := range c.items {
		names[sku] = item.Name
	}
	return names
}

// ResolveMaster cleans the raw master sheet into a Catalog. An empty or SKU-less
// table yields an empty catalog; downstream costs then default to zero.
func ResolveMaster(t *Table, opts MasterOptions) *Catalog {
	catalog := NewCatalog()
	if t.Empty() {
		return catalog
	}
	// Header names are trimmed before any resolution.
	t = NewTable(t.Header, t.Rows)

	idxSKU := t.Column(skuColumnAliases...)
	if idxSKU < 0 {
		return catalog
	}

	rateColumns := opts.RateColumns
	if len(rateColumns) == 0 {
		rateColumns = DefaultRateColumns
	}

	idxName := ResolveColumn(t, DisplayNameResolvers...)
	idxUnitCost := t.Column(unitCostAliases...)
	idxBoxCost := t.Column(boxCostAliases...)
	idxAvgShipping := t.Column(avgShippingAliases...)
	idxAdmin := t.Column(adminCommissionAlias...)
	idxTele := t.Column(teleCommissionAliases...)
	idxCategory := t.Column(categoryAliases...)

	claimed := map[int]bool{idxSKU: true}
	for _, idx := range []int{idxName, idxUnitCost, idxBoxCost, idxAvgShipping, idxAdmin, idxTele, idxCategory} {
		if idx >= 0 {
			claimed[idx] = true
		}
	}
	rateIdx := rateColumnIndex(t, rateColumns, claimed)

	for _, row := range t.Rows {
		sku := t.Cell(row, idxSKU)
		if sku == "" {
			continue
		}

		name := t.Cell(row, idxName)
		if name == "" {
			name = sku
		}
		if name == "" {
			name = UnknownName
		}

		category := t.Cell(row, idxCategory)
		if category == "" {
			category = DefaultCategory
		}

		rates := make(map[string]float64, len(rateIdx))
		for col, idx := range rateIdx {
			rates[col] = NormalizeRate(t.Cell(row, idx), opts.PercentRule)
		}

		catalog.put(MasterItem{
			SKU:                    sku,
			Name:                   name,
			UnitCost:               NormalizeAmount(t.Cell(row, idxUnitCost)),
			BoxCost:                NormalizeAmount(t.Cell(row, idxBoxCost)),
			AvgShippingCost:        NormalizeAmount(t.Cell(row, idxAvgShipping)),
			ShippingRates:          rates,
			AdminCommissionRate:    NormalizeRate(t.Cell(row, idxAdmin), opts.PercentRule),
			TelesaleCommissionRate: NormalizeRate(t.Cell(row, idxTele), opts.PercentRule),
			Category:               category,
		})
	}

	return catalog
}

// rateColumnIndex maps rate column names to header indexes. Configured names
// are resolved first; every other unclaimed header is a courier rate column
// under its own name, so couriers outside the configured list still resolve.
func rateColumnIndex(t *Table, configured []string, claimed map[int]bool) map[string]int {
	out := make(map[string]int, len(t.Header))
	taken := make(map[int]bool, len(configured))
	for _, col := range configured {
		idx := t.Column(col)
		if idx < 0 {
			continue
		}
		out[col] = idx
		taken[idx] = true
	}
	for idx, h := range t.Header {
		if h == "" || claimed[idx] || taken[idx] {
			continue
		}
		if _, ok := out[h]; !ok {
			out[h] = idx
		}
	}
	return out
}
