package sales

import "time"

// DateLayout is the canonical layout for fact dates and map keys.
const DateLayout = "2006-01-02"

// Role is the staff role inferred for an order line.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleTelesale Role = "Telesale"
	RoleUnknown  Role = "Unknown"
)

// RawOrderLine represents a single order-item row from the sales export
type RawOrderLine struct {
	OrderID       string
	Status        string
	Courier       string
	OrderTime     time.Time
	Variant       string // e.g. "ABC123-red-L"
	SKU           string // Variant prefix before the first "-"
	Quantity      float64
	PaidAmount    float64 // Authoritative revenue for the line
	Creator       string
	RoleHint      string
	PaymentMethod string
	ProductName   string
}

// MasterItem represents one SKU of the product master sheet
type MasterItem struct {
	SKU                    string             `json:"sku"`
	Name                   string             `json:"name"`
	UnitCost               float64            `json:"unit_cost"`
	BoxCost                float64            `json:"box_cost"`
	AvgShippingCost        float64            `json:"avg_shipping_cost"`
	ShippingRates          map[string]float64 `json:"shipping_rates"` // rate column -> fraction of revenue
	AdminCommissionRate    float64            `json:"admin_commission_rate"`
	TelesaleCommissionRate float64            `json:"telesale_commission_rate"`
	Category               string             `json:"category"`
}

// EnrichedOrderLine is a RawOrderLine left-joined with its MasterItem plus derived costs
type EnrichedOrderLine struct {
	RawOrderLine

	Date        time.Time // Calendar date of OrderTime, UTC midnight
	ProductName string    // Master name when matched, otherwise the export name
	Category    string
	Matched     bool

	// Master-sheet constants carried for daily max() aggregation
	BoxCost      float64
	DeliveryCost float64

	// Derived
	ProductCost        float64
	ShipRate           float64
	IsCOD              bool
	CODCost            float64
	Role               Role
	AdminCommission    float64
	TelesaleCommission float64
}

// FactKey identifies one DailyFact row.
type FactKey struct {
	Date string // DateLayout
	SKU  string
}

// DailyFact is the per-day-per-SKU aggregate consumed by all report views
type DailyFact struct {
	Date        time.Time `json:"date"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`

	OrderCount int     `json:"order_count"`
	Quantity   float64 `json:"quantity"`
	Revenue    float64 `json:"revenue"`

	ProductCost        float64 `json:"product_cost"`
	BoxCost            float64 `json:"box_cost"`      // max per (date, SKU)
	DeliveryCost       float64 `json:"delivery_cost"` // max per (date, SKU)
	CODCost            float64 `json:"cod_cost"`
	AdminCommission    float64 `json:"admin_commission"`
	TelesaleCommission float64 `json:"telesale_commission"`
	AdSpend            float64 `json:"ad_spend"`

	OtherCosts float64 `json:"other_costs"` // box + delivery + COD + commissions
	TotalCost  float64 `json:"total_cost"`
	NetProfit  float64 `json:"net_profit"`

	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Key returns the grouping key of the fact.
func (f DailyFact) Key() FactKey {
	return FactKey{Date: f.Date.Format(DateLayout), SKU: f.SKU}
}

// Sources holds the raw tables one refresh cycle reads.
type Sources struct {
	Orders    *Table
	Ads       *Table
	Master    *Table
	FixedCost *Table
}

// IntakeStats counts what happened to order rows during parsing
type IntakeStats struct {
	Total       int `json:"total"`
	Cancelled   int `json:"cancelled"`
	InvalidDate int `json:"invalid_date"`
	Kept        int `json:"kept"`
}

// RunStats summarizes one pipeline run
type RunStats struct {
	Orders         IntakeStats `json:"orders"`
	MasterItems    int         `json:"master_items"`
	UnmatchedLines int         `json:"unmatched_lines"`
	AdsRows        int         `json:"ads_rows"`
	AdsSkipped     bool        `json:"ads_skipped"`
	Facts          int         `json:"facts"`
}

// Snapshot is the immutable output of one refresh cycle.
type Snapshot struct {
	Facts            []DailyFact       `json:"facts"`
	FixedCosts       FixedCostBook     `json:"fixed_costs"`
	SKUs             []string          `json:"skus"`
	SKUNames         map[string]string `json:"sku_names"`
	IncludeFixedCost bool              `json:"include_fixed_cost"`
	// UnattributedAds is spend of campaigns without a SKU token, by fact date.
	UnattributedAds map[string]float64 `json:"unattributed_ads"`
	Stats           RunStats           `json:"stats"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// UnattributedAdSpend sums untagged ad spend of a month, or of the whole year
// when month is 0.
func (s *Snapshot) UnattributedAdSpend(year, month int) float64 {
	if s == nil {
		return 0
	}
	total := 0.0
	for day, spend := range s.UnattributedAds {
		d, err := time.Parse(DateLayout, day)
		if err != nil || d.Year() != year {
			continue
		}
		if month == 0 || int(d.Month()) == month {
			total += spend
		}
	}
	return total
}

// Empty reports whether the snapshot carries no facts.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Facts) == 0
}
