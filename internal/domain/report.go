package domain

// SKUInfo pairs a SKU with its display name
type SKUInfo struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// MonthlyCards are the headline numbers of a month
type MonthlyCards struct {
	TotalSales    float64 `json:"total_sales"`
	OperatingCost float64 `json:"operating_cost"` // total cost without ads
	AdSpend       float64 `json:"ad_spend"`
	// UnattributedAdSpend is the part of AdSpend from campaigns without a SKU tag
	UnattributedAdSpend float64 `json:"unattributed_ad_spend"`
	FixedCost           float64 `json:"fixed_cost"`
	NetProfit           float64 `json:"net_profit"`
}

// MonthlyDayRow is one day of the monthly matrix
type MonthlyDayRow struct {
	Day       int                `json:"day"`
	Date      string             `json:"date"`
	Revenue   float64            `json:"revenue"`
	NetProfit float64            `json:"net_profit"` // after the daily fixed-cost share and untagged ads
	BySKU     map[string]float64 `json:"by_sku"`     // net profit per SKU
}

// MonthlyReport is the day-by-SKU profit matrix of one month
type MonthlyReport struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	MonthName      string          `json:"month_name"`
	DaysInMonth    int             `json:"days_in_month"`
	Mode           SKUMode         `json:"mode"`
	SKUs           []SKUInfo       `json:"skus"`
	Cards          MonthlyCards    `json:"cards"`
	FixedCostDaily float64         `json:"fixed_cost_daily"`
	Days           []MonthlyDayRow `json:"days"`
}

// SKUBreakdown sums one SKU's facts over a date range
type SKUBreakdown struct {
	SKU                string  `json:"sku"`
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	Revenue            float64 `json:"revenue"`
	ProductCost        float64 `json:"product_cost"`
	BoxCost            float64 `json:"box_cost"`
	DeliveryCost       float64 `json:"delivery_cost"`
	CODCost            float64 `json:"cod_cost"`
	AdminCommission    float64 `json:"admin_commission"`
	TelesaleCommission float64 `json:"telesale_commission"`
	AdSpend            float64 `json:"ad_spend"`
	NetProfit          float64 `json:"net_profit"`
}

// DailyReport is the per-SKU breakdown of a date range
type DailyReport struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	Mode           SKUMode        `json:"mode"`
	Rows           []SKUBreakdown `json:"rows"`
	TotalRevenue   float64        `json:"total_revenue"`
	TotalNetProfit float64        `json:"total_net_profit"`
}

// TrendPoint is one (date, SKU) revenue sample
type TrendPoint struct {
	Date    string  `json:"date"`
	SKU     string  `json:"sku"`
	Revenue float64 `json:"revenue"`
}

// TrendReport is a revenue series for selected SKUs
type TrendReport struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	SKUs   []string     `json:"skus"`
	Points []TrendPoint `json:"points"`
}

// PnLReport is the profit and loss statement of one year
type PnLReport struct {
	Year                int     `json:"year"`
	Sales               float64 `json:"sales"`
	ProductCost         float64 `json:"product_cost"`
	BoxCost             float64 `json:"box_cost"`
	GrossProfit         float64 `json:"gross_profit"`
	Shipping            float64 `json:"shipping"`
	COD                 float64 `json:"cod"`
	AdminCommission     float64 `json:"admin_commission"`
	TelesaleCommission  float64 `json:"telesale_commission"`
	AdSpend             float64 `json:"ad_spend"` // includes UnattributedAdSpend
	UnattributedAdSpend float64 `json:"unattributed_ad_spend"`
	FixedCost           float64 `json:"fixed_cost"`
	NetProfit           float64 `json:"net_profit"`
}

// CommissionReport totals staff commissions of one month
type CommissionReport struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Admin     float64 `json:"admin"`
	Telesale  float64 `json:"telesale"`
	Total     float64 `json:"total"`
}
