package sales

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Order export column names.
const (
	ColOrderID       = "หมายเลขคำสั่งซื้อออนไลน์"
	ColOrderStatus   = "สถานะคำสั่งซื้อ"
	ColCourier       = "บริษัทขนส่ง"
	ColOrderTime     = "เวลาสั่งซื้อ"
	ColVariant       = "รูปแบบสินค้า"
	ColQuantity      = "จำนวน"
	ColPaidAmount    = "รายละเอียดยอดที่ชำระแล้ว"
	ColCreator       = "ผู้สร้างคำสั่งซื้อ"
	ColPaymentMethod = "วิธีการชำระเงิน"
	ColProductName   = "ชื่อสินค้า"
	ColRoleHint      = "ประเภทการทำงาน"

	// UnknownSKU keys order lines whose variant carries no SKU prefix.
	UnknownSKU = "Unknown"
)

var (
	orderIDAliases       = []string{ColOrderID, "Order ID", "OrderID"}
	orderStatusAliases   = []string{ColOrderStatus, "Order Status", "Status"}
	courierAliases       = []string{ColCourier, "Courier", "Shipping Provider"}
	orderTimeAliases     = []string{ColOrderTime, "Order Time", "Order Date", "Created At"}
	variantAliases       = []string{ColVariant, "Variant", "Product Variant", "Seller SKU"}
	quantityAliases      = []string{ColQuantity, "Quantity", "Qty"}
	paidAmountAliases    = []string{ColPaidAmount, "Paid Amount", "Paid"}
	creatorAliases       = []string{ColCreator, "Creator", "Created By"}
	paymentMethodAliases = []string{ColPaymentMethod, "Payment Method", "Payment"}
	productNameAliases   = []string{ColProductName, "Product Name"}
	roleHintAliases      = []string{ColRoleHint, "Work Type", "Role"}
)

// DefaultCancelledStatuses are the order statuses excluded before costing.
var DefaultCancelledStatuses = []string{"ยกเลิก", "Cancelled", "Canceled"}

// DefaultDateLayouts are tried in order when parsing order and ads dates.
// Slash dates are read day-first, as the shop exports them.
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// buddhistEraOffset converts Thai solar calendar years to Gregorian.
const buddhistEraOffset = 543

// buddhistYearPattern matches a four-digit year after 2400, read as Buddhist era.
var buddhistYearPattern = regexp.MustCompile(`\b(24\d[1-9]|24[1-9]\d|2[5-9]\d\d)\b`)

// OrderOptions controls order intake.
type OrderOptions struct {
	CancelledStatuses []string
	DateLayouts       []string
	Location          *time.Location
}

func (o OrderOptions) withDefaults() OrderOptions {
	if o.CancelledStatuses == nil {
		o.CancelledStatuses = DefaultCancelledStatuses
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = DefaultDateLayouts
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// ParseOrders reads the order export into raw order lines. Cancelled rows and
// rows whose order time cannot be parsed are dropped and counted in the stats.
func ParseOrders(t *Table, opts OrderOptions) ([]RawOrderLine, IntakeStats) {
	var stats IntakeStats
	if t.Empty() {
		return nil, stats
	}
	opts = opts.withDefaults()
	t = NewTable(t.Header, t.Rows)

	idxID := t.Column(orderIDAliases...)
	idxStatus := t.Column(orderStatusAliases...)
	idxCourier := t.Column(courierAliases...)
	idxTime := t.Column(orderTimeAliases...)
	idxVariant := t.Column(variantAliases...)
	idxQty := t.Column(quantityAliases...)
	idxPaid := t.Column(paidAmountAliases...)
	idxCreator := t.Column(creatorAliases...)
	idxPayment := t.Column(paymentMethodAliases...)
	idxName := t.Column(productNameAliases...)
	idxRole := t.Column(roleHintAliases...)

	lines := make([]RawOrderLine, 0, len(t.Rows))
	for _, row := range t.Rows {
		stats.Total++

		status := t.Cell(row, idxStatus)
		if isCancelled(status, opts.CancelledStatuses) {
			stats.Cancelled++
			continue
		}

		orderTime, ok := ParseDate(t.Cell(row, idxTime), opts.DateLayouts, opts.Location)
		if !ok {
			stats.InvalidDate++
			continue
		}

		variant := t.Cell(row, idxVariant)
		lines = append(lines, RawOrderLine{
			OrderID:       CleanOrderID(t.Cell(row, idxID)),
			Status:        status,
			Courier:       t.Cell(row, idxCourier),
			OrderTime:     orderTime,
			Variant:       variant,
			SKU:           ExtractSKU(variant),
			Quantity:      NormalizeQuantity(t.Cell(row, idxQty)),
			PaidAmount:    NormalizeQuantity(t.Cell(row, idxPaid)),
			Creator:       t.Cell(row, idxCreator),
			RoleHint:      t.Cell(row, idxRole),
			PaymentMethod: t.Cell(row, idxPayment),
			ProductName:   t.Cell(row, idxName),
		})
	}
	stats.Kept = len(lines)

	return lines, stats
}

// CleanOrderID strips the ".0" that spreadsheets append to numeric ids.
func CleanOrderID(id string) string {
	return strings.TrimSuffix(strings.TrimSpace(id), ".0")
}

// ExtractSKU returns the variant prefix before the first "-".
func ExtractSKU(variant string) string {
	sku, _, _ := strings.Cut(variant, "-")
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return UnknownSKU
	}
	return sku
}

func isCancelled(status string, cancelled []string) bool {
	status = strings.TrimSpace(status)
	if status == "" {
		return false
	}
	for _, c := range cancelled {
		if strings.EqualFold(status, strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

// ParseDate parses s with the first matching layout. Timestamps carrying a zone
// are moved into loc before the calendar date is taken. Buddhist-era years are
// converted before parsing, so BE leap days like 29/02/2567 are valid. The
// result is the civil date at UTC midnight.
func ParseDate(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	s = toGregorianYear(s)

	for _, layout := range layouts {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		ts = ts.In(loc)
		return CivilDate(ts.Year(), ts.Month(), ts.Day()), true
	}
	return time.Time{}, false
}

func toGregorianYear(s string) string {
	return buddhistYearPattern.ReplaceAllStringFunc(s, func(year string) string {
		y, err := strconv.Atoi(year)
		if err != nil {
			return year
		}
		return strconv.Itoa(y - buddhistEraOffset)
	})
}

// CivilDate returns the date at UTC midnight.
func CivilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
