package sales

import (
	"strconv"
	"strings"
	"time"
)

var (
	fixedMonthAliases  = []string{"เดือน", "Month"}
	fixedYearAliases   = []string{"ปี", "Year"}
	fixedAmountAliases = []string{"Fix_Cost", "Fixed_Cost", "Fixed Cost", "Amount"}
)

// ThaiMonths are the Thai month names, January first.
var ThaiMonths = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var thaiMonthAbbrev = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// ThaiMonthName returns the Thai name of month, or "" when out of range.
func ThaiMonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return ThaiMonths[month-1]
}

// ParseMonth reads a month label: Thai names or abbreviations, English names
// or numbers 1-12.
func ParseMonth(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if f := NormalizeAmount(s); f >= 1 && f <= 12 && f == float64(int(f)) {
		return int(f), true
	}
	for i := range ThaiMonths {
		if s == ThaiMonths[i] || s == thaiMonthAbbrev[i] || s == strings.TrimSuffix(thaiMonthAbbrev[i], ".") {
			return i + 1, true
		}
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return int(m), true
		}
	}
	return 0, false
}

// ParseYear reads a Gregorian or Buddhist-era year.
func ParseYear(s string) (int, bool) {
	f := NormalizeAmount(strings.TrimSpace(s))
	year := int(f)
	if year <= 0 || f != float64(year) {
		return 0, false
	}
	if year > 2400 {
		year -= buddhistEraOffset
	}
	return year, true
}

// FixedCost is one monthly overhead amount.
type FixedCost struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// FixedCostBook holds the monthly fixed costs keyed by (year, month).
type FixedCostBook struct {
	Entries []FixedCost `json:"entries"`
}

// ResolveFixedCosts reads the fixed-cost sheet. Rows with an unrecognized month
// or year are ignored; duplicate (year, month) rows are summed.
func ResolveFixedCosts(t *Table) FixedCostBook {
	var book FixedCostBook
	if t.Empty() {
		return book
	}
	t = NewTable(t.Header, t.Rows)

	idxMonth := t.Column(fixedMonthAliases...)
	idxYear := t.Column(fixedYearAliases...)
	idxAmount := t.Column(fixedAmountAliases...)
	if idxMonth < 0 || idxYear < 0 || idxAmount < 0 {
		return book
	}

	for _, row := range t.Rows {
		month, ok := ParseMonth(t.Cell(row, idxMonth))
		if !ok {
			continue
		}
		year, ok := ParseYear(t.Cell(row, idxYear))
		if !ok {
			continue
		}
		book.Add(year, month, NormalizeAmount(t.Cell(row, idxAmount)))
	}
	return book
}

// Add accumulates amount onto (year, month).
func (b *FixedCostBook) Add(year, month int, amount float64) {
	for i := range b.Entries {
		if b.Entries[i].Year == year && b.Entries[i].Month == month {
			b.Entries[i].Amount += amount
			return
		}
	}
	b.Entries = append(b.Entries, FixedCost{
		Year:   year,
		Month:  month,
		Label:  ThaiMonthName(month) + "-" + strconv.Itoa(year),
		Amount: amount,
	})
}

// Lookup returns the fixed cost of (year, month), or 0.
func (b FixedCostBook) Lookup(year, month int) float64 {
	for _, e := range b.Entries {
		if e.Year == year && e.Month == month {
			return e.Amount
		}
	}
	return 0
}

// YearTotal sums the fixed costs of year.
func (b FixedCostBook) YearTotal(year int) float64 {
	total := 0.0
	for _, e := range b.Entries {
		if e.Year == year {
			total += e.Amount
		}
	}
	return total
}

// DailyShare spreads the month's fixed cost evenly across its days.
func (b FixedCostBook) DailyShare(year, month int) float64 {
	days := DaysInMonth(year, month)
	if days == 0 {
		return 0
	}
	return b.Lookup(year, month) / float64(days)
}

// Len returns the number of (year, month) entries.
func (b FixedCostBook) Len() int {
	return len(b.Entries)
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
