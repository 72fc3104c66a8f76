package sales

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PercentRule decides how bare numbers in percent-labelled columns are read.
type PercentRule string

const (
	// PercentAlways divides every bare value by 100 ("5" -> 0.05, "0.5" -> 0.005).
	PercentAlways PercentRule = "always"
	// PercentAboveOne divides only values greater than 1; values <= 1 are
	// taken as already fractional ("5" -> 0.05, "0.05" -> 0.05).
	PercentAboveOne PercentRule = "above_one"
)

// ParsePercentRule maps a config string to a rule, defaulting to PercentAlways.
func ParsePercentRule(s string) PercentRule {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PercentAboveOne), "above-one", "auto":
		return PercentAboveOne
	default:
		return PercentAlways
	}
}

var amountSanitizer = strings.NewReplacer(
	",", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
	"฿", "",
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	"₫", "",
	"THB", "",
	"thb", "",
	"บาท", "",
	"Rp", "",
)

var amountPlaceholders = map[string]struct{}{
	"-":       {},
	"--":      {},
	"\u2014":  {},
	"\u2013":  {},
	"n/a":     {},
	"na":      {},
	"nan":     {},
	"none":    {},
	"null":    {},
	"<nil>":   {},
	"#n/a":    {},
	"#value!": {},
	"#div/0!": {},
}

var hundred = decimal.NewFromInt(100)

const maxAmountExponent = 300

// NormalizeAmount converts any money-like value to a finite float64. Blanks,
// placeholders and anything unparsable become 0. A percent sign divides by 100.
func NormalizeAmount(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		return 0
	case decimal.Decimal:
		return finite(v.InexactFloat64())
	case string:
		return parseAmount(v)
	case fmt.Stringer:
		return parseAmount(v.String())
	default:
		return parseAmount(fmt.Sprint(v))
	}
}

// NormalizeRate reads a percent-labelled column into a fraction in [0, +inf).
// Values with an explicit "%" are divided by 100 exactly once regardless of rule.
func NormalizeRate(value any, rule PercentRule) float64 {
	v := NormalizeAmount(value)
	if v <= 0 {
		return 0
	}
	if hasPercentSign(value) {
		return v
	}
	if rule == PercentAboveOne && v <= 1 {
		return v
	}
	return v / 100
}

// NormalizeQuantity is NormalizeAmount clamped to be non-negative.
func NormalizeQuantity(value any) float64 {
	return math.Max(0, NormalizeAmount(value))
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if _, ok := amountPlaceholders[strings.ToLower(s)]; ok {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = amountSanitizer.Replace(s)
	percent := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	if s == "" {
		return 0
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	// Anything this far out of float64 range is garbage, not a money value.
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return 0
	}
	if percent {
		d = d.Div(hundred)
	}
	if negative {
		d = d.Neg()
	}

	f, _ := d.Float64()
	return finite(f)
}

func hasPercentSign(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, "%")
	case fmt.Stringer:
		return strings.Contains(v.String(), "%")
	default:
		return false
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
