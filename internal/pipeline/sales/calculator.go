package sales

import "strings"

// CODSurchargeFactor is applied to the COD handling fee (revenue × ship rate).
const CODSurchargeFactor = 1.07

// DefaultCODTerms mark a payment method as cash-on-delivery.
var DefaultCODTerms = []string{"COD", "เก็บเงินปลายทาง"}

// CostCalculator derives per-line costs and commissions for order lines
type CostCalculator struct {
	aliases    ShippingAliases
	vocabulary []RoleTerm
	codTerms   []string
}

// NewCostCalculator creates a calculator. Nil arguments fall back to the defaults.
func NewCostCalculator(aliases ShippingAliases, vocabulary []RoleTerm, codTerms []string) *CostCalculator {
	if aliases == nil {
		aliases = DefaultShippingAliases
	}
	if vocabulary == nil {
		vocabulary = DefaultRoleVocabulary
	}
	if codTerms == nil {
		codTerms = DefaultCODTerms
	}
	return &CostCalculator{
		aliases:    aliases,
		vocabulary: vocabulary,
		codTerms:   codTerms,
	}
}

// Enrich computes the derived costs of line. item may be nil when the SKU is
// not in the master sheet; every cost then resolves to zero and the line keeps
// its revenue.
func (c *CostCalculator) Enrich(line RawOrderLine, item *MasterItem) EnrichedOrderLine {
	out := EnrichedOrderLine{
		RawOrderLine: line,
		Date:         CivilDate(line.OrderTime.Date()),
		ProductName:  line.ProductName,
		Matched:      item != nil,
	}

	var unitCost, adminRate, teleRate float64
	if item != nil {
		unitCost = item.UnitCost
		adminRate = item.AdminCommissionRate
		teleRate = item.TelesaleCommissionRate
		out.BoxCost = item.BoxCost
		out.DeliveryCost = item.AvgShippingCost
		out.Category = item.Category
		if item.Name != "" {
			out.ProductName = item.Name
		}
	}
	if out.ProductName == "" {
		out.ProductName = line.SKU
	}

	revenue := line.PaidAmount

	// 1. Product cost = quantity × unit cost
	out.ProductCost = line.Quantity * unitCost

	// 2. Shipping rate from the courier's master column, or the standard delivery column
	out.ShipRate = ResolveShipRate(line.Courier, item, c.aliases)

	// 3. COD detection on payment method
	out.IsCOD = c.isCOD(line.PaymentMethod)

	// 4. COD cost = (revenue × ship rate) × 1.07
	if out.IsCOD {
		out.CODCost = (revenue * out.ShipRate) * CODSurchargeFactor
	}

	// 5. Staff role
	out.Role = ClassifyRoleWith(c.vocabulary, line.RoleHint, line.Creator)

	// 6. Admin commission
	if out.Role == RoleAdmin {
		out.AdminCommission = revenue * adminRate
	}

	// 7. Telesale commission
	if out.Role == RoleTelesale {
		out.TelesaleCommission = revenue * teleRate
	}

	return out
}

// EnrichAll joins every line against catalog and enriches it. The second
// return value counts lines without a master match.
func (c *CostCalculator) EnrichAll(lines []RawOrderLine, catalog *Catalog) ([]EnrichedOrderLine, int) {
	out := make([]EnrichedOrderLine, 0, len(lines))
	unmatched := 0
	for _, line := range lines {
		item, ok := catalog.Lookup(line.SKU)
		if !ok {
			unmatched++
			item = nil
		}
		out = append(out, c.Enrich(line, item))
	}
	return out, unmatched
}

func (c *CostCalculator) isCOD(paymentMethod string) bool {
	text := strings.ToLower(paymentMethod)
	for _, term := range c.codTerms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
