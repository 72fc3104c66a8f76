package sales

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds the variant switches of the daily sales pipeline.
type Config struct {
	// IncludeFixedCost makes period reports subtract the monthly fixed cost.
	IncludeFixedCost bool
	PercentRule      PercentRule
	// CategoryTagging carries the master category tag onto every fact.
	CategoryTagging bool

	ShippingAliases   ShippingAliases
	RoleVocabulary    []RoleTerm
	CODTerms          []string
	CancelledStatuses []string
	DateLayouts       []string
	RateColumns       []string
	Location          *time.Location

	// Now stamps the snapshot; defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the configuration matching the shop's current sheets.
func DefaultConfig() Config {
	return Config{
		IncludeFixedCost:  true,
		PercentRule:       PercentAlways,
		ShippingAliases:   DefaultShippingAliases,
		RoleVocabulary:    DefaultRoleVocabulary,
		CODTerms:          DefaultCODTerms,
		CancelledStatuses: DefaultCancelledStatuses,
		DateLayouts:       DefaultDateLayouts,
		RateColumns:       DefaultRateColumns,
		Location:          time.UTC,
	}
}

// Pipeline turns one set of raw source tables into a Snapshot.
type Pipeline struct {
	config     Config
	calculator *CostCalculator
}

// NewPipeline creates a pipeline; unset config fields take their defaults.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.PercentRule == "" {
		cfg.PercentRule = PercentAlways
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if len(cfg.DateLayouts) == 0 {
		cfg.DateLayouts = DefaultDateLayouts
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.RateColumns = withAliasTargets(cfg.RateColumns, cfg.ShippingAliases)
	return &Pipeline{
		config:     cfg,
		calculator: NewCostCalculator(cfg.ShippingAliases, cfg.RoleVocabulary, cfg.CODTerms),
	}
}

// withAliasTargets appends every alias target missing from columns, so an
// alias to a custom courier column reads that column from the master sheet.
func withAliasTargets(columns []string, aliases ShippingAliases) []string {
	if len(columns) == 0 {
		columns = DefaultRateColumns
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		seen[col] = true
	}
	var extra []string
	for _, col := range aliases {
		if col != "" && !seen[col] {
			seen[col] = true
			extra = append(extra, col)
		}
	}
	if len(extra) == 0 {
		return columns
	}
	sort.Strings(extra)
	return append(append([]string(nil), columns...), extra...)
}

// Name returns the unique identifier of this pipeline.
func (p *Pipeline) Name() string {
	return "daily_sales"
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Run executes the full transformation. It never fails: malformed input
// degrades to zero values or dropped rows, which are logged as warnings.
func (p *Pipeline) Run(src Sources) *Snapshot {
	snap := &Snapshot{
		SKUs:             []string{},
		SKUNames:         map[string]string{},
		IncludeFixedCost: p.config.IncludeFixedCost,
		UnattributedAds:  map[string]float64{},
		GeneratedAt:      p.config.Now().UTC(),
	}

	// 1) Order intake
	lines, intake := ParseOrders(src.Orders, OrderOptions{
		CancelledStatuses: p.config.CancelledStatuses,
		DateLayouts:       p.config.DateLayouts,
		Location:          p.config.Location,
	})
	snap.Stats.Orders = intake
	if intake.InvalidDate > 0 {
		log.Warn().Int("rows", intake.InvalidDate).Msg("dropped order rows with unparseable order time")
	}
	if src.Orders.Empty() {
		log.Warn().Msg("orders table is empty, returning empty snapshot")
		return snap
	}
	if len(lines) == 0 {
		log.Warn().Int("rows", intake.Total).Msg("no usable order rows, facts carry ad spend only")
	}

	// 2) Master catalog
	catalog := ResolveMaster(src.Master, MasterOptions{
		PercentRule: p.config.PercentRule,
		RateColumns: p.config.RateColumns,
	})
	snap.Stats.MasterItems = catalog.Len()
	if catalog.Len() == 0 {
		log.Warn().Msg("master sheet is empty, all costs default to zero")
	}

	// 3) Per-line costs
	enriched, unmatched := p.calculator.EnrichAll(lines, catalog)
	snap.Stats.UnmatchedLines = unmatched
	if unmatched > 0 {
		log.Warn().Int("lines", unmatched).Msg("order lines without a master match")
	}

	// 4) Ads attribution
	ads := AggregateAds(src.Ads, p.config.DateLayouts, p.config.Location)
	snap.Stats.AdsRows = ads.Rows
	snap.Stats.AdsSkipped = ads.Skipped
	if ads.Skipped {
		log.Warn().Msg("ads table lacks cost, date or campaign column, ad attribution skipped")
	}
	if ads.InvalidDate > 0 {
		log.Warn().Int("rows", ads.InvalidDate).Msg("dropped ads rows with unparseable date")
	}
	snap.UnattributedAds = ads.UnattributedByDate

	// 5) Daily facts
	facts := BuildDailyFacts(enriched, ads)
	p.label(facts, catalog)
	snap.Facts = facts
	snap.Stats.Facts = len(facts)

	// 6) SKU list and names, master names win
	seen := make(map[string]struct{}, len(facts))
	for _, f := range facts {
		if _, ok := seen[f.SKU]; !ok {
			seen[f.SKU] = struct{}{}
			snap.SKUs = append(snap.SKUs, f.SKU)
		}
		snap.SKUNames[f.SKU] = f.ProductName
	}
	sort.Strings(snap.SKUs)
	for sku, name := range catalog.Names() {
		snap.SKUNames[sku] = name
	}

	// 7) Fixed costs
	snap.FixedCosts = ResolveFixedCosts(src.FixedCost)

	log.Info().
		Int("orders", intake.Kept).
		Int("cancelled", intake.Cancelled).
		Int("master_items", catalog.Len()).
		Int("ads_rows", ads.Rows).
		Int("facts", len(facts)).
		Msg("daily sales pipeline finished")

	return snap
}

// label fills display names of ads-only facts and applies category tagging.
func (p *Pipeline) label(facts []DailyFact, catalog *Catalog) {
	for i := range facts {
		f := &facts[i]
		item, ok := catalog.Lookup(f.SKU)
		if f.ProductName == "" {
			if ok && item.Name != "" {
				f.ProductName = item.Name
			} else {
				f.ProductName = f.SKU
			}
		}

		if !p.config.CategoryTagging {
			f.Category = ""
			continue
		}
		if ok {
			f.Category = item.Category
		}
		if f.Category == "" {
			f.Category = DefaultCategory
		}
	}
}
