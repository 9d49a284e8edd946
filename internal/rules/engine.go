// internal/rules/engine.go
package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// ApplyImportRules is the single ordered transform for the configurable
// business rules. Every rule reads its own config block off the source and
// is skipped when the block is absent or disabled. The order is fixed:
//
//	value replacements, date normalization, stock-text mappings,
//	complex-stock patterns, discontinued detection, required fields,
//	future-stock config, regular-price config, price floor/ceiling,
//	column sale pricing, minimum-stock threshold.
func ApplyImportRules(variants []*domain.Variant, source *domain.Source, stats *domain.RuleStats, now time.Time) []*domain.Variant {
	if source == nil {
		return variants
	}

	applyValueReplacements(variants, source.ValueRules, stats)
	normalizeDates(variants, source.DateOrder, stats)
	applyStockTextMappings(variants, source.StockTextMappings, stats)

	patterns := compileStockPatterns(source.ComplexStock, stats)
	if len(patterns) > 0 {
		for _, v := range variants {
			if applyComplexStock(v, patterns, source.DateOrder) {
				stats.ComplexStockMatched++
			}
		}
	}

	variants = detectDiscontinued(variants, source.Discontinued, stats)
	variants = requireFields(variants, source.RequiredFields, stats)
	applyFutureStock(variants, source.FutureStock, stats, now)
	variants = applyRegularPrice(variants, source.RegularPrice, stats)
	variants = applyPriceBounds(variants, source.PriceBounds, stats)
	applyColumnSalePricing(variants, source.SalePrice, stats)
	variants = applyMinimumStock(variants, source.MinimumStock, stats)

	// Invariant: zero stock plus a valid future ship-date means future
	// stock, whatever the rule blocks said.
	for _, v := range variants {
		if v.Stock == 0 && !v.HasFutureStock && v.HasValidFutureShipDate(now) {
			v.HasFutureStock = true
			stats.FutureStockFlagged++
		}
	}

	return variants
}

func applyValueReplacements(variants []*domain.Variant, rules []domain.ValueReplacementRule, stats *domain.RuleStats) {
	for _, rule := range rules {
		for _, v := range variants {
			var field *string
			switch strings.ToLower(rule.Field) {
			case "style":
				field = &v.Style
			case "color", "colour":
				field = &v.Color
			case "size":
				field = &v.Size
			case "shipdate", "ship_date":
				field = &v.ShipDate
			case "stock":
				field = &v.RawStockText
			default:
				continue
			}
			if strings.Contains(*field, rule.Find) {
				*field = strings.ReplaceAll(*field, rule.Find, rule.Replace)
				stats.ValueReplacements++
			}
		}
	}
}

// normalizeDates re-parses any ship-date that is not already canonical ISO
// using the source's preferred day/month order.
func normalizeDates(variants []*domain.Variant, order domain.DateOrder, stats *domain.RuleStats) {
	for _, v := range variants {
		if v.ShipDate == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v.ShipDate); err == nil {
			continue
		}
		if iso := formats.ParseShipDate(v.ShipDate, order); iso != "" {
			v.ShipDate = iso
			stats.DatesNormalized++
		} else {
			v.ShipDate = ""
		}
	}
}

// applyStockTextMappings resolves stock cells that survived parsing as text.
func applyStockTextMappings(variants []*domain.Variant, mappings map[string]int, stats *domain.RuleStats) {
	if len(mappings) == 0 {
		return
	}
	for _, v := range variants {
		raw := strings.ToLower(strings.TrimSpace(v.RawStockText))
		if raw == "" {
			continue
		}
		for text, value := range mappings {
			if strings.ToLower(strings.TrimSpace(text)) == raw {
				if value < 0 {
					value = 0
				}
				if v.Stock != value {
					v.Stock = value
					stats.StockTextMapped++
				}
				break
			}
		}
	}
}

// detectDiscontinued matches the keyword list against the configured column
// (or the parser-set flag) and optionally drops discontinued variants.
func detectDiscontinued(variants []*domain.Variant, cfg *domain.DiscontinuedConfig, stats *domain.RuleStats) []*domain.Variant {
	if cfg == nil {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		if !v.Discontinued && len(cfg.Keywords) > 0 {
			cell := v.RawStockText
			if cfg.Column != "" && v.Raw != nil {
				cell = v.Raw[cfg.Column]
			}
			lower := strings.ToLower(cell)
			for _, kw := range cfg.Keywords {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					v.Discontinued = true
					stats.DiscontinuedDetected++
					break
				}
			}
		}
		if v.Discontinued && cfg.SkipDiscontinued {
			stats.DiscontinuedFiltered++
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

func requireFields(variants []*domain.Variant, required []string, stats *domain.RuleStats) []*domain.Variant {
	if len(required) == 0 {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		missing := false
		for _, field := range required {
			switch strings.ToLower(field) {
			case "style":
				missing = strings.TrimSpace(v.Style) == ""
			case "color", "colour":
				missing = strings.TrimSpace(v.Color) == ""
			case "size":
				missing = strings.TrimSpace(v.Size) == ""
			case "price":
				missing = v.Price == nil
			case "shipdate", "ship_date":
				missing = v.ShipDate == ""
			}
			if missing {
				break
			}
		}
		if missing {
			stats.MissingRequired++
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

func applyFutureStock(variants []*domain.Variant, cfg *domain.FutureStockConfig, stats *domain.RuleStats, now time.Time) {
	if cfg == nil {
		return
	}
	for _, v := range variants {
		if cfg.UseFutureDateAsShip && cfg.FutureDateColumn != "" && v.Raw != nil {
			if raw := v.Raw[cfg.FutureDateColumn]; raw != "" {
				if iso := formats.ParseShipDate(raw, ""); iso != "" {
					v.ShipDate = iso
				}
			}
		}
		if cfg.DateOnlyMode && v.ShipDate != "" && v.HasValidFutureShipDate(now) {
			if !v.HasFutureStock {
				v.HasFutureStock = true
				stats.FutureStockFlagged++
			}
		}
		if cfg.PreserveZeroStockItems && v.HasFutureStock {
			v.PreserveZeroStock = true
		}
	}
}

func applyRegularPrice(variants []*domain.Variant, cfg *domain.RegularPriceConfig, stats *domain.RuleStats) []*domain.Variant {
	if cfg == nil {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		if cfg.SkipZeroPrice && v.Price != nil && *v.Price == 0 {
			stats.ZeroPriceSkipped++
			continue
		}
		if cfg.Multiplier > 0 && cfg.Multiplier != 1 && v.Price != nil {
			scaled := *v.Price * cfg.Multiplier
			v.Price = &scaled
		}
		kept = append(kept, v)
	}
	return kept
}

func applyPriceBounds(variants []*domain.Variant, cfg *domain.PriceFloorCeiling, stats *domain.RuleStats) []*domain.Variant {
	if cfg == nil || (cfg.Floor == nil && cfg.Ceiling == nil) {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		if v.Price == nil {
			kept = append(kept, v)
			continue
		}
		price := *v.Price
		outside := (cfg.Floor != nil && price < *cfg.Floor) || (cfg.Ceiling != nil && price > *cfg.Ceiling)
		if !outside {
			kept = append(kept, v)
			continue
		}
		if cfg.DropOutside {
			stats.PriceDropped++
			continue
		}
		if cfg.Floor != nil && price < *cfg.Floor {
			price = *cfg.Floor
		}
		if cfg.Ceiling != nil && price > *cfg.Ceiling {
			price = *cfg.Ceiling
		}
		v.Price = &price
		stats.PriceClamped++
		kept = append(kept, v)
	}
	return kept
}

// applyColumnSalePricing computes finalPrice = salePrice x multiplier when
// the per-row sale-price column holds a value. Compare-at stamping is the
// pipeline's sale-pricing step.
func applyColumnSalePricing(variants []*domain.Variant, cfg *domain.SalePriceConfig, stats *domain.RuleStats) {
	if cfg == nil || cfg.SalePriceColumn == "" {
		return
	}
	multiplier := cfg.PriceMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	for _, v := range variants {
		if v.Raw == nil {
			continue
		}
		raw := strings.TrimSpace(v.Raw[cfg.SalePriceColumn])
		raw = strings.TrimPrefix(raw, "$")
		raw = strings.ReplaceAll(raw, ",", "")
		if raw == "" {
			continue
		}
		salePrice, err := parseFloat(raw)
		if err != nil || salePrice <= 0 {
			continue
		}
		final := salePrice * multiplier
		v.Price = &final
		stats.SalePricingApplied++
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func applyMinimumStock(variants []*domain.Variant, cfg *domain.MinimumStockConfig, stats *domain.RuleStats) []*domain.Variant {
	if cfg == nil || !cfg.Enabled {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		if v.Stock < cfg.Threshold && !v.PreserveZeroStock {
			stats.BelowMinimumStock++
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
