// internal/rules/priceexpand.go
package rules

import (
	"context"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// PriceLookup resolves a last-known price for variants whose feed carries no
// price column. The redis-backed cache implements this; tests use a map.
type PriceLookup interface {
	Price(ctx context.Context, sourceID, sku string) (float64, bool)
}

// ApplyPriceExpansion widens each variant's size run based on its price
// tier. Expensive gowns get a wider ladder than budget styles. Variants
// produced by rule-based expansion are not expanded again, and a generated
// size never overwrites one the feed actually carried.
func ApplyPriceExpansion(ctx context.Context, variants []*domain.Variant, source *domain.Source, lookup PriceLookup, stats *domain.RuleStats) []*domain.Variant {
	cfg := source.PriceExpansion
	if cfg == nil || !cfg.Enabled {
		return variants
	}

	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		seen[v.IdentityKey()] = true
	}

	out := variants
	for _, v := range variants {
		if v.IsExpandedSize {
			continue
		}
		if !formats.IsNumericSize(v.Size) {
			continue
		}

		price, ok := resolvePrice(ctx, v, source.ID, lookup)
		if !ok {
			continue
		}
		down, up := tierFor(cfg, price)

		for delta := 1; delta <= down; delta++ {
			if !addStepped(v, -delta, seen, &out, stats) {
				break
			}
		}
		for delta := 1; delta <= up; delta++ {
			if !addStepped(v, delta, seen, &out, stats) {
				break
			}
		}
	}
	return out
}

func resolvePrice(ctx context.Context, v *domain.Variant, sourceID string, lookup PriceLookup) (float64, bool) {
	if v.Price != nil && *v.Price > 0 {
		return *v.Price, true
	}
	if lookup == nil {
		return 0, false
	}
	return lookup.Price(ctx, sourceID, v.SKU())
}

// tierFor picks the first tier whose range contains the price; the config
// defaults apply when no tier matches.
func tierFor(cfg *domain.PriceExpansionConfig, price float64) (down, up int) {
	for _, tier := range cfg.Tiers {
		if price < tier.MinPrice {
			continue
		}
		if tier.MaxPrice != nil && price > *tier.MaxPrice {
			continue
		}
		return tier.ExpandDown, tier.ExpandUp
	}
	return cfg.DefaultExpandDown, cfg.DefaultExpandUp
}

// addStepped appends one stepped clone; false means the ladder ran out in
// that direction so the caller stops walking it.
func addStepped(v *domain.Variant, delta int, seen map[string]bool, out *[]*domain.Variant, stats *domain.RuleStats) bool {
	size, ok := formats.StepSize(v.Size, delta)
	if !ok {
		return false
	}
	clone := cloneForSize(v, size)
	key := clone.IdentityKey()
	if seen[key] {
		return true
	}
	seen[key] = true
	*out = append(*out, clone)
	stats.PriceExpanded++
	return true
}
