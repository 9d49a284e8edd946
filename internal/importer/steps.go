// internal/importer/steps.go
package importer

import (
	"context"
	"strings"
	"time"

	"github.com/stylefeed/inventory-importer/internal/cache"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// applySkipFilter drops variants a parser flagged for skipping. A variant
// marked skip-unless-continue-selling survives only when it still has
// sellable signal (stock, future stock, or preserved zero stock).
func applySkipFilter(variants []*domain.Variant) []*domain.Variant {
	kept := variants[:0]
	for _, v := range variants {
		if v.ShouldSkip {
			continue
		}
		if v.SkipUnlessContinueSelling && v.Stock == 0 && !v.HasFutureStock && !v.PreserveZeroStock {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// dropDiscontinuedZeroStock removes discontinued variants that carry no
// stock, unless future stock is promised.
func dropDiscontinuedZeroStock(variants []*domain.Variant, stats *domain.RuleStats) []*domain.Variant {
	kept := variants[:0]
	for _, v := range variants {
		if v.Discontinued && v.Stock == 0 && !v.HasFutureStock {
			stats.DiscontinuedFiltered++
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// expirePastShipDates zeroes promised stock whose ship-date plus the display
// offset has already passed: the shipment either arrived and will show in
// the vendor's next on-hand figures, or it never will.
func expirePastShipDates(variants []*domain.Variant, source *domain.Source, now time.Time) {
	offset := 0
	if source.StockInfo != nil {
		offset = source.StockInfo.DateOffsetDays
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, v := range variants {
		if v.ShipDate == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", v.ShipDate)
		if err != nil {
			v.ShipDate = ""
			continue
		}
		if d.AddDate(0, 0, offset).After(today) {
			continue
		}
		if v.HasFutureStock {
			v.Stock = 0
			v.HasFutureStock = false
			v.PreserveZeroStock = false
		}
		v.ShipDate = ""
	}
}

// applyColorMappings is the step-11 authoritative pass of the global
// bad-to-good color table. It runs after the rule engine so corrections
// catch values the rules produced. Cache trouble degrades to no-op.
func applyColorMappings(ctx context.Context, colors cache.ColorMapCache, variants []*domain.Variant, stats *domain.RuleStats) {
	if colors == nil {
		return
	}
	mappings, err := colors.Mappings(ctx)
	if err != nil {
		stats.Warn("color mappings unavailable: " + err.Error())
		logger.Log.Warn().Err(err).Msg("color mapping pass skipped")
		return
	}
	if len(mappings) == 0 {
		return
	}
	for _, v := range variants {
		if good, ok := mappings[upperTrim(v.Color)]; ok && good != "" && good != v.Color {
			v.Color = good
			stats.ColorsMapped++
		}
	}
}

// filterZeroStock is the optional whole-source zero-stock cull.
func filterZeroStock(variants []*domain.Variant, source *domain.Source, now time.Time) []*domain.Variant {
	if !source.FilterZeroStock {
		return variants
	}
	kept := variants[:0]
	for _, v := range variants {
		if v.Stock == 0 && !v.HasFutureStock && !v.PreserveZeroStock && !v.HasValidFutureShipDate(now) {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// applySalePricing multiplies a sale feed's prices and stamps the current
// marketplace price into cost to serve as compare-at.
func applySalePricing(ctx context.Context, prices cache.PriceCache, source *domain.Source, variants []*domain.Variant, stats *domain.RuleStats) {
	if source.Role != domain.SourceRoleSale || source.SalePrice == nil {
		return
	}
	cfg := source.SalePrice

	if cfg.PriceMultiplier > 0 && cfg.PriceMultiplier != 1 {
		for _, v := range variants {
			if v.Price == nil {
				continue
			}
			scaled := *v.Price * cfg.PriceMultiplier
			v.Price = &scaled
			stats.SalePricingApplied++
		}
	}

	if !cfg.UseCompareAtPrice || prices == nil {
		return
	}
	priceSourceID := source.MarketplaceStoreID
	if priceSourceID == "" {
		priceSourceID = source.ID
	}
	for _, v := range variants {
		if current, ok := prices.Price(ctx, priceSourceID, v.SKU()); ok {
			compareAt := current
			v.Cost = &compareAt
		}
	}
}

func upperTrim(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
