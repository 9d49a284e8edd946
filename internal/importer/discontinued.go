// internal/importer/discontinued.go
package importer

import (
	"context"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/repository"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// registerSaleStyles records a sale feed's style set in the registry: the
// run's styles become active, everything else for this sale source flips
// inactive.
func registerSaleStyles(ctx context.Context, registry repository.RegistryRepository, source *domain.Source, variants []*domain.Variant) error {
	if source.Role != domain.SourceRoleSale {
		return nil
	}
	seen := make(map[string]bool)
	var styles []string
	for _, v := range variants {
		style := strings.ToUpper(strings.TrimSpace(v.Style))
		if style == "" || seen[style] {
			continue
		}
		seen[style] = true
		styles = append(styles, style)
	}
	return registry.Sync(ctx, source.ID, styles)
}

// excludeSaleOwnedStyles drops incoming variants whose style the linked sale
// source actively carries, and removes any already-persisted rows for those
// styles. Sale inventory supersedes regular inventory per style.
func excludeSaleOwnedStyles(ctx context.Context, registry repository.RegistryRepository, inventory repository.InventoryRepository, source *domain.Source, variants []*domain.Variant, stats *domain.RuleStats) ([]*domain.Variant, error) {
	if source.Role != domain.SourceRoleRegular || source.LinkedSaleSourceID == "" {
		return variants, nil
	}

	active, err := registry.ActiveStyles(ctx, source.LinkedSaleSourceID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return variants, nil
	}
	owned := make(map[string]bool, len(active))
	for _, style := range active {
		owned[strings.ToUpper(style)] = true
	}

	kept := variants[:0]
	var excluded []string
	excludedSeen := make(map[string]bool)
	for _, v := range variants {
		style := strings.ToUpper(strings.TrimSpace(v.Style))
		if owned[style] {
			stats.SaleStylesExcluded++
			if !excludedSeen[style] {
				excludedSeen[style] = true
				excluded = append(excluded, style)
			}
			continue
		}
		kept = append(kept, v)
	}

	if len(excluded) > 0 {
		removed, err := inventory.DeleteStyles(ctx, source.ID, excluded)
		if err != nil {
			return nil, err
		}
		logger.Log.Info().
			Str("source_id", source.ID).
			Int("styles", len(excluded)).
			Int("rows_removed", removed).
			Msg("sale-owned styles excluded from regular feed")
	}
	return kept, nil
}
