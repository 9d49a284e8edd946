// internal/rules/variantrules.go
package rules

import (
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// ExpandVariantSizes clones matching variants into the configured extra
// sizes. A clone is only added when the (style, color, size) identity does
// not already exist in the feed, so real data always beats expansion.
func ExpandVariantSizes(variants []*domain.Variant, rules []domain.VariantRule, stats *domain.RuleStats) []*domain.Variant {
	if len(rules) == 0 {
		return variants
	}

	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		seen[v.IdentityKey()] = true
	}

	out := variants
	for _, v := range variants {
		size := formats.NormalizeSizeToken(v.Size)
		for _, rule := range rules {
			if formats.NormalizeSizeToken(rule.Size) != size {
				continue
			}
			for _, target := range rule.ExpandToSize {
				clone := cloneForSize(v, target)
				key := clone.IdentityKey()
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, clone)
				stats.SizesExpanded++
			}
		}
	}
	return out
}

// cloneForSize copies a variant into a new size, flagged as expanded so the
// stock-info renderer and stats can tell it apart from fed data.
func cloneForSize(v *domain.Variant, size string) *domain.Variant {
	clone := *v
	clone.Size = size
	clone.IsExpandedSize = true
	clone.ExpandedFrom = v.Size
	if v.Raw != nil {
		raw := make(map[string]string, len(v.Raw))
		for k, val := range v.Raw {
			raw[k] = val
		}
		clone.Raw = raw
	}
	return &clone
}
