// internal/rules/sizelimit.go
package rules

import (
	"regexp"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// compiledOverride pairs a prefix-override regex with its bounds.
type compiledOverride struct {
	re     *regexp.Regexp
	bounds domain.SizeLimitBounds
}

// ApplySizeLimits drops variants whose size falls outside the configured
// range. Prefix overrides are matched against the style in order, first hit
// wins; styles with no matching override use the base bounds. Sizes that sit
// on neither ladder pass through untouched.
func ApplySizeLimits(variants []*domain.Variant, cfg *domain.SizeLimitConfig, stats *domain.RuleStats) []*domain.Variant {
	if cfg == nil || !cfg.Enabled {
		return variants
	}

	overrides := make([]compiledOverride, 0, len(cfg.PrefixOverrides))
	for _, o := range cfg.PrefixOverrides {
		re, err := regexp.Compile("(?i)" + o.Pattern)
		if err != nil {
			stats.Warn("size limit override pattern does not compile: " + err.Error())
			continue
		}
		overrides = append(overrides, compiledOverride{re: re, bounds: o.Bounds})
	}

	kept := variants[:0]
	for _, v := range variants {
		bounds := cfg.Bounds
		for _, o := range overrides {
			if o.re.MatchString(v.Style) {
				bounds = o.bounds
				break
			}
		}
		if sizeWithinBounds(v.Size, bounds) {
			kept = append(kept, v)
			continue
		}
		stats.SizeLimited++
	}
	return kept
}

func sizeWithinBounds(size string, bounds domain.SizeLimitBounds) bool {
	if value, ok := formats.NumericSizeValue(size); ok {
		if bounds.MinNumeric != nil && value < *bounds.MinNumeric {
			return false
		}
		if bounds.MaxNumeric != nil && value > *bounds.MaxNumeric {
			return false
		}
		return true
	}
	if idx, ok := formats.LetterSizeIndex(size); ok {
		if bounds.MinLetter != nil {
			if min, okMin := formats.LetterSizeIndex(*bounds.MinLetter); okMin && idx < min {
				return false
			}
		}
		if bounds.MaxLetter != nil {
			if max, okMax := formats.LetterSizeIndex(*bounds.MaxLetter); okMax && idx > max {
				return false
			}
		}
		return true
	}
	// Free-form sizes ("ONE SIZE", vendor oddities) are never range-limited.
	return true
}
