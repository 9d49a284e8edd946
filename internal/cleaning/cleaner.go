// internal/cleaning/cleaner.go
package cleaning

import (
	"context"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// Cleaner normalizes style text, mandates size presence, normalizes color
// case, consults the advisor for unmapped abbreviation codes, and
// deduplicates by (style, color, size). The global color-mapping table is
// NOT consulted here; the pipeline runs that as its own authoritative pass.
type Cleaner struct {
	advisor ColorAdvisor
}

func NewCleaner(advisor ColorAdvisor) *Cleaner {
	if advisor == nil {
		advisor = NopAdvisor{}
	}
	return &Cleaner{advisor: advisor}
}

// Clean runs the full cleaning pass in place over a new slice. Suggested
// color mappings that clear the source's confidence gate are returned so
// the caller can persist them to the global table.
func (c *Cleaner) Clean(ctx context.Context, variants []*domain.Variant, source *domain.Source, stats *domain.RuleStats) ([]*domain.Variant, []ColorSuggestion) {
	var cleaningCfg *domain.CleaningConfig
	if source != nil {
		cleaningCfg = source.Cleaning
	}

	kept := make([]*domain.Variant, 0, len(variants))
	for _, v := range variants {
		v.Style = CleanStyle(v.Style, cleaningCfg)
		v.Color = NormalizeColor(v.Color)

		// Size "0" is valid; only null-ish sizes are culled.
		if strings.TrimSpace(v.Size) == "" {
			stats.NoSizeDropped++
			continue
		}
		kept = append(kept, v)
	}

	applied := c.applySuggestions(ctx, kept, source, stats)

	for _, v := range kept {
		v.Color = TitleCaseColor(v.Color)
	}

	return dedupe(kept, stats), applied
}

// applySuggestions gathers abbreviation-looking colors, asks the advisor in
// one batched call, and applies suggestions at or above the source's
// confidence threshold. Lower-confidence results are logged for review.
func (c *Cleaner) applySuggestions(ctx context.Context, variants []*domain.Variant, source *domain.Source, stats *domain.RuleStats) []ColorSuggestion {
	candidates := make(map[string]bool)
	for _, v := range variants {
		color := v.Color
		if color == "" || IsValidColorName(color) {
			continue
		}
		if IsKnownColorCode(color) || LooksLikeAbbreviation(color) {
			candidates[color] = true
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	codes := make([]string, 0, len(candidates))
	for code := range candidates {
		codes = append(codes, code)
	}

	suggestions, err := c.advisor.SuggestColors(ctx, codes)
	if err != nil {
		stats.Warn("color advisor unavailable: " + err.Error())
		return nil
	}

	threshold := 0.9
	if source != nil {
		threshold = source.ColorSuggestionThreshold()
	}

	accepted := make(map[string]string, len(suggestions))
	var applied []ColorSuggestion
	for _, s := range suggestions {
		if s.Confidence >= threshold && s.Good != "" {
			accepted[strings.ToUpper(s.Bad)] = s.Good
			applied = append(applied, s)
			continue
		}
		logger.Log.Info().
			Str("bad", s.Bad).
			Str("good", s.Good).
			Float64("confidence", s.Confidence).
			Msg("color suggestion below threshold, left for review")
	}

	for _, v := range variants {
		if good, ok := accepted[strings.ToUpper(v.Color)]; ok {
			v.Color = good
			stats.ColorsSuggested++
		}
	}
	return applied
}

// dedupe groups by (upper style, upper color, size), keeping the record with
// the highest stock and merging a sibling's ship-date when the winner has
// none.
func dedupe(variants []*domain.Variant, stats *domain.RuleStats) []*domain.Variant {
	best := make(map[string]*domain.Variant, len(variants))
	order := make([]string, 0, len(variants))

	for _, v := range variants {
		key := v.IdentityKey()
		winner, seen := best[key]
		if !seen {
			best[key] = v
			order = append(order, key)
			continue
		}
		stats.Deduped++
		if v.Stock > winner.Stock {
			if v.ShipDate == "" {
				v.ShipDate = winner.ShipDate
			}
			best[key] = v
		} else if winner.ShipDate == "" {
			winner.ShipDate = v.ShipDate
		}
	}

	result := make([]*domain.Variant, 0, len(best))
	for _, key := range order {
		result = append(result, best[key])
	}
	return result
}

// Dedupe is the pipeline's step-7 entry point: identity merge without any
// other cleaning.
func Dedupe(variants []*domain.Variant, stats *domain.RuleStats) []*domain.Variant {
	return dedupe(variants, stats)
}
