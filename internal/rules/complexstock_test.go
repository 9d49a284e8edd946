package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func TestApplyImportRules_ComplexStock(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1", Size: "4", RawStockText: "3 available, more 06/15/2026"},
		{Style: "2", Size: "4", RawStockText: "DISC"},
		{Style: "3", Size: "4", RawStockText: "call for availability"},
		{Style: "4", Size: "4", RawStockText: "plain text"},
	}
	source := &domain.Source{
		ComplexStock: &domain.ComplexStockConfig{
			Enabled: true,
			Patterns: []domain.ComplexStockPattern{
				{
					Name:         "qty with restock",
					Pattern:      `^(\d+) available, more (\S+)$`,
					ExtractStock: "$1",
					ExtractDate:  "$2",
				},
				{
					Name:             "discontinued",
					Pattern:          `^disc$`,
					MarkDiscontinued: true,
				},
				{
					Name:             "special order",
					Pattern:          `call for availability`,
					MarkSpecialOrder: true,
				},
			},
		},
	}

	stats := &domain.RuleStats{}
	out := ApplyImportRules(variants, source, stats, ruleNow)
	require.Len(t, out, 4)

	assert.Equal(t, 3, out[0].Stock)
	assert.Equal(t, "2026-06-15", out[0].ShipDate)
	assert.True(t, out[1].Discontinued)
	assert.True(t, out[2].SpecialOrder)
	assert.Equal(t, 3, stats.ComplexStockMatched)
}

func TestApplyImportRules_ComplexStockBadPatternWarns(t *testing.T) {
	variants := []*domain.Variant{{Style: "1", Size: "4", RawStockText: "x"}}
	source := &domain.Source{
		ComplexStock: &domain.ComplexStockConfig{
			Enabled:  true,
			Patterns: []domain.ComplexStockPattern{{Name: "broken", Pattern: "(["}},
		},
	}

	stats := &domain.RuleStats{}
	ApplyImportRules(variants, source, stats, ruleNow)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "broken")
}
