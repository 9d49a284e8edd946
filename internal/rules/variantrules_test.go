package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func TestExpandVariantSizes(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "16", Stock: 2, ShipDate: "2026-05-01"},
		{Style: "1001", Color: "Red", Size: "18", Stock: 5},
	}
	rules := []domain.VariantRule{
		{Size: "16", ExpandToSize: []string{"16W", "18"}},
	}

	stats := &domain.RuleStats{}
	out := ExpandVariantSizes(variants, rules, stats)

	require.Len(t, out, 3, "existing 18 is never overwritten")
	assert.Equal(t, 1, stats.SizesExpanded)

	clone := out[2]
	assert.Equal(t, "16W", clone.Size)
	assert.True(t, clone.IsExpandedSize)
	assert.Equal(t, "16", clone.ExpandedFrom)
	assert.Equal(t, 2, clone.Stock, "clones carry the origin's stock")
	assert.Equal(t, "2026-05-01", clone.ShipDate)
}

func TestExpandVariantSizes_NormalizedMatch(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "04", Stock: 1},
	}
	rules := []domain.VariantRule{
		{Size: "4", ExpandToSize: []string{"6"}},
	}

	stats := &domain.RuleStats{}
	out := ExpandVariantSizes(variants, rules, stats)

	require.Len(t, out, 2, "rule sizes match after normalization")
	assert.Equal(t, "6", out[1].Size)
}

func TestExpandVariantSizes_NoRules(t *testing.T) {
	variants := []*domain.Variant{{Style: "1001", Size: "4"}}
	out := ExpandVariantSizes(variants, nil, &domain.RuleStats{})
	assert.Equal(t, variants, out)
}

func TestCloneForSize_CopiesRawMap(t *testing.T) {
	v := &domain.Variant{Style: "1001", Size: "4", Raw: map[string]string{"Qty": "2"}}
	clone := cloneForSize(v, "6")

	clone.Raw["Qty"] = "9"
	assert.Equal(t, "2", v.Raw["Qty"], "clones never share the raw map")
}
