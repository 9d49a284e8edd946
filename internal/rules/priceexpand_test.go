package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

type mapPriceLookup map[string]float64

func (m mapPriceLookup) Price(_ context.Context, _, sku string) (float64, bool) {
	price, ok := m[sku]
	return price, ok
}

func expansionSource() *domain.Source {
	return &domain.Source{
		ID: "src-1",
		PriceExpansion: &domain.PriceExpansionConfig{
			Enabled: true,
			Tiers: []domain.ExpansionTier{
				{MinPrice: 500, ExpandDown: 2, ExpandUp: 2},
				{MinPrice: 0, MaxPrice: fptr(499.99), ExpandDown: 1, ExpandUp: 1},
			},
			DefaultExpandDown: 0,
			DefaultExpandUp:   0,
		},
	}
}

func sizesOf(variants []*domain.Variant) []string {
	sizes := make([]string, len(variants))
	for i, v := range variants {
		sizes[i] = v.Size
	}
	return sizes
}

func TestApplyPriceExpansion_TierWidths(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "LUX", Color: "Red", Size: "8", Stock: 1, Price: fptr(800)},
		{Style: "BUDGET", Color: "Red", Size: "8", Stock: 1, Price: fptr(200)},
	}

	stats := &domain.RuleStats{}
	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, stats)

	require.Len(t, out, 8)
	assert.Equal(t, 6, stats.PriceExpanded)

	var lux, budget []string
	for _, v := range out {
		if v.Style == "LUX" {
			lux = append(lux, v.Size)
		} else {
			budget = append(budget, v.Size)
		}
	}
	assert.ElementsMatch(t, []string{"8", "6", "4", "10", "12"}, lux)
	assert.ElementsMatch(t, []string{"8", "6", "10"}, budget)
}

func TestApplyPriceExpansion_FedSizesWin(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "8", Stock: 1, Price: fptr(200)},
		{Style: "1001", Color: "Red", Size: "10", Stock: 4, Price: fptr(200)},
	}

	stats := &domain.RuleStats{}
	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, stats)

	counts := map[string]int{}
	for _, v := range out {
		counts[v.Size]++
	}
	assert.Equal(t, 1, counts["10"], "a fed size is never duplicated by expansion")
	for _, v := range out {
		if v.Size == "10" {
			assert.Equal(t, 4, v.Stock)
		}
	}
}

func TestApplyPriceExpansion_LookupFallback(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "8", Stock: 1},
	}
	lookup := mapPriceLookup{variants[0].SKU(): 700}

	stats := &domain.RuleStats{}
	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), lookup, stats)

	assert.Len(t, out, 5, "cached price picks the wide tier")
}

func TestApplyPriceExpansion_NoPriceNoExpansion(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "8", Stock: 1},
	}

	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, &domain.RuleStats{})
	assert.Len(t, out, 1)
}

func TestApplyPriceExpansion_SkipsExpandedAndLetterSizes(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1", Color: "Red", Size: "8", Stock: 1, Price: fptr(800), IsExpandedSize: true},
		{Style: "2", Color: "Red", Size: "M", Stock: 1, Price: fptr(800)},
	}

	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, &domain.RuleStats{})
	assert.Len(t, out, 2)
}

func TestApplyPriceExpansion_WLadderStaysW(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "18W", Stock: 1, Price: fptr(200)},
	}

	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, &domain.RuleStats{})
	assert.ElementsMatch(t, []string{"18W", "16W", "20W"}, sizesOf(out))
}

func TestApplyPriceExpansion_LadderEndStopsWalk(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "000", Stock: 1, Price: fptr(800)},
	}

	out := ApplyPriceExpansion(context.Background(), variants, expansionSource(), nil, &domain.RuleStats{})
	assert.ElementsMatch(t, []string{"000", "00", "0"}, sizesOf(out),
		"nothing below 000; the upward walk still runs")
}

func TestApplyPriceExpansion_Disabled(t *testing.T) {
	variants := []*domain.Variant{{Style: "1001", Size: "8", Price: fptr(800)}}
	source := &domain.Source{ID: "src-1"}

	out := ApplyPriceExpansion(context.Background(), variants, source, nil, &domain.RuleStats{})
	assert.Equal(t, variants, out)
}
