package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

var stepNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestApplySkipFilter(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1", ShouldSkip: true, Stock: 5},
		{Style: "2", SkipUnlessContinueSelling: true, Stock: 0},
		{Style: "3", SkipUnlessContinueSelling: true, Stock: 2},
		{Style: "4", SkipUnlessContinueSelling: true, Stock: 0, HasFutureStock: true},
		{Style: "5", Stock: 0},
	}

	out := applySkipFilter(variants)

	styles := make([]string, len(out))
	for i, v := range out {
		styles[i] = v.Style
	}
	assert.Equal(t, []string{"3", "4", "5"}, styles)
}

func TestDropDiscontinuedZeroStock(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1", Discontinued: true, Stock: 0},
		{Style: "2", Discontinued: true, Stock: 3},
		{Style: "3", Discontinued: true, Stock: 0, HasFutureStock: true},
		{Style: "4", Stock: 0},
	}

	stats := &domain.RuleStats{}
	out := dropDiscontinuedZeroStock(variants, stats)

	require.Len(t, out, 3)
	assert.Equal(t, "2", out[0].Style)
	assert.Equal(t, 1, stats.DiscontinuedFiltered)
}

func TestExpirePastShipDates(t *testing.T) {
	source := &domain.Source{
		StockInfo: &domain.StockInfoConfig{DateOffsetDays: 14},
	}
	variants := []*domain.Variant{
		{Style: "1", ShipDate: "2026-06-01", Stock: 0, HasFutureStock: true},
		{Style: "2", ShipDate: "2025-11-01", Stock: 0, HasFutureStock: true, PreserveZeroStock: true},
		{Style: "3", ShipDate: "2026-01-05", Stock: 0, HasFutureStock: true},
		{Style: "4", ShipDate: "garbage", Stock: 2},
	}

	expirePastShipDates(variants, source, stepNow)

	assert.Equal(t, "2026-06-01", variants[0].ShipDate)
	assert.True(t, variants[0].HasFutureStock)

	assert.Empty(t, variants[1].ShipDate)
	assert.False(t, variants[1].HasFutureStock)
	assert.False(t, variants[1].PreserveZeroStock)

	assert.Equal(t, "2026-01-05", variants[2].ShipDate, "the offset keeps near-past promises alive")
	assert.True(t, variants[2].HasFutureStock)

	assert.Empty(t, variants[3].ShipDate, "unparseable dates are cleared")
	assert.Equal(t, 2, variants[3].Stock)
}

func TestFilterZeroStock(t *testing.T) {
	source := &domain.Source{FilterZeroStock: true}
	variants := []*domain.Variant{
		{Style: "1", Stock: 0},
		{Style: "2", Stock: 1},
		{Style: "3", Stock: 0, HasFutureStock: true},
		{Style: "4", Stock: 0, PreserveZeroStock: true},
		{Style: "5", Stock: 0, ShipDate: "2026-06-01"},
	}

	out := filterZeroStock(variants, source, stepNow)

	styles := make([]string, len(out))
	for i, v := range out {
		styles[i] = v.Style
	}
	assert.Equal(t, []string{"2", "3", "4", "5"}, styles)
}

func TestFilterZeroStock_Disabled(t *testing.T) {
	variants := []*domain.Variant{{Style: "1", Stock: 0}}
	out := filterZeroStock(variants, &domain.Source{}, stepNow)
	assert.Len(t, out, 1)
}

type fakeColorCache struct {
	mappings map[string]string
	err      error
}

func (f *fakeColorCache) Mappings(_ context.Context) (map[string]string, error) {
	return f.mappings, f.err
}

func (f *fakeColorCache) Invalidate(_ context.Context) error { return nil }

func TestApplyColorMappings(t *testing.T) {
	cache := &fakeColorCache{mappings: map[string]string{
		"BLK": "Black",
		"NVY": "Navy",
	}}
	variants := []*domain.Variant{
		{Color: "blk"},
		{Color: "Red"},
		{Color: "Navy"},
	}

	stats := &domain.RuleStats{}
	applyColorMappings(context.Background(), cache, variants, stats)

	assert.Equal(t, "Black", variants[0].Color, "the lookup is case-insensitive")
	assert.Equal(t, "Red", variants[1].Color)
	assert.Equal(t, "Navy", variants[2].Color)
	assert.Equal(t, 1, stats.ColorsMapped)
}

func TestApplyColorMappings_CacheErrorDegradesToWarning(t *testing.T) {
	cache := &fakeColorCache{err: errors.New("redis down")}
	variants := []*domain.Variant{{Color: "BLK"}}

	stats := &domain.RuleStats{}
	applyColorMappings(context.Background(), cache, variants, stats)

	assert.Equal(t, "BLK", variants[0].Color)
	require.Len(t, stats.Warnings, 1)
}

type fakePriceCache struct {
	prices map[string]float64
}

func (f *fakePriceCache) Price(_ context.Context, _ string, sku string) (float64, bool) {
	p, ok := f.prices[sku]
	return p, ok
}

func (f *fakePriceCache) Prime(_ context.Context, _ string, _ []*domain.InventoryItem) error {
	return nil
}

func (f *fakePriceCache) Invalidate(_ context.Context, _ string) error { return nil }

func TestApplySalePricing(t *testing.T) {
	source := &domain.Source{
		ID:                 "sale-1",
		Role:               domain.SourceRoleSale,
		MarketplaceStoreID: "store-1",
		SalePrice: &domain.SalePriceConfig{
			PriceMultiplier:   0.5,
			UseCompareAtPrice: true,
		},
	}
	price := 400.0
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "4", Price: &price},
		{Style: "1002", Color: "Red", Size: "4"},
	}
	prices := &fakePriceCache{prices: map[string]float64{
		variants[0].SKU(): 450,
	}}

	stats := &domain.RuleStats{}
	applySalePricing(context.Background(), prices, source, variants, stats)

	assert.Equal(t, 200.0, *variants[0].Price)
	require.NotNil(t, variants[0].Cost)
	assert.Equal(t, 450.0, *variants[0].Cost, "the current marketplace price becomes compare-at")
	assert.Nil(t, variants[1].Price)
	assert.Nil(t, variants[1].Cost)
	assert.Equal(t, 1, stats.SalePricingApplied)
}

func TestApplySalePricing_RegularSourceUntouched(t *testing.T) {
	price := 400.0
	variants := []*domain.Variant{{Style: "1001", Price: &price}}
	source := &domain.Source{
		Role:      domain.SourceRoleRegular,
		SalePrice: &domain.SalePriceConfig{PriceMultiplier: 0.5},
	}

	applySalePricing(context.Background(), nil, source, variants, &domain.RuleStats{})
	assert.Equal(t, 400.0, *variants[0].Price)
}
