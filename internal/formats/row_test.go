package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func TestParseRow_AutoMapping(t *testing.T) {
	grid := [][]string{
		{"Style", "Color", "Size", "Qty", "Price", "Ship Date"},
		{"1001", "Red", "08", "3", "$1,250.00", "3/24/2026"},
		{"", "", "", "", "", ""},
		{"1002", "Navy", "M", "0", "", ""},
	}

	variants, err := parseRow(grid, ParseConfig{Filename: "feed.csv"})
	require.NoError(t, err)
	require.Len(t, variants, 2)

	first := variants[0]
	assert.Equal(t, "1001", first.Style)
	assert.Equal(t, "Red", first.Color)
	assert.Equal(t, "8", first.Size, "leading-zero sizes normalize")
	assert.Equal(t, 3, first.Stock)
	require.NotNil(t, first.Price)
	assert.Equal(t, 1250.0, *first.Price)
	assert.Equal(t, "2026-03-24", first.ShipDate)
	assert.Equal(t, "Red", first.Raw["Color"], "raw row kept for spot checks")

	second := variants[1]
	assert.Equal(t, "M", second.Size)
	assert.Nil(t, second.Price)
}

func TestParseRow_ExplicitMappingMissIsAMiss(t *testing.T) {
	grid := [][]string{
		{"Item", "Colour", "Size", "Stock"},
		{"2001", "Jade", "4", "2"},
	}
	source := &domain.Source{
		ColumnMapping: map[string]string{"style": "Item", "price": "Retail"},
	}

	variants, err := parseRow(grid, ParseConfig{Source: source})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "2001", variants[0].Style)
	assert.Nil(t, variants[0].Price, "a mapped column that is absent never falls back")
}

func TestParseRow_CombinedVariantColumn(t *testing.T) {
	grid := [][]string{
		{"SKU", "Stock"},
		{"1001-Red-8", "5"},
	}
	source := &domain.Source{
		Cleaning: &domain.CleaningConfig{
			CombinedVariantColumn: "SKU",
			CombinedVariantOrder:  "style,color,size",
		},
	}

	variants, err := parseRow(grid, ParseConfig{Source: source})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "1001", variants[0].Style)
	assert.Equal(t, "Red", variants[0].Color)
	assert.Equal(t, "8", variants[0].Size)
	assert.Equal(t, 5, variants[0].Stock)
}

func TestParseRow_YesNoStock(t *testing.T) {
	grid := [][]string{
		{"Style", "Size", "Stock"},
		{"3001", "4", "In Stock"},
		{"3002", "6", "Sold Out"},
	}
	source := &domain.Source{
		Cleaning: &domain.CleaningConfig{
			ConvertYesNo: true,
			YesValue:     "In Stock",
			NoValue:      "Sold Out",
		},
	}

	variants, err := parseRow(grid, ParseConfig{Source: source})
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, 1, variants[0].Stock)
	assert.Equal(t, 0, variants[1].Stock)
}

func TestParseRow_ConditionalShipDate(t *testing.T) {
	grid := [][]string{
		{"Style", "Size", "Stock", "Status", "Restock"},
		{"4001", "8", "0", "Backorder", "2026-05-01"},
		{"4002", "8", "2", "Active", "2026-05-01"},
	}
	source := &domain.Source{
		ConditionalShipDate: &domain.ConditionalShipDateRule{
			IfColumn:    "Status",
			EqualsValue: "Backorder",
			DateColumn:  "Restock",
		},
	}

	variants, err := parseRow(grid, ParseConfig{Source: source})
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "2026-05-01", variants[0].ShipDate)
	assert.Empty(t, variants[1].ShipDate)
}

func TestParseRow_NoUsableColumns(t *testing.T) {
	grid := [][]string{
		{"Description", "Notes", "Qty"},
		{"a gown", "", "1"},
	}
	_, err := parseRow(grid, ParseConfig{Filename: "feed.csv"})
	assert.Error(t, err)
}
