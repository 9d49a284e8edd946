package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func sherriSource() *domain.Source {
	return &domain.Source{
		Name: "Sherri Hill",
		StockTextMappings: map[string]int{
			"Yes":        3,
			"Last Piece": 1,
			"No":         0,
		},
	}
}

func TestParseSherriHill_PairedColumns(t *testing.T) {
	grid := [][]string{
		{"Style", "Color", "", "", "4", "Special Date", "6", "Special Date"},
		{"55001", "Ivory", "", "", "Yes", "", "Last Piece", "2026-07-15"},
		{"55002", "Red", "", "", "No", "", "", ""},
	}

	variants, err := parseSherriHill(grid, ParseConfig{Source: sherriSource(), Filename: "avail.xlsx"})
	require.NoError(t, err)
	require.Len(t, variants, 3)

	ivory4, ivory6, red4 := variants[0], variants[1], variants[2]

	assert.Equal(t, "55001", ivory4.Style)
	assert.Equal(t, "4", ivory4.Size)
	assert.Equal(t, 3, ivory4.Stock)
	assert.Empty(t, ivory4.ShipDate)

	assert.Equal(t, "6", ivory6.Size)
	assert.Equal(t, 1, ivory6.Stock, "text stock resolves through the mappings")
	assert.Equal(t, "2026-07-15", ivory6.ShipDate)
	assert.False(t, ivory6.HasFutureStock, "stock on hand wins over the paired date")

	assert.Equal(t, "55002", red4.Style)
	assert.Equal(t, 0, red4.Stock)
}

func TestParseSherriHill_NoSizePairs(t *testing.T) {
	grid := [][]string{
		{"Style", "Color"},
		{"55001", "Ivory"},
	}
	_, err := parseSherriHill(grid, ParseConfig{Source: sherriSource(), Filename: "avail.xlsx"})
	assert.Error(t, err)
}
