package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// tarikRow builds a sparse row wide enough for the fixed column layout.
func tarikRow(first, name, color string, sizeCells ...string) []string {
	row := make([]string, tarikSizeCol+len(sizeCells))
	row[0] = first
	row[tarikNameCol] = name
	row[tarikColorCol] = color
	copy(row[tarikSizeCol:], sizeCells)
	return row
}

func TestParseTarikEdiz_StateMachine(t *testing.T) {
	grid := [][]string{
		{"Up-to-Date Product Inventory Report"},
		{},
		{},
		{},
		{},
		tarikRow("10001", "Gown Name", "", "2", "4", "6", "8", "10", "12", "14", "16", "18"),
		tarikRow("D", "", "Purple", "0", "2", "1", "0", "0", "0", "0", "0", "0"),
		tarikRow("24/03/2026", "", "Navy", "0", "0", "1", "0", "0", "0", "0", "0", "0"),
	}

	variants, err := parseTarikEdiz(grid, ParseConfig{Filename: "inventory.xlsx"})
	require.NoError(t, err)
	require.Len(t, variants, 3, "zero-stock cells are placeholders, not data")

	purple4, purple6, navy6 := variants[0], variants[1], variants[2]

	assert.Equal(t, "10001", purple4.Style)
	assert.Equal(t, "Purple", purple4.Color)
	assert.Equal(t, "4", purple4.Size)
	assert.Equal(t, 2, purple4.Stock)
	assert.True(t, purple4.Discontinued)
	assert.Empty(t, purple4.ShipDate)

	assert.Equal(t, "6", purple6.Size)
	assert.Equal(t, 1, purple6.Stock)

	assert.Equal(t, "Navy", navy6.Color)
	assert.Equal(t, "6", navy6.Size)
	assert.Equal(t, 1, navy6.Stock)
	assert.False(t, navy6.Discontinued)
	assert.Equal(t, "2026-03-24", navy6.ShipDate, "column-0 dates are European")
}

func TestParseTarikEdiz_MisalignedStyleInColorColumn(t *testing.T) {
	grid := [][]string{
		tarikRow("10001", "Gown Name", "", "2", "4", "6"),
		tarikRow("", "", "10002", "9", "9", "9"),
		tarikRow("D", "", "Red", "0", "3", "0"),
	}

	variants, err := parseTarikEdiz(grid, ParseConfig{})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "10002", variants[0].Style, "numeric color cell is the next style")
	assert.Equal(t, "Red", variants[0].Color)
	assert.Equal(t, "4", variants[0].Size)
	assert.Equal(t, 3, variants[0].Stock)
}

func TestParseTarikEdiz_IgnoresNonDataRows(t *testing.T) {
	grid := [][]string{
		tarikRow("10001", "Gown Name", "", "2", "4"),
		tarikRow("subtotal", "", "Blue", "1", "1"),
	}

	variants, err := parseTarikEdiz(grid, ParseConfig{})
	require.NoError(t, err)
	assert.Empty(t, variants, "rows that are neither D nor dated are skipped")
}

func TestParseTarikEdiz_ExcelSerialShipDate(t *testing.T) {
	grid := [][]string{
		tarikRow("10001", "Gown Name", "", "2", "4"),
		tarikRow("45292", "", "Gold", "0", "2"),
	}

	variants, err := parseTarikEdiz(grid, ParseConfig{Source: &domain.Source{Name: "Tarik Ediz"}})
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "2024-01-01", variants[0].ShipDate)
}
