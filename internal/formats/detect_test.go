package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_ByName(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		filename   string
		want       string
	}{
		{name: "jovani sale", sourceName: "Jovani Sale", filename: "stock.xlsx", want: FormatJovaniSale},
		{name: "tarik by source name", sourceName: "Tarik Ediz", filename: "inventory.xlsx", want: FormatTarikEdiz},
		{name: "ediz in filename", sourceName: "Evening Wear", filename: "EDIZ_stock.xlsx", want: FormatTarikEdiz},
		{name: "sherri hill", sourceName: "Sherri Hill", filename: "avail.xlsx", want: FormatSherriHill},
		{name: "feriani", sourceName: "Feriani Couture", filename: "feed.csv", want: FormatFeriani},
		{name: "gia franco", sourceName: "Gia Franco", filename: "inv.xlsx", want: FormatFeriani},
		{name: "grn invoice", sourceName: "GRN", filename: "invoice_march.xlsx", want: FormatGRNInvoice},
		{name: "no hint", sourceName: "Mystery Vendor", filename: "feed.csv", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.sourceName, tt.filename, nil))
		})
	}
}

func TestDetect_ByContent(t *testing.T) {
	grid := [][]string{
		{"Up-to-Date Product Inventory Report"},
		{},
	}
	assert.Equal(t, FormatTarikEdiz, Detect("Vendor", "feed.xlsx", grid))
}

func TestDetect_ByHeaders(t *testing.T) {
	tests := []struct {
		name string
		grid [][]string
		want string
	}{
		{
			name: "ots columns",
			grid: [][]string{{"style", "ots1", "ots2", "ots3"}},
			want: FormatOTS,
		},
		{
			name: "special date pairs",
			grid: [][]string{{"Style", "Color", "", "", "4", "Special Date", "6", "Special Date"}},
			want: FormatSherriHill,
		},
		{
			name: "pr serial date headers",
			grid: [][]string{{"Style", "Color", "45292", "45323", "45351"}},
			want: FormatPRDateHeaders,
		},
		{
			name: "generic pivot with size run",
			grid: [][]string{{"Style", "Color", "0", "2", "4", "6", "8", "10"}},
			want: FormatGenericPivot,
		},
		{
			name: "jovani sale shape, sizes from column one",
			grid: [][]string{{"Style", "00", "0", "2", "4", "6", "8"}},
			want: FormatJovaniSale,
		},
		{
			name: "grn invoice headers",
			grid: [][]string{{"code", "color", "00", "0", "2", "4"}},
			want: FormatGRNInvoice,
		},
		{
			name: "store multibrand",
			grid: [][]string{{"Vendor", "Style", "Color", "Size", "Qty"}},
			want: FormatStoreMultibrand,
		},
		{
			name: "feriani delivery headers",
			grid: [][]string{{"Style", "Color", "Delivery Date", "Qty"}},
			want: FormatFeriani,
		},
		{
			name: "plain row layout",
			grid: [][]string{{"sku", "style", "color", "size", "stock", "price"}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect("Vendor", "feed.csv", tt.grid))
		})
	}
}

func TestFindHeaderRow(t *testing.T) {
	grid := [][]string{
		{"Vendor Export 2026"},
		{""},
		{"Style", "Color", "Size", "Stock", "Price"},
		{"1001", "Red", "8", "3", "450"},
	}
	assert.Equal(t, 2, FindHeaderRow(grid))

	assert.Equal(t, -1, FindHeaderRow([][]string{{"alpha"}, {"beta"}}))
}
