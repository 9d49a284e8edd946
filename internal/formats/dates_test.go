package formats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func TestParseDate_Spellings(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		order domain.DateOrder
		want  string
		ok    bool
	}{
		{name: "iso", raw: "2026-03-24", want: "2026-03-24", ok: true},
		{name: "us slash", raw: "3/24/2026", want: "2026-03-24", ok: true},
		{name: "us slash padded", raw: "03/24/2026", want: "2026-03-24", ok: true},
		{name: "european slash", raw: "24/03/2026", order: domain.DateOrderEuropean, want: "2026-03-24", ok: true},
		{name: "day over 12 disambiguates under us order", raw: "24/03/2026", want: "2026-03-24", ok: true},
		{name: "dotted european", raw: "24.3.2026", want: "2026-03-24", ok: true},
		{name: "dashed european", raw: "24-3-2026", want: "2026-03-24", ok: true},
		{name: "two digit year", raw: "3/24/26", want: "2026-03-24", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "garbage", raw: "soon", ok: false},
		{name: "whitespace only", raw: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw, tt.order)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, ToISODate(got))
			}
		})
	}
}

func TestParseDate_ExcelSerial(t *testing.T) {
	// Serial 45292 is 2024-01-01 in the 1900 date system.
	got, ok := ParseDate("45292", "")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", ToISODate(got))
}

func TestIsExcelSerialDate_Range(t *testing.T) {
	assert.True(t, IsExcelSerialDate("45292"))
	assert.True(t, IsExcelSerialDate(" 40000 "))
	assert.False(t, IsExcelSerialDate("39999"), "below the plausible range")
	assert.False(t, IsExcelSerialDate("70001"), "above the plausible range")
	assert.False(t, IsExcelSerialDate("45292.5"))
	assert.False(t, IsExcelSerialDate("style"))
}

func TestExcelSerialToDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ExcelSerialToDate(45292))
}

func TestParseShipDate(t *testing.T) {
	assert.Equal(t, "2026-03-24", ParseShipDate("24/03/2026", domain.DateOrderEuropean))
	assert.Equal(t, "", ParseShipDate("n/a", ""))
}
