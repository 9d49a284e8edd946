// internal/formats/dates.go
package formats

import (
	"strconv"
	"strings"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// excelEpoch is the 1900 date system epoch. Serial 1 is 1900-01-01; the
// off-by-two accounts for Excel's phantom 1900 leap day.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	excelSerialMin = 40000
	excelSerialMax = 70000
)

// IsExcelSerialDate reports whether the cell looks like an Excel serial date
// (an integer in the plausible modern range).
func IsExcelSerialDate(cell string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return false
	}
	return n >= excelSerialMin && n <= excelSerialMax
}

// ExcelSerialToDate converts an Excel serial number to a calendar date.
func ExcelSerialToDate(serial int) time.Time {
	return excelEpoch.AddDate(0, 0, serial)
}

// ParseDate parses the date spellings feeds actually use: Excel serials,
// ISO, slash dates (order per source config, US when unset), and dotted or
// dashed European dates. Returns the zero time and false when nothing
// matches.
func ParseDate(raw string, order domain.DateOrder) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if IsExcelSerialDate(s) {
		n, _ := strconv.Atoi(s)
		return ExcelSerialToDate(n), true
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}

	if strings.Contains(s, "/") {
		return parseSlashDate(s, order)
	}

	// D.M.YYYY and D-M-YYYY are European by convention.
	for _, layout := range []string{"2.1.2006", "02.01.2006", "2-1-2006", "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseSlashDate(s string, order domain.DateOrder) (time.Time, bool) {
	layouts := []string{"1/2/2006", "01/02/2006", "1/2/06"}
	if order == domain.DateOrderEuropean {
		layouts = []string{"2/1/2006", "02/01/2006", "2/1/06"}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// A day > 12 in the first position is unambiguous regardless of config.
	if order != domain.DateOrderEuropean {
		for _, layout := range []string{"2/1/2006", "02/01/2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ToISODate renders a parsed date as the canonical ship-date string.
func ToISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseShipDate is ParseDate rendered straight to ISO, with "" for no match.
func ParseShipDate(raw string, order domain.DateOrder) string {
	if t, ok := ParseDate(raw, order); ok {
		return ToISODate(t)
	}
	return ""
}
