// internal/formats/detect.go
package formats

import (
	"regexp"
	"strings"
)

// Known layout identifiers. FormatRow is the generic column-map reader every
// undetected feed falls back to.
const (
	FormatRow             = "row"
	FormatTarikEdiz       = "tarik_ediz"
	FormatJovaniSale      = "jovani_sale"
	FormatSherriHill      = "sherri_hill"
	FormatFeriani         = "feriani"
	FormatGenericPivot    = "generic_pivot"
	FormatOTS             = "ots_format"
	FormatPRDateHeaders   = "pr_date_headers"
	FormatGRNInvoice      = "grn_invoice"
	FormatStoreMultibrand = "store_multibrand"
)

var (
	otsHeaderRe       = regexp.MustCompile(`^ots\d+$`)
	prDateHeaderRe    = regexp.MustCompile(`^4\d{4}$`)
	headerKeywordRe   = regexp.MustCompile(`(?i)sku|code|id|name|title|desc|style|color|colour|size|stock|qty|price|cost|msrp`)
	grnSizeHeaderSet  = buildGRNSizeSet()
	multibrandVendor  = regexp.MustCompile(`(?i)vendor|brand|designer`)
	multibrandStyle   = regexp.MustCompile(`(?i)style|item|product`)
	genericStyleRe    = regexp.MustCompile(`(?i)style|code|item`)
	genericColorRe    = regexp.MustCompile(`(?i)colou?r`)
	genericColorCode  = regexp.MustCompile(`(?i)code`)
	genericDateRe     = regexp.MustCompile(`(?i)date|delivery|ship|avail`)
	genericDiscontRe  = regexp.MustCompile(`(?i)discontinu|status`)
)

func buildGRNSizeSet() map[string]bool {
	set := map[string]bool{"000": true, "00": true}
	for _, s := range []string{"0", "2", "4", "6", "8", "10", "12", "14", "16", "18", "20", "22", "24"} {
		set[s] = true
		if len(s) == 1 {
			set["0"+s] = true
		}
	}
	return set
}

// Detect picks a layout from the source name, filename, and the first rows
// of the grid. Returns "" when nothing matches; callers fall back to the row
// parser. Detection order is name hints, then row-0 content, then header
// shape.
func Detect(sourceName, filename string, grid [][]string) string {
	if format := detectByName(sourceName, filename); format != "" {
		return format
	}
	if len(grid) == 0 {
		return ""
	}
	if format := detectByContent(grid); format != "" {
		return format
	}
	return detectByHeaders(grid)
}

func detectByName(sourceName, filename string) string {
	hint := strings.ToUpper(sourceName + " " + filename)
	switch {
	case strings.Contains(hint, "JOVANI") && strings.Contains(hint, "SALE"):
		return FormatJovaniSale
	case strings.Contains(hint, "GIA") && (strings.Contains(hint, "FRANCO") || strings.Contains(hint, "INV")):
		return FormatFeriani
	case strings.Contains(hint, "FERIANI"):
		return FormatFeriani
	case strings.Contains(hint, "TARIK") || strings.Contains(hint, "EDIZ"):
		return FormatTarikEdiz
	case strings.Contains(hint, "SHERRI") && strings.Contains(hint, "HILL"):
		return FormatSherriHill
	case strings.Contains(hint, "GRN") && strings.Contains(hint, "INVOICE"):
		return FormatGRNInvoice
	}
	return ""
}

func detectByContent(grid [][]string) string {
	first := strings.ToLower(strings.TrimSpace(cellAt(grid, 0, 0)))
	if strings.Contains(first, "up-to-date") || strings.Contains(first, "inventory report") {
		return FormatTarikEdiz
	}
	return ""
}

func detectByHeaders(grid [][]string) string {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return ""
	}
	headers := grid[headerIdx]

	sizeCount := 0
	firstSizeCol := -1
	hasDelivery, hasStyle, hasColor := false, false, false
	hasVendor, hasSize := false, false
	prDateCount := 0
	grnCode, grnColor, grnSizes := false, false, 0

	for i, raw := range headers {
		h := strings.TrimSpace(raw)
		if h == "" {
			continue
		}
		lower := strings.ToLower(h)
		upper := strings.ToUpper(h)

		if otsHeaderRe.MatchString(lower) {
			return FormatOTS
		}
		if strings.Contains(upper, "SPECIAL DATE") {
			return FormatSherriHill
		}
		if prDateHeaderRe.MatchString(h) {
			prDateCount++
		}
		if IsSizeToken(h) {
			sizeCount++
			if firstSizeCol < 0 {
				firstSizeCol = i
			}
		}
		if grnSizeHeaderSet[NormalizeSizeToken(h)] {
			grnSizes++
		}
		if strings.Contains(upper, "DELIVERY") {
			hasDelivery = true
		}
		if genericStyleRe.MatchString(h) {
			hasStyle = true
		}
		if genericColorRe.MatchString(h) {
			hasColor = true
		}
		if lower == "code" {
			grnCode = true
		}
		if lower == "color" || lower == "colour" {
			grnColor = true
		}
		if multibrandVendor.MatchString(h) {
			hasVendor = true
		}
		if lower == "size" {
			hasSize = true
		}
	}

	switch {
	case hasDelivery && hasStyle && hasColor:
		return FormatFeriani
	case prDateCount >= 3:
		return FormatPRDateHeaders
	case grnCode && grnColor && grnSizes >= 3:
		return FormatGRNInvoice
	case sizeCount >= 5:
		if firstSizeCol == 1 {
			return FormatJovaniSale
		}
		return FormatGenericPivot
	case hasVendor && hasStyle && hasColor && hasSize:
		return FormatStoreMultibrand
	}
	return ""
}

// FindHeaderRow scans rows 0-9 for the row with the most keyword matches
// against the header vocabulary. Returns -1 when no row matches at all.
func FindHeaderRow(grid [][]string) int {
	bestIdx, bestScore := -1, 0
	limit := len(grid)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		score := 0
		for _, cell := range grid[i] {
			c := strings.TrimSpace(cell)
			if c == "" {
				continue
			}
			if headerKeywordRe.MatchString(c) || IsSizeToken(c) || otsHeaderRe.MatchString(strings.ToLower(c)) || prDateHeaderRe.MatchString(c) {
				score++
			}
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

func cellAt(grid [][]string, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	if col < 0 || col >= len(grid[row]) {
		return ""
	}
	return grid[row][col]
}
