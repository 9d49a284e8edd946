// internal/formats/tarikediz.go
package formats

import (
	"regexp"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// tarik_ediz layout: a two-state row machine. A style-header row carries the
// style in column 0, the product name in column 7, and numeric size tokens
// from column 13 onward. Data rows carry either the literal "D"
// (discontinued) or a ship date in column 0, the color in column 11, and
// per-size stock from column 13.
const (
	tarikNameCol  = 7
	tarikColorCol = 11
	tarikSizeCol  = 13
)

var pureNumberRe = regexp.MustCompile(`^\d+$`)

type tarikState int

const (
	tarikWantStyle tarikState = iota
	tarikWantData
)

func parseTarikEdiz(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	var variants []*domain.Variant
	var currentStyle string
	var sizes []string
	state := tarikWantStyle

	for r := 0; r < len(grid); r++ {
		row := grid[r]
		if rowIsEmpty(row) {
			continue
		}
		first := strings.TrimSpace(cellAt(grid, r, 0))

		if isTarikStyleRow(grid, r) {
			currentStyle = first
			sizes = detectTarikSizes(row)
			state = tarikWantData
			continue
		}

		if state != tarikWantData || currentStyle == "" {
			continue
		}

		color := strings.TrimSpace(cellAt(grid, r, tarikColorCol))

		// A style can land misaligned in the color column: a purely
		// numeric "color" with an empty column 0 is the next style.
		if first == "" && pureNumberRe.MatchString(color) {
			currentStyle = color
			continue
		}

		discontinued := strings.EqualFold(first, "D")
		shipDate := ""
		if !discontinued {
			shipDate = tarikShipDate(first, cfg)
			if shipDate == "" {
				continue // neither D nor a date: not a data row
			}
		}
		if color == "" {
			continue
		}

		for i, size := range sizes {
			if size == "" {
				continue
			}
			raw := cellAt(grid, r, tarikSizeCol+i)
			stock, ok := ParseStock(raw, cfg.stockMappings())
			if !ok || stock == 0 {
				// This layout writes a 0 in every size it has ever
				// carried; only cells with stock on hand are real.
				continue
			}
			v := newVariant(currentStyle, color, size, stock, raw)
			v.Discontinued = discontinued
			v.ShipDate = shipDate
			variants = append(variants, v)
		}
	}

	return variants, nil
}

// isTarikStyleRow recognizes a style-header row: a style token in column 0
// that is neither "D" nor a date, a product name in column 7, and at least
// one size token at column 13 or later.
func isTarikStyleRow(grid [][]string, r int) bool {
	first := strings.TrimSpace(cellAt(grid, r, 0))
	if first == "" || strings.EqualFold(first, "D") {
		return false
	}
	if _, isDate := ParseDate(first, domain.DateOrderEuropean); isDate {
		return false
	}
	if strings.TrimSpace(cellAt(grid, r, tarikNameCol)) == "" {
		return false
	}
	row := grid[r]
	for c := tarikSizeCol; c < len(row); c++ {
		if IsSizeToken(row[c]) {
			return true
		}
	}
	return false
}

// detectTarikSizes reads the size tokens off a style-header row, truncating
// after three consecutive empty columns.
func detectTarikSizes(row []string) []string {
	var sizes []string
	emptyRun := 0
	for c := tarikSizeCol; c < len(row); c++ {
		cell := strings.TrimSpace(row[c])
		if cell == "" {
			emptyRun++
			if emptyRun >= 3 {
				break
			}
			sizes = append(sizes, "")
			continue
		}
		emptyRun = 0
		sizes = append(sizes, NormalizeSizeToken(cell))
	}
	// Trim trailing placeholders left by the empty-run bookkeeping.
	for len(sizes) > 0 && sizes[len(sizes)-1] == "" {
		sizes = sizes[:len(sizes)-1]
	}
	return sizes
}

// tarikShipDate parses a data-row date. Column 0 dates are European unless
// the cell is an Excel serial, which is never format-ambiguous.
func tarikShipDate(cell string, cfg ParseConfig) string {
	if IsExcelSerialDate(cell) {
		return ParseShipDate(cell, cfg.dateOrder())
	}
	return ParseShipDate(cell, domain.DateOrderEuropean)
}
