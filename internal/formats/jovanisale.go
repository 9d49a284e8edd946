// internal/formats/jovanisale.go
package formats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// jovani_sale layout: interleaved style and color rows. Row 0 carries size
// tokens from column 1 onward; a style row names the style (and often a
// price) and the color rows under it carry per-size stock until the next
// style row.
var (
	jovaniStyleRe = regexp.MustCompile(`^#?\d{4,6}$|^(?:JVN|JB|AL)\d{3,6}$|^D\d{3,5}$`)
	jovaniColorRe = regexp.MustCompile(`^[A-Za-z][A-Za-z /&-]*[A-Za-z]$`)
)

func parseJovaniSale(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	if len(grid) == 0 {
		return nil, domain.ErrNoRows
	}

	sizes := jovaniHeaderSizes(grid[0])
	var variants []*domain.Variant
	var currentStyle string
	var currentPrice *float64

	for r := 1; r < len(grid); r++ {
		row := grid[r]
		if rowIsEmpty(row) {
			continue
		}
		first := strings.TrimSpace(cellAt(grid, r, 0))

		if style, price, ok := jovaniStyleRow(grid, r, sizes); ok {
			currentStyle = style
			currentPrice = price
			continue
		}

		// A style token in the color column (even alongside stock
		// values) is a misaligned style row.
		if jovaniStyleRe.MatchString(strings.ToUpper(first)) {
			currentStyle = strings.TrimPrefix(first, "#")
			currentPrice = nil
			continue
		}

		if currentStyle == "" || !isJovaniColorRow(grid, r, sizes, cfg) {
			continue
		}

		for col, size := range sizes {
			if size == "" {
				continue
			}
			raw := cellAt(grid, r, col)
			stock, ok := ParseStock(raw, cfg.stockMappings())
			if !ok {
				continue
			}
			v := newVariant(currentStyle, first, size, stock, raw)
			if currentPrice != nil {
				price := *currentPrice
				v.Price = &price
			}
			variants = append(variants, v)
		}
	}

	return variants, nil
}

// jovaniHeaderSizes maps column index to size token, skipping non-size
// cells like LOCATION.
func jovaniHeaderSizes(header []string) map[int]string {
	sizes := make(map[int]string)
	for c := 1; c < len(header); c++ {
		if IsSizeToken(header[c]) {
			sizes[c] = NormalizeSizeToken(header[c])
		}
	}
	return sizes
}

// jovaniStyleRow recognizes a style row: the style pattern in column 0 plus
// either a price in column 1 or no stock values in the size columns.
func jovaniStyleRow(grid [][]string, r int, sizes map[int]string) (string, *float64, bool) {
	first := strings.TrimSpace(cellAt(grid, r, 0))
	if !jovaniStyleRe.MatchString(strings.ToUpper(first)) {
		return "", nil, false
	}

	style := strings.TrimPrefix(first, "#")
	priceCell := strings.TrimSpace(cellAt(grid, r, 1))
	priceCell = strings.TrimPrefix(priceCell, "$")
	if price, err := strconv.ParseFloat(strings.ReplaceAll(priceCell, ",", ""), 64); err == nil && price > 0 {
		return style, &price, true
	}

	for col := range sizes {
		if strings.TrimSpace(cellAt(grid, r, col)) != "" {
			return "", nil, false
		}
	}
	return style, nil, true
}

// isJovaniColorRow recognizes a color row: alphabetic text in column 0 (two
// or more letters, no digits) plus at least one numeric stock value under a
// size column.
func isJovaniColorRow(grid [][]string, r int, sizes map[int]string, cfg ParseConfig) bool {
	first := strings.TrimSpace(cellAt(grid, r, 0))
	if len(first) < 2 || !jovaniColorRe.MatchString(first) {
		return false
	}
	for col := range sizes {
		if _, ok := ParseStock(cellAt(grid, r, col), cfg.stockMappings()); ok {
			return true
		}
	}
	return false
}
