// internal/formats/feriani.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// feriani / gia layout: DELIVERY and STYLE carry forward down merged cells,
// COLOR is per-row, and the numeric size columns follow. A DELIVERY of
// "NOW" means stock on hand, no ship date.
func parseFeriani(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	deliveryCol, styleCol, colorCol := -1, -1, -1
	type sizeCol struct {
		col  int
		size string
	}
	var sizeCols []sizeCol
	for c, raw := range header {
		upper := strings.ToUpper(strings.TrimSpace(raw))
		switch {
		case strings.Contains(upper, "DELIVERY"):
			deliveryCol = c
		case strings.Contains(upper, "STYLE"):
			styleCol = c
		case strings.Contains(upper, "COLOR") || strings.Contains(upper, "COLOUR"):
			colorCol = c
		case IsSizeToken(raw):
			sizeCols = append(sizeCols, sizeCol{col: c, size: NormalizeSizeToken(raw)})
		}
	}
	if styleCol < 0 || colorCol < 0 || len(sizeCols) == 0 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	mappings := cfg.stockMappings()
	var variants []*domain.Variant
	var currentStyle, currentShipDate string

	for r := headerIdx + 1; r < len(grid); r++ {
		if rowIsEmpty(grid[r]) {
			continue
		}

		if deliveryCol >= 0 {
			if delivery := strings.TrimSpace(cellAt(grid, r, deliveryCol)); delivery != "" {
				if strings.EqualFold(delivery, "NOW") {
					currentShipDate = ""
				} else {
					currentShipDate = ParseShipDate(delivery, cfg.dateOrder())
				}
			}
		}
		if style := strings.TrimSpace(cellAt(grid, r, styleCol)); style != "" {
			currentStyle = style
		}

		color := strings.TrimSpace(cellAt(grid, r, colorCol))
		if currentStyle == "" || color == "" {
			continue
		}

		for _, sc := range sizeCols {
			raw := cellAt(grid, r, sc.col)
			stock, ok := ParseStock(raw, mappings)
			if !ok {
				continue
			}
			v := newVariant(currentStyle, color, sc.size, stock, raw)
			v.ShipDate = currentShipDate
			variants = append(variants, v)
		}
	}
	return variants, nil
}
