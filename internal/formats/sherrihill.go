// internal/formats/sherrihill.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// sherri_hill layout: paired columns. Size headers sit at even indexes from
// column 4 and each is followed by a "Special Date" column. Stock cells are
// text values ("Yes", "Last Piece", "No") resolved through the stock-text
// mappings.
func parseSherriHill(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol := 0, 1
	type sizePair struct {
		col  int
		size string
	}
	var pairs []sizePair
	for c, raw := range header {
		h := strings.TrimSpace(raw)
		upper := strings.ToUpper(h)
		switch {
		case strings.Contains(upper, "STYLE"):
			styleCol = c
		case strings.Contains(upper, "COLOR") || strings.Contains(upper, "COLOUR"):
			colorCol = c
		case c >= 4 && IsSizeToken(h) && strings.Contains(strings.ToUpper(cellAt(grid, headerIdx, c+1)), "SPECIAL DATE"):
			pairs = append(pairs, sizePair{col: c, size: NormalizeSizeToken(h)})
		case c >= 4 && IsSizeToken(h) && len(pairs) > 0:
			// Trailing sheets sometimes omit the last date header.
			pairs = append(pairs, sizePair{col: c, size: NormalizeSizeToken(h)})
		}
	}
	if len(pairs) == 0 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	mappings := cfg.stockMappings()
	var variants []*domain.Variant
	for r := headerIdx + 1; r < len(grid); r++ {
		if rowIsEmpty(grid[r]) {
			continue
		}
		style := strings.TrimSpace(cellAt(grid, r, styleCol))
		color := strings.TrimSpace(cellAt(grid, r, colorCol))
		if style == "" {
			continue
		}
		for _, pair := range pairs {
			raw := cellAt(grid, r, pair.col)
			stock, ok := ParseStock(raw, mappings)
			if !ok {
				continue
			}
			v := newVariant(style, color, pair.size, stock, raw)
			v.ShipDate = ParseShipDate(cellAt(grid, r, pair.col+1), cfg.dateOrder())
			variants = append(variants, v)
		}
	}
	return variants, nil
}
