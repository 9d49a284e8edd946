// internal/formats/grninvoice.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// grn_invoice layout: a header row containing both "code" and "color" with
// size headers drawn from the 000-24 set. Leading-zero size headers (02)
// normalize to their plain form (2).
func parseGRNInvoice(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := findGRNHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol := -1, -1
	type sizeCol struct {
		col  int
		size string
	}
	var sizeCols []sizeCol
	for c, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case strings.Contains(h, "code"):
			if styleCol < 0 {
				styleCol = c
			}
		case h == "color" || h == "colour":
			colorCol = c
		case grnSizeHeaderSet[strings.TrimSpace(raw)]:
			sizeCols = append(sizeCols, sizeCol{col: c, size: NormalizeSizeToken(raw)})
		}
	}
	if styleCol < 0 || colorCol < 0 || len(sizeCols) == 0 {
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
		if style == "" || color == "" {
			continue
		}
		for _, sc := range sizeCols {
			raw := cellAt(grid, r, sc.col)
			stock, ok := ParseStock(raw, mappings)
			if !ok {
				continue
			}
			variants = append(variants, newVariant(style, color, sc.size, stock, raw))
		}
	}
	return variants, nil
}

func findGRNHeaderRow(grid [][]string) int {
	limit := len(grid)
	if limit > 10 {
		limit = 10
	}
	for r := 0; r < limit; r++ {
		hasCode, hasColor := false, false
		for _, cell := range grid[r] {
			h := strings.ToLower(strings.TrimSpace(cell))
			if strings.Contains(h, "code") {
				hasCode = true
			}
			if h == "color" || h == "colour" {
				hasColor = true
			}
		}
		if hasCode && hasColor {
			return r
		}
	}
	return -1
}
