// internal/formats/genericpivot.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// generic_pivot layout: any sheet whose header row carries five or more size
// tokens. The style column is the first header containing STYLE/CODE/ITEM,
// the color column the first containing COLOR but not CODE. Optional date
// and discontinued columns. Rows without a color fall back to the literal
// DEFAULT.
const defaultPivotColor = "DEFAULT"

func parseGenericPivot(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := findPivotHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol, dateCol, discontCol := -1, -1, -1, -1
	type sizeCol struct {
		col  int
		size string
	}
	var sizeCols []sizeCol

	for c, raw := range header {
		h := strings.TrimSpace(raw)
		if h == "" {
			continue
		}
		if IsSizeToken(h) {
			sizeCols = append(sizeCols, sizeCol{col: c, size: NormalizeSizeToken(h)})
			continue
		}
		switch {
		case styleCol < 0 && genericStyleRe.MatchString(h):
			styleCol = c
		case colorCol < 0 && genericColorRe.MatchString(h) && !genericColorCode.MatchString(h):
			colorCol = c
		case dateCol < 0 && genericDateRe.MatchString(h):
			dateCol = c
		case discontCol < 0 && genericDiscontRe.MatchString(h):
			discontCol = c
		}
	}
	if styleCol < 0 || len(sizeCols) < 5 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	mappings := cfg.stockMappings()
	var variants []*domain.Variant
	for r := headerIdx + 1; r < len(grid); r++ {
		if rowIsEmpty(grid[r]) {
			continue
		}
		style := strings.TrimSpace(cellAt(grid, r, styleCol))
		if style == "" {
			continue
		}
		color := defaultPivotColor
		if colorCol >= 0 {
			if c := strings.TrimSpace(cellAt(grid, r, colorCol)); c != "" {
				color = c
			}
		}
		shipDate := ""
		if dateCol >= 0 {
			shipDate = ParseShipDate(cellAt(grid, r, dateCol), cfg.dateOrder())
		}
		discontinued := false
		if discontCol >= 0 {
			cell := strings.ToLower(strings.TrimSpace(cellAt(grid, r, discontCol)))
			discontinued = cell == "d" || strings.Contains(cell, "discontinu") || cell == "yes" || cell == "true"
		}

		for _, sc := range sizeCols {
			raw := cellAt(grid, r, sc.col)
			stock, ok := ParseStock(raw, mappings)
			if !ok {
				continue
			}
			v := newVariant(style, color, sc.size, stock, raw)
			v.ShipDate = shipDate
			v.Discontinued = discontinued
			variants = append(variants, v)
		}
	}
	return variants, nil
}

// findPivotHeaderRow locates the first row carrying at least five size
// tokens.
func findPivotHeaderRow(grid [][]string) int {
	limit := len(grid)
	if limit > 10 {
		limit = 10
	}
	for r := 0; r < limit; r++ {
		count := 0
		for _, cell := range grid[r] {
			if IsSizeToken(cell) {
				count++
			}
		}
		if count >= 5 {
			return r
		}
	}
	return -1
}
