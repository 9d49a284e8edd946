// internal/formats/otsformat.go
package formats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// ots_format layout: stock lives in columns named ots1..otsN which map
// positionally onto a size list. The list comes from a size_whole_comp
// column (whitespace-separated tokens) when present, else the default even
// 2-18 range.
func parseOTS(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol, sizeListCol := -1, -1, -1
	type otsCol struct {
		col      int
		position int
	}
	var otsCols []otsCol

	for c, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case otsHeaderRe.MatchString(h):
			n, err := strconv.Atoi(strings.TrimPrefix(h, "ots"))
			if err == nil && n >= 1 {
				otsCols = append(otsCols, otsCol{col: c, position: n - 1})
			}
		case h == "size_whole_comp":
			sizeListCol = c
		case styleCol < 0 && genericStyleRe.MatchString(h):
			styleCol = c
		case colorCol < 0 && genericColorRe.MatchString(h) && !genericColorCode.MatchString(h):
			colorCol = c
		}
	}
	if styleCol < 0 || len(otsCols) == 0 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}
	sort.Slice(otsCols, func(i, j int) bool { return otsCols[i].position < otsCols[j].position })

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
		color := ""
		if colorCol >= 0 {
			color = strings.TrimSpace(cellAt(grid, r, colorCol))
		}

		sizes := DefaultOTSSizes
		if sizeListCol >= 0 {
			if fields := strings.Fields(cellAt(grid, r, sizeListCol)); len(fields) > 0 {
				sizes = make([]string, len(fields))
				for i, f := range fields {
					sizes[i] = NormalizeSizeToken(f)
				}
			}
		}

		for _, oc := range otsCols {
			if oc.position >= len(sizes) {
				continue
			}
			raw := cellAt(grid, r, oc.col)
			stock, ok := ParseStock(raw, mappings)
			if !ok {
				continue
			}
			variants = append(variants, newVariant(style, color, sizes[oc.position], stock, raw))
		}
	}
	return variants, nil
}
