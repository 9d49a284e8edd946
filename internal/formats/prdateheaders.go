// internal/formats/prdateheaders.go
package formats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// pr_date_headers layout: headers matching ^4\d{4}$ are Excel serial dates;
// each such column carries stock arriving on that date. An "available"
// column supplies stock on hand. The size comes from a -N style suffix when
// present, else ONE SIZE.
var prStyleSuffixRe = regexp.MustCompile(`^(.*)-(\d{1,3})$`)

const prOneSize = "ONE SIZE"

func parsePRDateHeaders(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol, availableCol := -1, -1, -1
	type dateCol struct {
		col  int
		date string
	}
	var dateCols []dateCol

	for c, raw := range header {
		h := strings.TrimSpace(raw)
		lower := strings.ToLower(h)
		switch {
		case prDateHeaderRe.MatchString(h):
			serial, _ := strconv.Atoi(h)
			dateCols = append(dateCols, dateCol{col: c, date: ToISODate(ExcelSerialToDate(serial))})
		case strings.Contains(lower, "available"):
			availableCol = c
		case styleCol < 0 && genericStyleRe.MatchString(h):
			styleCol = c
		case colorCol < 0 && genericColorRe.MatchString(h) && !genericColorCode.MatchString(h):
			colorCol = c
		}
	}
	if styleCol < 0 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	mappings := cfg.stockMappings()
	var variants []*domain.Variant
	for r := headerIdx + 1; r < len(grid); r++ {
		if rowIsEmpty(grid[r]) {
			continue
		}
		rawStyle := strings.TrimSpace(cellAt(grid, r, styleCol))
		if rawStyle == "" {
			continue
		}
		style, size := rawStyle, prOneSize
		if m := prStyleSuffixRe.FindStringSubmatch(rawStyle); m != nil {
			style, size = m[1], m[2]
		}
		color := ""
		if colorCol >= 0 {
			color = strings.TrimSpace(cellAt(grid, r, colorCol))
		}

		if availableCol >= 0 {
			raw := cellAt(grid, r, availableCol)
			if stock, ok := ParseStock(raw, mappings); ok {
				variants = append(variants, newVariant(style, color, size, stock, raw))
			}
		}

		// Date columns contribute incoming stock: zero on hand today with
		// a ship date in the header.
		for _, dc := range dateCols {
			raw := cellAt(grid, r, dc.col)
			incoming, ok := ParseStock(raw, mappings)
			if !ok || incoming == 0 {
				continue
			}
			v := newVariant(style, color, size, 0, raw)
			v.ShipDate = dc.date
			v.HasFutureStock = true
			v.PreserveZeroStock = true
			variants = append(variants, v)
		}
	}
	return variants, nil
}
