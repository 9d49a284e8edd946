// internal/formats/row.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// row layout: one row per variant, driven by the source's column map. The
// header row is whichever of rows 0-9 matches the header vocabulary best.
// Supports a combined STYLE{delim}COLOR{delim}SIZE column, conditional
// ship-date rules, and yes/no stock conversion.
func parseRow(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	cols := newColumnIndex(header)
	mapping := map[string]string{}
	if cfg.Source != nil {
		mapping = cfg.Source.ColumnMapping
	}

	styleCol := cols.resolve(mapping["style"], "style", "style #", "style number")
	colorCol := cols.resolve(mapping["color"], "color", "colour")
	sizeCol := cols.resolve(mapping["size"], "size")
	stockCol := cols.resolve(mapping["stock"], "stock", "qty", "quantity", "available", "on hand")
	priceCol := cols.resolve(mapping["price"], "price", "msrp")
	costCol := cols.resolve(mapping["cost"], "cost", "wholesale")
	shipCol := cols.resolve(mapping["shipDate"], "ship date", "shipdate", "delivery", "eta")
	skuCol := cols.resolve(mapping["sku"], "sku")

	var combined *combinedVariantSplitter
	if cfg.Source != nil && cfg.Source.Cleaning != nil && cfg.Source.Cleaning.CombinedVariantColumn != "" {
		combined = newCombinedVariantSplitter(cfg.Source.Cleaning, cols)
	}

	if styleCol < 0 && skuCol < 0 && combined == nil {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	var conditional *domain.ConditionalShipDateRule
	if cfg.Source != nil {
		conditional = cfg.Source.ConditionalShipDate
	}

	var variants []*domain.Variant
	for r := headerIdx + 1; r < len(grid); r++ {
		row := grid[r]
		if rowIsEmpty(row) {
			continue
		}

		var style, color, size string
		if combined != nil {
			style, color, size = combined.split(grid, r)
		}
		if style == "" && styleCol >= 0 {
			style = strings.TrimSpace(cellAt(grid, r, styleCol))
		}
		if style == "" && skuCol >= 0 {
			style = strings.TrimSpace(cellAt(grid, r, skuCol))
		}
		if color == "" && colorCol >= 0 {
			color = strings.TrimSpace(cellAt(grid, r, colorCol))
		}
		if size == "" && sizeCol >= 0 {
			size = strings.TrimSpace(cellAt(grid, r, sizeCol))
		}
		if style == "" {
			continue
		}

		rawStock := ""
		stock := 0
		if stockCol >= 0 {
			rawStock = cellAt(grid, r, stockCol)
			stock = parseRowStock(rawStock, cfg)
		}

		v := newVariant(style, color, NormalizeSizeToken(size), stock, rawStock)
		v.Raw = rawRowMap(header, row)

		if priceCol >= 0 {
			if price, ok := parsePriceCell(cellAt(grid, r, priceCol)); ok {
				v.Price = &price
			}
		}
		if costCol >= 0 {
			if cost, ok := parsePriceCell(cellAt(grid, r, costCol)); ok {
				v.Cost = &cost
			}
		}

		if shipCol >= 0 {
			v.ShipDate = ParseShipDate(cellAt(grid, r, shipCol), cfg.dateOrder())
		}
		if conditional != nil && v.ShipDate == "" {
			v.ShipDate = conditionalShipDate(conditional, cols, grid, r, cfg)
		}

		variants = append(variants, v)
	}
	return variants, nil
}

// columnIndex maps lower-cased trimmed header names to their positions.
type columnIndex struct {
	byName map[string]int
}

func newColumnIndex(header []string) *columnIndex {
	idx := &columnIndex{byName: make(map[string]int, len(header))}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, exists := idx.byName[name]; !exists {
			idx.byName[name] = i
		}
	}
	return idx
}

// resolve returns the column for the mapped header name, falling back to
// the given candidates by exact match, then substring.
func (c *columnIndex) resolve(mapped string, candidates ...string) int {
	if mapped != "" {
		if col, ok := c.byName[strings.ToLower(strings.TrimSpace(mapped))]; ok {
			return col
		}
		return -1 // an explicit mapping that misses is a miss, not a guess
	}
	for _, candidate := range candidates {
		if col, ok := c.byName[candidate]; ok {
			return col
		}
	}
	for name, col := range c.byName {
		for _, candidate := range candidates {
			if strings.Contains(name, candidate) {
				return col
			}
		}
	}
	return -1
}

// combinedVariantSplitter splits STYLE{delim}COLOR{delim}SIZE cells.
type combinedVariantSplitter struct {
	col       int
	delimiter string
	order     []string
}

func newCombinedVariantSplitter(cfg *domain.CleaningConfig, cols *columnIndex) *combinedVariantSplitter {
	col := cols.resolve(cfg.CombinedVariantColumn)
	if col < 0 {
		return nil
	}
	delimiter := cfg.CombinedVariantDelimiter
	if delimiter == "" {
		delimiter = "-"
	}
	order := []string{"style", "color", "size"}
	if cfg.CombinedVariantOrder != "" {
		order = strings.Split(strings.ToLower(strings.ReplaceAll(cfg.CombinedVariantOrder, " ", "")), ",")
	}
	return &combinedVariantSplitter{col: col, delimiter: delimiter, order: order}
}

func (s *combinedVariantSplitter) split(grid [][]string, r int) (style, color, size string) {
	cell := strings.TrimSpace(cellAt(grid, r, s.col))
	if cell == "" {
		return "", "", ""
	}
	parts := strings.Split(cell, s.delimiter)
	for i, field := range s.order {
		if i >= len(parts) {
			break
		}
		value := strings.TrimSpace(parts[i])
		switch field {
		case "style":
			style = value
		case "color":
			color = value
		case "size":
			size = value
		}
	}
	return style, color, size
}

func parseRowStock(raw string, cfg ParseConfig) int {
	if cfg.Source != nil && cfg.Source.Cleaning != nil && cfg.Source.Cleaning.ConvertYesNo {
		cleaning := cfg.Source.Cleaning
		yes, no := cleaning.YesValue, cleaning.NoValue
		if yes == "" {
			yes = "yes"
		}
		if no == "" {
			no = "no"
		}
		switch {
		case strings.EqualFold(strings.TrimSpace(raw), yes):
			return 1
		case strings.EqualFold(strings.TrimSpace(raw), no):
			return 0
		}
	}
	stock, _ := ParseStock(raw, cfg.stockMappings())
	return stock
}

func conditionalShipDate(rule *domain.ConditionalShipDateRule, cols *columnIndex, grid [][]string, r int, cfg ParseConfig) string {
	ifCol := cols.resolve(rule.IfColumn)
	dateCol := cols.resolve(rule.DateColumn)
	if ifCol < 0 || dateCol < 0 {
		return ""
	}
	if !strings.EqualFold(strings.TrimSpace(cellAt(grid, r, ifCol)), strings.TrimSpace(rule.EqualsValue)) {
		return ""
	}
	return ParseShipDate(cellAt(grid, r, dateCol), cfg.dateOrder())
}

func rawRowMap(header, row []string) map[string]string {
	raw := make(map[string]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || i >= len(row) {
			continue
		}
		raw[name] = row[i]
	}
	return raw
}
