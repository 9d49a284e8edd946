// internal/formats/parse.go
package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// ParseConfig is the universal parser input: the source config (column map,
// stock-text mappings, date order) plus the naming context some layouts key
// off.
type ParseConfig struct {
	Source   *domain.Source
	Filename string
}

func (c ParseConfig) sourceName() string {
	if c.Source != nil {
		return c.Source.Name
	}
	return ""
}

func (c ParseConfig) stockMappings() map[string]int {
	if c.Source != nil {
		return c.Source.StockTextMappings
	}
	return nil
}

func (c ParseConfig) dateOrder() domain.DateOrder {
	if c.Source != nil {
		return c.Source.DateOrder
	}
	return domain.DateOrderUS
}

type parseFunc func(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error)

var parsers = map[string]parseFunc{
	FormatRow:             parseRow,
	FormatTarikEdiz:       parseTarikEdiz,
	FormatJovaniSale:      parseJovaniSale,
	FormatSherriHill:      parseSherriHill,
	FormatFeriani:         parseFeriani,
	FormatGenericPivot:    parseGenericPivot,
	FormatOTS:             parseOTS,
	FormatPRDateHeaders:   parsePRDateHeaders,
	FormatGRNInvoice:      parseGRNInvoice,
	FormatStoreMultibrand: parseStoreMultibrand,
}

// Parse runs the layout parser for the given format over the cell grid.
func Parse(format string, grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	if format == "" {
		format = FormatRow
	}
	fn, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return fn(grid, cfg)
}

// KnownFormats lists every registered layout identifier.
func KnownFormats() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	return names
}

// parsePriceCell strips currency adornments and parses a price.
func parsePriceCell(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// hasSize guards against truthy-string shortcuts: "0" is a valid size.
func hasSize(size string) bool {
	return strings.TrimSpace(size) != ""
}

// newVariant builds a canonical record, keeping the raw stock text for
// complex-stock patterns downstream.
func newVariant(style, color, size string, stock int, rawStock string) *domain.Variant {
	return &domain.Variant{
		Style:        strings.TrimSpace(style),
		Color:        strings.TrimSpace(color),
		Size:         strings.TrimSpace(size),
		Stock:        stock,
		RawStockText: rawStock,
	}
}
