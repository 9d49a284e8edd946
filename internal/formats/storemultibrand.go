// internal/formats/storemultibrand.go
package formats

import (
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// store_multibrand layout: one row per variant with a product-name column. A
// closed list of known brand strings is scanned inside the product name; a
// hit tags the variant's brand, which later overrides the source name as
// the style prefix.
var knownBrands = []string{
	"Jovani", "Sherri Hill", "Tarik Ediz", "Feriani", "Mac Duggal",
	"La Femme", "Terani", "Ellie Wilde", "Mori Lee", "Alyce",
	"Portia & Scarlett", "Jessica Angel", "Primavera", "Colette",
	"Colors Dress", "Amarra", "Ashley Lauren", "Rachel Allan",
}

func parseStoreMultibrand(grid [][]string, cfg ParseConfig) ([]*domain.Variant, error) {
	headerIdx := FindHeaderRow(grid)
	if headerIdx < 0 {
		return nil, domain.ErrNoRows
	}
	header := grid[headerIdx]

	styleCol, colorCol, sizeCol, stockCol, priceCol, nameCol := -1, -1, -1, -1, -1, -1
	for c, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case styleCol < 0 && strings.Contains(h, "style"):
			styleCol = c
		case colorCol < 0 && (strings.Contains(h, "color") || strings.Contains(h, "colour")):
			colorCol = c
		case sizeCol < 0 && h == "size":
			sizeCol = c
		case stockCol < 0 && (strings.Contains(h, "stock") || strings.Contains(h, "qty") || strings.Contains(h, "quantity")):
			stockCol = c
		case priceCol < 0 && strings.Contains(h, "price"):
			priceCol = c
		case nameCol < 0 && (strings.Contains(h, "name") || strings.Contains(h, "title") || strings.Contains(h, "product") || strings.Contains(h, "desc")):
			nameCol = c
		}
	}
	if styleCol < 0 || sizeCol < 0 {
		return nil, &domain.ParseError{Filename: cfg.Filename, Err: domain.ErrNoRows}
	}

	mappings := cfg.stockMappings()
	var variants []*domain.Variant
	for r := headerIdx + 1; r < len(grid); r++ {
		if rowIsEmpty(grid[r]) {
			continue
		}
		style := strings.TrimSpace(cellAt(grid, r, styleCol))
		size := strings.TrimSpace(cellAt(grid, r, sizeCol))
		if style == "" || !hasSize(size) {
			continue
		}
		color := ""
		if colorCol >= 0 {
			color = strings.TrimSpace(cellAt(grid, r, colorCol))
		}
		rawStock := ""
		stock := 0
		if stockCol >= 0 {
			rawStock = cellAt(grid, r, stockCol)
			stock, _ = ParseStock(rawStock, mappings)
		}

		v := newVariant(style, color, NormalizeSizeToken(size), stock, rawStock)
		if priceCol >= 0 {
			if price, ok := parsePriceCell(cellAt(grid, r, priceCol)); ok {
				v.Price = &price
			}
		}
		if nameCol >= 0 {
			v.Brand = matchBrand(cellAt(grid, r, nameCol))
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// matchBrand scans the product name for a known brand string.
func matchBrand(productName string) string {
	lower := strings.ToLower(productName)
	for _, brand := range knownBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}
