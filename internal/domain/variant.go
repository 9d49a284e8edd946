// internal/domain/variant.go
package domain

import (
	"regexp"
	"strings"
	"time"
)

// Variant is the canonical pipeline record: a single (style, color, size)
// with stock, optional price/cost/ship-date, and the flags the rule chain
// reads and writes. Identity is the tuple (style, color, size); SKU is
// derived from it and rebuilt whenever style or color changes.
type Variant struct {
	Style string `json:"style"`
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`

	Price *float64 `json:"price,omitempty"`
	Cost  *float64 `json:"cost,omitempty"`

	// ShipDate is an ISO calendar date (2006-01-02) or empty.
	ShipDate string `json:"shipDate,omitempty"`

	// RawStockText is the original stock cell before numeric parsing.
	// Complex-stock patterns match against it.
	RawStockText string `json:"rawStockText,omitempty"`

	Discontinued              bool   `json:"discontinued,omitempty"`
	HasFutureStock            bool   `json:"hasFutureStock,omitempty"`
	PreserveZeroStock         bool   `json:"preserveZeroStock,omitempty"`
	IsExpandedSize            bool   `json:"isExpandedSize,omitempty"`
	ExpandedFrom              string `json:"expandedFrom,omitempty"`
	ShouldSkip                bool   `json:"shouldSkip,omitempty"`
	SkipUnlessContinueSelling bool   `json:"skipUnlessContinueSelling,omitempty"`
	SpecialOrder              bool   `json:"specialOrder,omitempty"`

	// Brand is set by parsers that recognize a brand token inside the
	// product name; it overrides the source name as the style prefix.
	Brand string `json:"brand,omitempty"`

	// StockInfo is the rendered per-variant display message.
	StockInfo string `json:"stockInfo,omitempty"`

	// Raw holds the original row keyed by header, for spot checks and
	// conditional rules.
	Raw map[string]string `json:"raw,omitempty"`
}

var skuDashRuns = regexp.MustCompile(`-{2,}`)

// BuildSKU derives the sanitized SKU string {style}-{color}-{size} with "/"
// and whitespace folded to "-" and runs of "-" collapsed.
func BuildSKU(style, color, size string) string {
	joined := style + "-" + color + "-" + size
	joined = strings.ReplaceAll(joined, "/", "-")
	joined = strings.Join(strings.Fields(joined), "-")
	return skuDashRuns.ReplaceAllString(joined, "-")
}

// SKU returns the derived SKU for the variant's current identity.
func (v *Variant) SKU() string {
	return BuildSKU(v.Style, v.Color, v.Size)
}

// IdentityKey returns the dedupe key: upper-cased style and color plus the
// size verbatim. Size "0" is a real size and participates in identity.
func (v *Variant) IdentityKey() string {
	return strings.ToUpper(strings.TrimSpace(v.Style)) + "|" +
		strings.ToUpper(strings.TrimSpace(v.Color)) + "|" +
		strings.TrimSpace(v.Size)
}

// HasValidFutureShipDate reports whether the variant's ship-date parses and
// falls strictly after today (source-local midnight).
func (v *Variant) HasValidFutureShipDate(now time.Time) bool {
	if v.ShipDate == "" {
		return false
	}
	d, err := time.Parse("2006-01-02", v.ShipDate)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.After(today)
}

// InventoryItem is a persisted variant tagged with its source.
type InventoryItem struct {
	ID            int64     `json:"id" db:"id"`
	SourceID      string    `json:"source_id" db:"source_id"`
	FileID        string    `json:"file_id,omitempty" db:"file_id"`
	SKU           string    `json:"sku" db:"sku"`
	Style         string    `json:"style" db:"style"`
	Color         string    `json:"color" db:"color"`
	Size          string    `json:"size" db:"size"`
	Stock         int       `json:"stock" db:"stock"`
	Price         *float64  `json:"price,omitempty" db:"price"`
	Cost          *float64  `json:"cost,omitempty" db:"cost"`
	ShipDate      string    `json:"ship_date,omitempty" db:"ship_date"`
	Discontinued  bool      `json:"discontinued" db:"discontinued"`
	HasFutureStk  bool      `json:"has_future_stock" db:"has_future_stock"`
	IsExpanded    bool      `json:"is_expanded_size" db:"is_expanded_size"`
	StockInfo     string    `json:"stock_info,omitempty" db:"stock_info"`
	SaleOwnsStyle bool      `json:"sale_owns_style" db:"sale_owns_style"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ItemFromVariant converts a pipeline variant into its persisted form.
func ItemFromVariant(sourceID, fileID string, v *Variant) *InventoryItem {
	return &InventoryItem{
		SourceID:     sourceID,
		FileID:       fileID,
		SKU:          v.SKU(),
		Style:        v.Style,
		Color:        v.Color,
		Size:         v.Size,
		Stock:        v.Stock,
		Price:        v.Price,
		Cost:         v.Cost,
		ShipDate:     v.ShipDate,
		Discontinued: v.Discontinued,
		HasFutureStk: v.HasFutureStock,
		IsExpanded:   v.IsExpandedSize,
		StockInfo:    v.StockInfo,
	}
}

// DiscontinuedStyle is a row in the sale-source style registry.
type DiscontinuedStyle struct {
	ID           int64     `json:"id" db:"id"`
	SaleSourceID string    `json:"sale_source_id" db:"sale_source_id"`
	Style        string    `json:"style" db:"style"`
	Active       bool      `json:"active" db:"active"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ColorMapping maps a bad color value to its replacement. Global table.
type ColorMapping struct {
	ID        int64     `json:"id" db:"id"`
	BadColor  string    `json:"bad_color" db:"bad_color"`
	GoodColor string    `json:"good_color" db:"good_color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
