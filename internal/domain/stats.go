// internal/domain/stats.go
package domain

import "time"

const (
	statsMaxStyles       = 2000
	statsMaxColors       = 500
	statsMaxSKUsPerStyle = 50
)

// ProductSummary aggregates one style's variants for the stats block.
type ProductSummary struct {
	VariantCount   int      `json:"variantCount"`
	Colors         []string `json:"colors"`
	Sizes          []string `json:"sizes"`
	TotalStock     int      `json:"totalStock"`
	HasDiscontinue bool     `json:"hasDiscontinued"`
	HasFutureStock bool     `json:"hasFutureStock"`
	SKUs           []string `json:"skus"`
}

// ImportStats is written at the end of each successful run and consumed by
// the historical-delta validation checks on the next run.
type ImportStats struct {
	ID                int64                      `json:"id" db:"id"`
	SourceID          string                     `json:"sourceId" db:"source_id"`
	SourceKind        SourceKind                 `json:"sourceKind" db:"source_kind"`
	Timestamp         time.Time                  `json:"timestamp" db:"timestamp"`
	ItemCount         int                        `json:"itemCount" db:"item_count"`
	TotalStock        int                        `json:"totalStock" db:"total_stock"`
	UniqueStyles      int                        `json:"uniqueStyles" db:"unique_styles"`
	UniqueColors      int                        `json:"uniqueColors" db:"unique_colors"`
	ItemsWithPrice    int                        `json:"itemsWithPrice" db:"items_with_price"`
	ItemsWithShipDate int                        `json:"itemsWithShipDate" db:"items_with_ship_date"`
	DiscontinuedCount int                        `json:"discontinuedCount" db:"discontinued_count"`
	FutureStockCount  int                        `json:"futureStockCount" db:"future_stock_count"`
	ExpandedSizeCount int                        `json:"expandedSizeCount" db:"expanded_size_count"`
	Prefix            string                     `json:"prefix" db:"prefix"`
	Styles            []string                   `json:"styles"`
	Colors            []string                   `json:"colors"`
	Products          map[string]*ProductSummary `json:"products"`
}

// BuildImportStats computes the stats block from the final variant stream.
func BuildImportStats(sourceID string, kind SourceKind, prefix string, variants []*Variant, now time.Time) *ImportStats {
	stats := &ImportStats{
		SourceID:   sourceID,
		SourceKind: kind,
		Timestamp:  now,
		Prefix:     prefix,
		ItemCount:  len(variants),
		Products:   make(map[string]*ProductSummary),
	}

	styleSeen := make(map[string]bool)
	colorSeen := make(map[string]bool)

	for _, v := range variants {
		stats.TotalStock += v.Stock
		if v.Price != nil {
			stats.ItemsWithPrice++
		}
		if v.ShipDate != "" {
			stats.ItemsWithShipDate++
		}
		if v.Discontinued {
			stats.DiscontinuedCount++
		}
		if v.HasFutureStock {
			stats.FutureStockCount++
		}
		if v.IsExpandedSize {
			stats.ExpandedSizeCount++
		}

		if !styleSeen[v.Style] {
			styleSeen[v.Style] = true
			if len(stats.Styles) < statsMaxStyles {
				stats.Styles = append(stats.Styles, v.Style)
			}
		}
		if !colorSeen[v.Color] {
			colorSeen[v.Color] = true
			if len(stats.Colors) < statsMaxColors {
				stats.Colors = append(stats.Colors, v.Color)
			}
		}

		summary := stats.Products[v.Style]
		if summary == nil {
			summary = &ProductSummary{}
			stats.Products[v.Style] = summary
		}
		summary.VariantCount++
		summary.TotalStock += v.Stock
		summary.Colors = appendUnique(summary.Colors, v.Color)
		summary.Sizes = appendUnique(summary.Sizes, v.Size)
		if v.Discontinued {
			summary.HasDiscontinue = true
		}
		if v.HasFutureStock {
			summary.HasFutureStock = true
		}
		if len(summary.SKUs) < statsMaxSKUsPerStyle {
			summary.SKUs = append(summary.SKUs, v.SKU())
		}
	}

	stats.UniqueStyles = len(styleSeen)
	stats.UniqueColors = len(colorSeen)
	return stats
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// ImportRun tracks one execution of the pipeline for a source.
type ImportRun struct {
	ID           string     `json:"id" db:"id"`
	SourceID     string     `json:"source_id" db:"source_id"`
	Status       RunStatus  `json:"status" db:"status"`
	ItemCount    int        `json:"item_count" db:"item_count"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunBlocked   RunStatus = "blocked"
)
