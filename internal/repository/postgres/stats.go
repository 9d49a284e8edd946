package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

type StatsRepo struct {
	db *DB
}

func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// statsDetail is the JSONB tail of an import_stats row: the bounded style,
// color and per-product listings.
type statsDetail struct {
	Styles   []string                          `json:"styles,omitempty"`
	Colors   []string                          `json:"colors,omitempty"`
	Products map[string]*domain.ProductSummary `json:"products,omitempty"`
}

func (r *StatsRepo) Insert(ctx context.Context, stats *domain.ImportStats) error {
	detail, err := json.Marshal(statsDetail{
		Styles:   stats.Styles,
		Colors:   stats.Colors,
		Products: stats.Products,
	})
	if err != nil {
		return fmt.Errorf("failed to encode stats detail: %w", err)
	}
	query := `
		INSERT INTO import_stats (
			source_id, source_kind, timestamp, item_count, total_stock,
			unique_styles, unique_colors, items_with_price, items_with_ship_date,
			discontinued_count, future_stock_count, expanded_size_count, prefix, detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		stats.SourceID, stats.SourceKind, stats.Timestamp, stats.ItemCount, stats.TotalStock,
		stats.UniqueStyles, stats.UniqueColors, stats.ItemsWithPrice, stats.ItemsWithShipDate,
		stats.DiscontinuedCount, stats.FutureStockCount, stats.ExpandedSizeCount, stats.Prefix, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import stats for %s: %w", stats.SourceID, err)
	}
	return nil
}

// Latest returns the most recent stats row for the source, or nil when the
// source has never imported.
func (r *StatsRepo) Latest(ctx context.Context, sourceID string) (*domain.ImportStats, error) {
	var row struct {
		domain.ImportStats
		Detail []byte `db:"detail"`
	}
	query := `
		SELECT id, source_id, source_kind, timestamp, item_count, total_stock,
			unique_styles, unique_colors, items_with_price, items_with_ship_date,
			discontinued_count, future_stock_count, expanded_size_count, prefix, detail
		FROM import_stats WHERE source_id = $1
		ORDER BY timestamp DESC LIMIT 1
	`
	err := r.db.GetContext(ctx, &row, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest stats for %s: %w", sourceID, err)
	}

	stats := row.ImportStats
	var detail statsDetail
	if len(row.Detail) > 0 {
		if err := json.Unmarshal(row.Detail, &detail); err != nil {
			return nil, fmt.Errorf("invalid stats detail for %s: %w", sourceID, err)
		}
	}
	stats.Styles = detail.Styles
	stats.Colors = detail.Colors
	stats.Products = detail.Products
	return &stats, nil
}
