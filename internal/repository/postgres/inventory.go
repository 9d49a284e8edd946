package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

type InventoryRepo struct {
	db *DB
}

func NewInventoryRepo(db *DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

const insertItemQuery = `
	INSERT INTO inventory_items (
		source_id, file_id, sku, style, color, size, stock, price, cost,
		ship_date, discontinued, has_future_stock, is_expanded_size,
		stock_info, sale_owns_style, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, NOW())
`

// ReplaceAll performs the full_sync write: the source's rows are deleted and
// re-inserted inside one transaction, so readers never observe a half-swap.
func (r *InventoryRepo) ReplaceAll(ctx context.Context, sourceID string, items []*domain.InventoryItem) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE source_id = $1`, sourceID); err != nil {
			return fmt.Errorf("failed to clear source rows: %w", err)
		}
		for _, item := range items {
			if _, err := tx.ExecContext(ctx, insertItemQuery,
				sourceID, item.FileID, item.SKU, item.Style, item.Color, item.Size,
				item.Stock, item.Price, item.Cost, item.ShipDate,
				item.Discontinued, item.HasFutureStk, item.IsExpanded, item.StockInfo,
			); err != nil {
				return fmt.Errorf("failed to insert %s: %w", item.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return &domain.WriteError{SourceID: sourceID, Err: err}
	}
	return nil
}

// Upsert merges items by (source_id, sku). Rows are written one by one so a
// mid-batch failure reports how many committed.
func (r *InventoryRepo) Upsert(ctx context.Context, sourceID string, items []*domain.InventoryItem, clearSaleOwnership bool) (int, error) {
	query := `
		INSERT INTO inventory_items (
			source_id, file_id, sku, style, color, size, stock, price, cost,
			ship_date, discontinued, has_future_stock, is_expanded_size,
			stock_info, sale_owns_style, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, FALSE, NOW())
		ON CONFLICT (source_id, sku)
		DO UPDATE SET
			file_id = EXCLUDED.file_id,
			style = EXCLUDED.style,
			color = EXCLUDED.color,
			size = EXCLUDED.size,
			stock = EXCLUDED.stock,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			ship_date = EXCLUDED.ship_date,
			discontinued = EXCLUDED.discontinued,
			has_future_stock = EXCLUDED.has_future_stock,
			is_expanded_size = EXCLUDED.is_expanded_size,
			stock_info = EXCLUDED.stock_info,
			sale_owns_style = CASE WHEN $15 THEN FALSE ELSE inventory_items.sale_owns_style END,
			updated_at = NOW()
	`
	committed := 0
	for _, item := range items {
		_, err := r.db.ExecContext(ctx, query,
			sourceID, item.FileID, item.SKU, item.Style, item.Color, item.Size,
			item.Stock, item.Price, item.Cost, item.ShipDate,
			item.Discontinued, item.HasFutureStk, item.IsExpanded, item.StockInfo,
			clearSaleOwnership,
		)
		if err != nil {
			return committed, &domain.WriteError{SourceID: sourceID, Committed: committed, Err: err}
		}
		committed++
	}
	return committed, nil
}

func (r *InventoryRepo) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items WHERE source_id = $1`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to count items for %s: %w", sourceID, err)
	}
	return count, nil
}

func (r *InventoryRepo) ListBySource(ctx context.Context, sourceID string) ([]*domain.InventoryItem, error) {
	var items []*domain.InventoryItem
	query := `
		SELECT id, source_id, file_id, sku, style, color, size, stock, price, cost,
			ship_date, discontinued, has_future_stock, is_expanded_size,
			stock_info, sale_owns_style, updated_at
		FROM inventory_items WHERE source_id = $1 ORDER BY sku
	`
	if err := r.db.SelectContext(ctx, &items, query, sourceID); err != nil {
		return nil, fmt.Errorf("failed to list items for %s: %w", sourceID, err)
	}
	return items, nil
}

// DeleteStyles removes the regular source's rows for styles that a sale feed
// now owns.
func (r *InventoryRepo) DeleteStyles(ctx context.Context, sourceID string, styles []string) (int, error) {
	if len(styles) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE source_id = $1 AND UPPER(style) = ANY($2)`,
		sourceID, pq.Array(upperAll(styles)))
	if err != nil {
		return 0, fmt.Errorf("failed to delete sale-owned styles for %s: %w", sourceID, err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *InventoryRepo) MarkSaleOwned(ctx context.Context, sourceID string, styles []string) error {
	if len(styles) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET sale_owns_style = TRUE, updated_at = NOW()
		 WHERE source_id = $1 AND UPPER(style) = ANY($2)`,
		sourceID, pq.Array(upperAll(styles)))
	if err != nil {
		return fmt.Errorf("failed to mark sale ownership for %s: %w", sourceID, err)
	}
	return nil
}

func upperAll(styles []string) []string {
	out := make([]string, len(styles))
	for i, s := range styles {
		out[i] = strings.ToUpper(s)
	}
	return out
}
