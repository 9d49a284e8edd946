package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// ColorMapRepo is the global bad-to-good color mapping table, shared across
// all sources. Keys are stored upper-cased.
type ColorMapRepo struct {
	db *DB
}

func NewColorMapRepo(db *DB) *ColorMapRepo {
	return &ColorMapRepo{db: db}
}

func (r *ColorMapRepo) All(ctx context.Context) ([]*domain.ColorMapping, error) {
	var mappings []*domain.ColorMapping
	query := `SELECT id, bad_color, good_color, created_at FROM color_mappings ORDER BY bad_color`
	if err := r.db.SelectContext(ctx, &mappings, query); err != nil {
		return nil, fmt.Errorf("failed to load color mappings: %w", err)
	}
	return mappings, nil
}

func (r *ColorMapRepo) Upsert(ctx context.Context, mapping *domain.ColorMapping) error {
	query := `
		INSERT INTO color_mappings (bad_color, good_color, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (bad_color)
		DO UPDATE SET good_color = EXCLUDED.good_color
	`
	bad := strings.ToUpper(strings.TrimSpace(mapping.BadColor))
	if _, err := r.db.ExecContext(ctx, query, bad, mapping.GoodColor); err != nil {
		return fmt.Errorf("failed to upsert color mapping %s: %w", bad, err)
	}
	return nil
}
