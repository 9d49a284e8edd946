package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// RegistryRepo tracks which styles each sale source currently carries.
// Regular feeds of the linked vendor consult it to exclude those styles.
type RegistryRepo struct {
	db *DB
}

func NewRegistryRepo(db *DB) *RegistryRepo {
	return &RegistryRepo{db: db}
}

// Sync records the run's style set: present styles are upserted active,
// absent ones flipped inactive, all in one transaction.
func (r *RegistryRepo) Sync(ctx context.Context, saleSourceID string, styles []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE discontinued_styles SET active = FALSE, updated_at = NOW() WHERE sale_source_id = $1`,
			saleSourceID); err != nil {
			return fmt.Errorf("failed to deactivate registry for %s: %w", saleSourceID, err)
		}
		query := `
			INSERT INTO discontinued_styles (sale_source_id, style, active, updated_at)
			VALUES ($1, $2, TRUE, NOW())
			ON CONFLICT (sale_source_id, style)
			DO UPDATE SET active = TRUE, updated_at = NOW()
		`
		for _, style := range styles {
			style = strings.ToUpper(strings.TrimSpace(style))
			if style == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, query, saleSourceID, style); err != nil {
				return fmt.Errorf("failed to upsert registry style %s: %w", style, err)
			}
		}
		return nil
	})
}

func (r *RegistryRepo) ActiveStyles(ctx context.Context, saleSourceID string) ([]string, error) {
	var styles []string
	err := r.db.SelectContext(ctx, &styles,
		`SELECT style FROM discontinued_styles WHERE sale_source_id = $1 AND active ORDER BY style`,
		saleSourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry for %s: %w", saleSourceID, err)
	}
	return styles, nil
}
