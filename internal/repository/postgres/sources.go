package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// SourceRepo stores each source as its id columns plus the full config as
// JSONB, so rule blocks evolve without migrations.
type SourceRepo struct {
	db *DB
}

func NewSourceRepo(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

func (r *SourceRepo) GetByID(ctx context.Context, id string) (*domain.Source, error) {
	var row struct {
		Config     []byte       `db:"config"`
		LastSyncAt sql.NullTime `db:"last_sync_at"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT config, last_sync_at FROM sources WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load source %s: %w", id, err)
	}

	source, err := decodeSource(row.Config, row.LastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", id, err)
	}
	return source, nil
}

func (r *SourceRepo) List(ctx context.Context) ([]*domain.Source, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT config, last_sync_at FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		var config []byte
		var lastSync sql.NullTime
		if err := rows.Scan(&config, &lastSync); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		source, err := decodeSource(config, lastSync)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (r *SourceRepo) Save(ctx context.Context, source *domain.Source) error {
	config, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("failed to encode source config: %w", err)
	}
	query := `
		INSERT INTO sources (id, name, kind, role, config, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind,
			role = EXCLUDED.role, config = EXCLUDED.config, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, source.ID, source.Name, source.Kind, source.Role, config); err != nil {
		return fmt.Errorf("failed to save source %s: %w", source.ID, err)
	}
	return nil
}

// SaveLearnedFormat writes the detector's verdict back into pivotConfig so
// the next run skips probing. enabled=false records a row-parser correction.
func (r *SourceRepo) SaveLearnedFormat(ctx context.Context, id, format string, enabled bool) error {
	learned, err := json.Marshal(domain.FormatConfig{Enabled: enabled, Format: format})
	if err != nil {
		return fmt.Errorf("failed to encode learned format: %w", err)
	}
	query := `
		UPDATE sources
		SET config = jsonb_set(config, '{pivotConfig}', $2::jsonb), updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, learned); err != nil {
		return fmt.Errorf("failed to save learned format for %s: %w", id, err)
	}
	return nil
}

func (r *SourceRepo) TouchLastSync(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE sources SET last_sync_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("failed to touch last sync for %s: %w", id, err)
	}
	return nil
}

func decodeSource(config []byte, lastSync sql.NullTime) (*domain.Source, error) {
	var source domain.Source
	if err := json.Unmarshal(config, &source); err != nil {
		return nil, fmt.Errorf("invalid stored config: %w", err)
	}
	if lastSync.Valid {
		t := lastSync.Time
		source.LastSyncAt = &t
	}
	return &source, nil
}
