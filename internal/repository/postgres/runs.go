package postgres

import (
	"context"
	"fmt"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Create(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (id, source_id, status, started_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, run.ID, run.SourceID, run.Status, run.StartedAt); err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

func (r *RunRepo) Complete(ctx context.Context, runID string, itemCount int) error {
	query := `
		UPDATE import_runs
		SET status = $2, item_count = $3, completed_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, runID, domain.RunCompleted, itemCount); err != nil {
		return fmt.Errorf("failed to complete import run %s: %w", runID, err)
	}
	return nil
}

func (r *RunRepo) Fail(ctx context.Context, runID string, status domain.RunStatus, message string) error {
	query := `
		UPDATE import_runs
		SET status = $2, error_message = $3, completed_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, runID, status, message); err != nil {
		return fmt.Errorf("failed to fail import run %s: %w", runID, err)
	}
	return nil
}

func (r *RunRepo) ListBySource(ctx context.Context, sourceID string, limit int) ([]*domain.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*domain.ImportRun
	query := `
		SELECT id, source_id, status, item_count, error_message, started_at, completed_at
		FROM import_runs WHERE source_id = $1
		ORDER BY started_at DESC LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &runs, query, sourceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", sourceID, err)
	}
	return runs, nil
}
