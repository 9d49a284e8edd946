package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// StagedRepo holds parsed files waiting for a multi-file combine. The
// extracted variants ride along as JSONB so the combine never re-reads the
// original upload.
type StagedRepo struct {
	db *DB
}

func NewStagedRepo(db *DB) *StagedRepo {
	return &StagedRepo{db: db}
}

type stagedPayload struct {
	Variants []*domain.Variant `json:"variants"`
	Header   []string          `json:"header,omitempty"`
}

func (r *StagedRepo) Save(ctx context.Context, file *domain.StagedFile) error {
	payload, err := json.Marshal(stagedPayload{Variants: file.Variants, Header: file.Header})
	if err != nil {
		return fmt.Errorf("failed to encode staged payload: %w", err)
	}
	query := `
		INSERT INTO staged_files (id, source_id, filename, format, row_count, status, error, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, error = EXCLUDED.error, payload = EXCLUDED.payload
	`
	_, err = r.db.ExecContext(ctx, query,
		file.ID, file.SourceID, file.Filename, file.Format, file.RowCount,
		file.Status, file.Error, payload, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save staged file %s: %w", file.ID, err)
	}
	return nil
}

func (r *StagedRepo) ListBySource(ctx context.Context, sourceID string, status domain.StagedFileStatus) ([]*domain.StagedFile, error) {
	query := `
		SELECT id, source_id, filename, format, row_count, status, error, payload, created_at
		FROM staged_files WHERE source_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at
	`
	rows, err := r.db.QueryxContext(ctx, query, sourceID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files for %s: %w", sourceID, err)
	}
	defer rows.Close()

	var files []*domain.StagedFile
	for rows.Next() {
		file, err := scanStaged(rows.Scan)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *StagedRepo) Get(ctx context.Context, id string) (*domain.StagedFile, error) {
	row := r.db.QueryRowxContext(ctx,
		`SELECT id, source_id, filename, format, row_count, status, error, payload, created_at
		 FROM staged_files WHERE id = $1`, id)
	file, err := scanStaged(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staged file %s not found", id)
	}
	return file, err
}

func (r *StagedRepo) SetStatus(ctx context.Context, id string, status domain.StagedFileStatus, message string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE staged_files SET status = $2, error = $3 WHERE id = $1`, id, status, message); err != nil {
		return fmt.Errorf("failed to update staged file %s: %w", id, err)
	}
	return nil
}

func (r *StagedRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM staged_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete staged file %s: %w", id, err)
	}
	return nil
}

func scanStaged(scan func(dest ...any) error) (*domain.StagedFile, error) {
	var file domain.StagedFile
	var payload []byte
	err := scan(&file.ID, &file.SourceID, &file.Filename, &file.Format, &file.RowCount,
		&file.Status, &file.Error, &payload, &file.CreatedAt)
	if err != nil {
		return nil, err
	}
	var body stagedPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("invalid staged payload for %s: %w", file.ID, err)
		}
	}
	file.Variants = body.Variants
	file.Header = body.Header
	return &file, nil
}
