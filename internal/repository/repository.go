// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// SourceRepository stores feed source configurations.
type SourceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]*domain.Source, error)
	Save(ctx context.Context, source *domain.Source) error
	SaveLearnedFormat(ctx context.Context, id, format string, enabled bool) error
	TouchLastSync(ctx context.Context, id string, at time.Time) error
}

// InventoryRepository stores imported variants per source.
type InventoryRepository interface {
	// ReplaceAll swaps the source's items atomically: delete plus insert in
	// one transaction.
	ReplaceAll(ctx context.Context, sourceID string, items []*domain.InventoryItem) error
	// Upsert merges items by (source_id, sku) and returns how many rows
	// committed. clearSaleOwnership releases sale_owns_style on touched rows.
	Upsert(ctx context.Context, sourceID string, items []*domain.InventoryItem, clearSaleOwnership bool) (int, error)
	CountBySource(ctx context.Context, sourceID string) (int, error)
	ListBySource(ctx context.Context, sourceID string) ([]*domain.InventoryItem, error)
	// DeleteStyles removes a regular source's rows for styles a sale feed now
	// owns, and returns the removed count.
	DeleteStyles(ctx context.Context, sourceID string, styles []string) (int, error)
	// MarkSaleOwned flags rows of the given styles as owned by a sale feed.
	MarkSaleOwned(ctx context.Context, sourceID string, styles []string) error
}

// RegistryRepository tracks the styles each sale source currently carries.
type RegistryRepository interface {
	// Sync upserts the run's styles as active and deactivates the rest for
	// this sale source.
	Sync(ctx context.Context, saleSourceID string, styles []string) error
	ActiveStyles(ctx context.Context, saleSourceID string) ([]string, error)
}

// StatsRepository persists per-run ImportStats, consumed by the delta checks.
type StatsRepository interface {
	Insert(ctx context.Context, stats *domain.ImportStats) error
	Latest(ctx context.Context, sourceID string) (*domain.ImportStats, error)
}

// RunRepository records import-run lifecycle for the ops surface.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	Complete(ctx context.Context, runID string, itemCount int) error
	Fail(ctx context.Context, runID string, status domain.RunStatus, message string) error
	ListBySource(ctx context.Context, sourceID string, limit int) ([]*domain.ImportRun, error)
}

// StagedRepository holds files waiting for a multi-file combine.
type StagedRepository interface {
	Save(ctx context.Context, file *domain.StagedFile) error
	ListBySource(ctx context.Context, sourceID string, status domain.StagedFileStatus) ([]*domain.StagedFile, error)
	Get(ctx context.Context, id string) (*domain.StagedFile, error)
	SetStatus(ctx context.Context, id string, status domain.StagedFileStatus, message string) error
	Delete(ctx context.Context, id string) error
}

// ColorMapRepository is the global bad-to-good color mapping table.
type ColorMapRepository interface {
	All(ctx context.Context) ([]*domain.ColorMapping, error)
	Upsert(ctx context.Context, mapping *domain.ColorMapping) error
}
