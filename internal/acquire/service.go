// internal/acquire/service.go
package acquire

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// Service routes each acquisition channel into the shared pipeline. Staging
// and combining live here because they sit between acquisition and import.
type Service struct {
	Pipeline *importer.Pipeline
	Staged   repository.StagedRepository
	URL      *URLFetcher
	Email    *EmailFetcher
}

// ImportManual feeds uploaded buffers straight into the pipeline.
func (s *Service) ImportManual(ctx context.Context, sourceID string, files []domain.FeedFile) (*domain.ImportResult, error) {
	return s.Pipeline.Import(ctx, sourceID, files)
}

// ImportURL pulls the source's configured URL and imports the body.
func (s *Service) ImportURL(ctx context.Context, sourceID string) (*domain.ImportResult, error) {
	source, err := s.Pipeline.Sources.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	file, err := s.URL.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.Pipeline.Import(ctx, sourceID, []domain.FeedFile{file})
}

// ImportEmail harvests matching mail and imports it. Multi-file sources
// stage each file and combine once the expected count is reached. No
// matching mail returns ErrNoMatchingMail so the retry queue can reschedule.
func (s *Service) ImportEmail(ctx context.Context, sourceID string) (*domain.ImportResult, error) {
	source, err := s.Pipeline.Sources.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	files, err := s.Email.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrNoMatchingMail
	}

	multiFile := source.Email != nil && source.Email.MultiFileMode
	if !multiFile && len(files) == 1 {
		return s.Pipeline.Import(ctx, sourceID, files)
	}

	for _, file := range files {
		if _, err := s.Stage(ctx, source, file); err != nil {
			logger.Log.Warn().Err(err).Str("source_id", sourceID).Str("file", file.Name).Msg("staging failed")
		}
	}

	staged, err := s.Staged.ListBySource(ctx, sourceID, domain.StagedStatusStaged)
	if err != nil {
		return nil, err
	}
	expected := 0
	if source.Email != nil {
		expected = source.Email.ExpectedFiles
	}
	if expected > 0 && len(staged) < expected {
		logger.Log.Info().
			Str("source_id", sourceID).
			Int("staged", len(staged)).
			Int("expected", expected).
			Msg("waiting for remaining files")
		return &domain.ImportResult{Success: true, ItemCount: 0}, nil
	}
	return s.Pipeline.ImportStaged(ctx, sourceID)
}

// Combine imports everything currently staged for the source.
func (s *Service) Combine(ctx context.Context, sourceID string) (*domain.ImportResult, error) {
	return s.Pipeline.ImportStaged(ctx, sourceID)
}

// Stage parses one file immediately and stores its variants for a later
// combine. Styles are cleaned and prefixed here so staged items match what
// a direct import would have produced.
func (s *Service) Stage(ctx context.Context, source *domain.Source, file domain.FeedFile) (*domain.StagedFile, error) {
	grid, err := formats.ReadGrid(file.Name, file.Data)
	if err != nil {
		return nil, &domain.ParseError{Filename: file.Name, Err: err}
	}

	cfg := formats.ParseConfig{Source: source, Filename: file.Name}
	format := ""
	if source.Format != nil && source.Format.Enabled {
		format = source.Format.Format
	}
	if format == "" {
		format = formats.Detect(source.Name, file.Name, grid)
	}
	variants, err := formats.Parse(format, grid, cfg)
	if err != nil {
		return nil, &domain.ParseError{Filename: file.Name, Err: err}
	}
	if format == "" {
		format = formats.FormatRow
	}

	for _, v := range variants {
		v.Style = cleaning.CleanStyle(v.Style, source.Cleaning)
	}
	importer.ApplyPrefix(variants, source)

	var header []string
	if len(grid) > 0 {
		header = grid[0]
	}
	staged := &domain.StagedFile{
		ID:        uuid.NewString(),
		SourceID:  source.ID,
		Filename:  file.Name,
		Format:    format,
		RowCount:  len(grid),
		Status:    domain.StagedStatusStaged,
		Variants:  variants,
		Header:    header,
		CreatedAt: time.Now(),
	}
	if err := s.Staged.Save(ctx, staged); err != nil {
		return nil, err
	}
	logger.Log.Info().
		Str("source_id", source.ID).
		Str("file", file.Name).
		Str("format", format).
		Int("variants", len(variants)).
		Msg("file staged")
	return staged, nil
}
