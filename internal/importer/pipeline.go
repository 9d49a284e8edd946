// internal/importer/pipeline.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stylefeed/inventory-importer/internal/cache"
	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
	"github.com/stylefeed/inventory-importer/internal/repository"
	"github.com/stylefeed/inventory-importer/internal/rules"
	"github.com/stylefeed/inventory-importer/internal/storage"
	"github.com/stylefeed/inventory-importer/internal/validation"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

// Pipeline is the fixed import sequence every acquisition path feeds into.
// The historical adapters had each grown their own step subset; this is the
// single source of truth now.
type Pipeline struct {
	Sources   repository.SourceRepository
	Inventory repository.InventoryRepository
	Registry  repository.RegistryRepository
	Stats     repository.StatsRepository
	Runs      repository.RunRepository
	Staged    repository.StagedRepository
	ColorMaps repository.ColorMapRepository
	Colors    cache.ColorMapCache
	Prices    cache.PriceCache
	Cleaner   *cleaning.Cleaner
	Archive   storage.ObjectStorage
	Alerts    AlertSink

	State *Coordinator

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Import runs the full sequence for one or more raw feed buffers. Multiple
// buffers are consolidated into one grid before detection.
func (p *Pipeline) Import(ctx context.Context, sourceID string, files []domain.FeedFile) (*domain.ImportResult, error) {
	source, err := p.Sources.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &domain.AcquisitionError{SourceID: sourceID, Channel: string(source.Kind), Err: fmt.Errorf("no files supplied")}
	}

	if err := p.State.StartImport(sourceID); err != nil {
		return nil, err
	}

	run := p.beginRun(ctx, source)
	result, err := p.importFiles(ctx, source, run, files)
	p.settleRun(ctx, source, run, result, err)
	return result, err
}

func (p *Pipeline) importFiles(ctx context.Context, source *domain.Source, run *domain.ImportRun, files []domain.FeedFile) (*domain.ImportResult, error) {
	report := &domain.ValidationReport{}
	ruleStats := &domain.RuleStats{}
	now := p.now()

	p.archiveFiles(ctx, source, files, now)

	// Step 1: read and consolidate buffers.
	grid, err := p.consolidate(files)
	if err != nil {
		return nil, err
	}

	previous, err := p.Stats.Latest(ctx, source.ID)
	if err != nil {
		logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("previous stats unavailable")
		previous = nil
	}
	previousRows := 0
	if previous != nil {
		previousRows = previous.ItemCount
	}
	multiFile := len(files) > 1 || (source.Email != nil && source.Email.MultiFileMode)
	if err := validation.CheckStructure(source, grid, previousRows, multiFile, report); err != nil {
		var preErr *domain.PreImportError
		if errors.As(err, &preErr) {
			p.notify(ctx, Alert{
				SourceID: source.ID,
				RunID:    run.ID,
				Kind:     AlertPreImportFailure,
				Message:  "pre-import validation failed",
				Details:  preErr.Failures,
			})
		}
		return &domain.ImportResult{Success: false, Validation: report, Error: err.Error()}, err
	}

	// Steps 2 and 3: detect the layout and parse.
	variants, format, err := p.detectAndParse(ctx, source, files[0].Name, grid)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, &domain.ParseError{Filename: files[0].Name, Err: domain.ErrNoRows}
	}
	logger.Log.Info().
		Str("source_id", source.ID).
		Str("format", format).
		Int("variants", len(variants)).
		Msg("feed parsed")

	// Step 4: style cleaning rules.
	for _, v := range variants {
		v.Style = cleaning.CleanStyle(v.Style, source.Cleaning)
	}

	return p.runSteps(ctx, source, run, variants, previous, report, ruleStats, stepOptions{
		fileID: run.ID,
	})
}

// ImportStaged is the combine path: every staged file for the source is fed
// to the pipeline as pre-consolidated items. Staging already parsed,
// cleaned and prefixed them, so steps 1-4 and 8 are skipped.
func (p *Pipeline) ImportStaged(ctx context.Context, sourceID string) (*domain.ImportResult, error) {
	source, err := p.Sources.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	staged, err := p.Staged.ListBySource(ctx, sourceID, domain.StagedStatusStaged)
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return nil, &domain.AcquisitionError{SourceID: sourceID, Channel: "combine", Err: fmt.Errorf("no staged files")}
	}

	if err := p.State.StartImport(sourceID); err != nil {
		return nil, err
	}

	run := p.beginRun(ctx, source)

	var variants []*domain.Variant
	var stagedIDs []string
	for _, file := range staged {
		variants = append(variants, file.Variants...)
		stagedIDs = append(stagedIDs, file.ID)
	}

	previous, err := p.Stats.Latest(ctx, sourceID)
	if err != nil {
		previous = nil
	}

	report := &domain.ValidationReport{}
	ruleStats := &domain.RuleStats{}
	result, err := p.runSteps(ctx, source, run, variants, previous, report, ruleStats, stepOptions{
		fileID:     run.ID,
		combined:   true,
		stagedIDs:  stagedIDs,
		skipPrefix: true,
	})
	p.settleRun(ctx, source, run, result, err)
	return result, err
}

type stepOptions struct {
	fileID     string
	combined   bool
	stagedIDs  []string
	skipPrefix bool
}

// runSteps is the shared tail of the sequence: filters, transforms, business
// rules, safety nets and the store write.
func (p *Pipeline) runSteps(ctx context.Context, source *domain.Source, run *domain.ImportRun, variants []*domain.Variant, previous *domain.ImportStats, report *domain.ValidationReport, ruleStats *domain.RuleStats, opts stepOptions) (*domain.ImportResult, error) {
	now := p.now()
	parsed := append([]*domain.Variant(nil), variants...)

	// Step 5: parser skip flags.
	variants = applySkipFilter(variants)

	// Step 6: discontinued with zero stock.
	variants = dropDiscontinuedZeroStock(variants, ruleStats)

	// Step 7: identity dedupe, then expire stale ship-date promises.
	variants = cleaning.Dedupe(variants, ruleStats)
	expirePastShipDates(variants, source, now)

	// Step 8: style prefix (staged items were prefixed at staging time).
	if !opts.skipPrefix {
		ApplyPrefix(variants, source)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 9: cleaner, with advisor suggestions persisted to the global
	// mapping table.
	variants, suggestions := p.Cleaner.Clean(ctx, variants, source, ruleStats)
	p.persistSuggestions(ctx, suggestions)

	// Step 10: the ordered rule engine.
	variants = rules.ApplyImportRules(variants, source, ruleStats, now)

	// Step 11: authoritative color-mapping pass.
	applyColorMappings(ctx, p.Colors, variants, ruleStats)

	// Step 12: per-source variant rules, then size limits and the optional
	// zero-stock cull.
	variants = rules.ExpandVariantSizes(variants, source.VariantRules, ruleStats)
	variants = rules.ApplySizeLimits(variants, source.SizeLimit, ruleStats)
	variants = filterZeroStock(variants, source, now)

	// Step 13: price-based size expansion; clones re-pass the size limits.
	variants = rules.ApplyPriceExpansion(ctx, variants, source, p.Prices, ruleStats)
	variants = rules.ApplySizeLimits(variants, source.SizeLimit, ruleStats)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 14: sale feeds own their styles.
	variants, err := excludeSaleOwnedStyles(ctx, p.Registry, p.Inventory, source, variants, ruleStats)
	if err != nil {
		return nil, err
	}

	// Step 15: sale pricing and compare-at stamping.
	applySalePricing(ctx, p.Prices, source, variants, ruleStats)

	// Step 16: display messages.
	rules.RenderStockInfo(variants, source.StockInfo, now)

	// Step 17: safety nets.
	existing, err := p.Inventory.CountBySource(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	safety := CheckSafety(source, existing, len(variants))
	if safety.Blocked {
		logger.Log.Warn().
			Str("source_id", source.ID).
			Str("reason", safety.Message).
			Float64("drop_percent", safety.DropPercent).
			Msg("import blocked by safety net")
		p.notify(ctx, Alert{
			SourceID: source.ID,
			RunID:    run.ID,
			Kind:     AlertSafetyBlock,
			Message:  safety.Message,
		})
		return &domain.ImportResult{
			Success:     false,
			RunID:       run.ID,
			RuleStats:   ruleStats,
			Validation:  report,
			SafetyBlock: safety,
			Error:       safety.Message,
		}, nil
	}

	// Step 18: the store write.
	items := make([]*domain.InventoryItem, 0, len(variants))
	for _, v := range variants {
		items = append(items, domain.ItemFromVariant(source.ID, opts.fileID, v))
	}
	if source.UpdateStrategy == domain.UpdateFullSync {
		if err := p.Inventory.ReplaceAll(ctx, source.ID, items); err != nil {
			return nil, err
		}
	} else {
		clearOwnership := source.Role == domain.SourceRoleRegular && !source.KeepSaleOwnership
		if _, err := p.Inventory.Upsert(ctx, source.ID, items, clearOwnership); err != nil {
			return nil, err
		}
	}

	// Step 19: stats.
	stats := domain.BuildImportStats(source.ID, source.Kind, source.PrefixBase(), variants, now)
	if err := p.Stats.Insert(ctx, stats); err != nil {
		logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not persist import stats")
	}
	if p.Prices != nil {
		if err := p.Prices.Prime(ctx, source.ID, items); err != nil {
			logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not prime price cache")
		}
	}

	// Step 20: post-import bookkeeping.
	if err := registerSaleStyles(ctx, p.Registry, source, variants); err != nil {
		logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not register sale styles")
	}
	if err := p.Sources.TouchLastSync(ctx, source.ID, now); err != nil {
		logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not update last sync")
	}
	for _, id := range opts.stagedIDs {
		if err := p.Staged.SetStatus(ctx, id, domain.StagedStatusImported, ""); err != nil {
			logger.Log.Warn().Err(err).Str("staged_id", id).Msg("could not mark staged file imported")
		}
	}

	validation.CheckPostImport(source, parsed, variants, stats, previous, now, report)

	return &domain.ImportResult{
		Success:    true,
		ItemCount:  len(items),
		FileID:     opts.fileID,
		RunID:      run.ID,
		Stats:      stats,
		RuleStats:  ruleStats,
		Validation: report,
	}, nil
}

// consolidate reads every buffer into a grid and merges them: the first
// file's rows wholesale, then each following file's rows minus its header.
func (p *Pipeline) consolidate(files []domain.FeedFile) ([][]string, error) {
	var grid [][]string
	for i, file := range files {
		g, err := formats.ReadGrid(file.Name, file.Data)
		if err != nil {
			return nil, &domain.ParseError{Filename: file.Name, Err: err}
		}
		if i == 0 || len(g) == 0 {
			grid = append(grid, g...)
			continue
		}
		grid = append(grid, g[1:]...)
	}
	return grid, nil
}

// detectAndParse runs the layout detector with the learner semantics: a
// saved layout short-circuits probing; a saved layout that stops yielding
// items and is no longer confirmed falls back to the row parser, and the
// correction is saved.
func (p *Pipeline) detectAndParse(ctx context.Context, source *domain.Source, filename string, grid [][]string) ([]*domain.Variant, string, error) {
	cfg := formats.ParseConfig{Source: source, Filename: filename}

	if source.Format != nil && source.Format.Enabled && source.Format.Format != "" {
		saved := source.Format.Format
		variants, err := formats.Parse(saved, grid, cfg)
		if err == nil && len(variants) > 0 {
			return variants, saved, nil
		}
		if detected := formats.Detect(source.Name, filename, grid); detected == saved {
			// Detector still confirms the layout; the file is just empty.
			return variants, saved, err
		}
		variants, err = formats.Parse(formats.FormatRow, grid, cfg)
		if err != nil || len(variants) == 0 {
			return variants, formats.FormatRow, err
		}
		if saveErr := p.Sources.SaveLearnedFormat(ctx, source.ID, formats.FormatRow, false); saveErr != nil {
			logger.Log.Warn().Err(saveErr).Str("source_id", source.ID).Msg("could not correct learned format")
		}
		return variants, formats.FormatRow, nil
	}

	format := formats.Detect(source.Name, filename, grid)
	variants, err := formats.Parse(format, grid, cfg)
	if err != nil {
		return nil, format, err
	}
	if format != "" && format != formats.FormatRow && len(variants) > 0 {
		if saveErr := p.Sources.SaveLearnedFormat(ctx, source.ID, format, true); saveErr != nil {
			logger.Log.Warn().Err(saveErr).Str("source_id", source.ID).Msg("could not save learned format")
		}
	}
	if format == "" {
		format = formats.FormatRow
	}
	return variants, format, nil
}

func (p *Pipeline) notify(ctx context.Context, alert Alert) {
	if p.Alerts == nil {
		return
	}
	p.Alerts.Notify(ctx, alert)
}

func (p *Pipeline) persistSuggestions(ctx context.Context, suggestions []cleaning.ColorSuggestion) {
	if len(suggestions) == 0 || p.ColorMaps == nil {
		return
	}
	for _, s := range suggestions {
		err := p.ColorMaps.Upsert(ctx, &domain.ColorMapping{BadColor: s.Bad, GoodColor: s.Good})
		if err != nil {
			logger.Log.Warn().Err(err).Str("bad", s.Bad).Msg("could not persist color suggestion")
		}
	}
	if p.Colors != nil {
		if err := p.Colors.Invalidate(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("could not invalidate color map cache")
		}
	}
}

// archiveFiles copies the raw buffers to the archive bucket. Best effort.
func (p *Pipeline) archiveFiles(ctx context.Context, source *domain.Source, files []domain.FeedFile, now time.Time) {
	if p.Archive == nil {
		return
	}
	for _, file := range files {
		key := fmt.Sprintf("feeds/%s/%s/%s", source.ID, now.Format("2006-01-02"), file.Name)
		if err := p.Archive.UploadObject(ctx, key, file.Data); err != nil {
			logger.Log.Warn().Err(err).Str("key", key).Msg("raw feed archive failed")
		}
	}
}

func (p *Pipeline) beginRun(ctx context.Context, source *domain.Source) *domain.ImportRun {
	run := &domain.ImportRun{
		ID:        uuid.NewString(),
		SourceID:  source.ID,
		Status:    domain.RunRunning,
		StartedAt: p.now(),
	}
	if err := p.Runs.Create(ctx, run); err != nil {
		logger.Log.Warn().Err(err).Str("source_id", source.ID).Msg("could not record import run")
	}
	return run
}

// settleRun closes out the run row and releases the per-source lock.
func (p *Pipeline) settleRun(ctx context.Context, source *domain.Source, run *domain.ImportRun, result *domain.ImportResult, err error) {
	switch {
	case err != nil:
		if failErr := p.Runs.Fail(ctx, run.ID, domain.RunFailed, err.Error()); failErr != nil {
			logger.Log.Warn().Err(failErr).Str("run_id", run.ID).Msg("could not mark run failed")
		}
		p.State.FailImport(source.ID, err.Error())
	case result != nil && result.SafetyBlock != nil && result.SafetyBlock.Blocked:
		if failErr := p.Runs.Fail(ctx, run.ID, domain.RunBlocked, result.SafetyBlock.Message); failErr != nil {
			logger.Log.Warn().Err(failErr).Str("run_id", run.ID).Msg("could not mark run blocked")
		}
		p.State.FailImport(source.ID, result.SafetyBlock.Message)
	default:
		count := 0
		if result != nil {
			count = result.ItemCount
		}
		if compErr := p.Runs.Complete(ctx, run.ID, count); compErr != nil {
			logger.Log.Warn().Err(compErr).Str("run_id", run.ID).Msg("could not mark run complete")
		}
		p.State.CompleteImport(source.ID, count)
	}
}
