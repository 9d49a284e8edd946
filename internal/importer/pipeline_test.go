package importer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

type learnedFormat struct {
	format  string
	enabled bool
}

type fakeSources struct {
	sources  map[string]*domain.Source
	learned  []learnedFormat
	lastSync map[string]time.Time
}

func (f *fakeSources) GetByID(_ context.Context, id string) (*domain.Source, error) {
	source, ok := f.sources[id]
	if !ok {
		return nil, domain.ErrSourceNotFound
	}
	return source, nil
}

func (f *fakeSources) List(_ context.Context) ([]*domain.Source, error) {
	var out []*domain.Source
	for _, s := range f.sources {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSources) Save(_ context.Context, source *domain.Source) error {
	f.sources[source.ID] = source
	return nil
}

func (f *fakeSources) SaveLearnedFormat(_ context.Context, _, format string, enabled bool) error {
	f.learned = append(f.learned, learnedFormat{format: format, enabled: enabled})
	return nil
}

func (f *fakeSources) TouchLastSync(_ context.Context, id string, at time.Time) error {
	if f.lastSync == nil {
		f.lastSync = make(map[string]time.Time)
	}
	f.lastSync[id] = at
	return nil
}

type fakeInventory struct {
	existing      int
	replaced      []*domain.InventoryItem
	upserted      []*domain.InventoryItem
	deletedStyles []string
}

func (f *fakeInventory) ReplaceAll(_ context.Context, _ string, items []*domain.InventoryItem) error {
	f.replaced = items
	return nil
}

func (f *fakeInventory) Upsert(_ context.Context, _ string, items []*domain.InventoryItem, _ bool) (int, error) {
	f.upserted = items
	return len(items), nil
}

func (f *fakeInventory) CountBySource(_ context.Context, _ string) (int, error) {
	return f.existing, nil
}

func (f *fakeInventory) ListBySource(_ context.Context, _ string) ([]*domain.InventoryItem, error) {
	return f.replaced, nil
}

func (f *fakeInventory) DeleteStyles(_ context.Context, _ string, styles []string) (int, error) {
	f.deletedStyles = append(f.deletedStyles, styles...)
	return len(styles), nil
}

func (f *fakeInventory) MarkSaleOwned(_ context.Context, _ string, _ []string) error {
	return nil
}

type fakeRegistry struct {
	active []string
	synced []string
}

func (f *fakeRegistry) Sync(_ context.Context, _ string, styles []string) error {
	f.synced = styles
	return nil
}

func (f *fakeRegistry) ActiveStyles(_ context.Context, _ string) ([]string, error) {
	return f.active, nil
}

type fakeStats struct {
	latest   *domain.ImportStats
	inserted []*domain.ImportStats
}

func (f *fakeStats) Insert(_ context.Context, stats *domain.ImportStats) error {
	f.inserted = append(f.inserted, stats)
	return nil
}

func (f *fakeStats) Latest(_ context.Context, _ string) (*domain.ImportStats, error) {
	return f.latest, nil
}

type fakeRuns struct {
	created  []*domain.ImportRun
	statuses map[string]domain.RunStatus
	counts   map[string]int
}

func (f *fakeRuns) init() {
	if f.statuses == nil {
		f.statuses = make(map[string]domain.RunStatus)
		f.counts = make(map[string]int)
	}
}

func (f *fakeRuns) Create(_ context.Context, run *domain.ImportRun) error {
	f.init()
	f.created = append(f.created, run)
	f.statuses[run.ID] = run.Status
	return nil
}

func (f *fakeRuns) Complete(_ context.Context, runID string, itemCount int) error {
	f.init()
	f.statuses[runID] = domain.RunCompleted
	f.counts[runID] = itemCount
	return nil
}

func (f *fakeRuns) Fail(_ context.Context, runID string, status domain.RunStatus, _ string) error {
	f.init()
	f.statuses[runID] = status
	return nil
}

func (f *fakeRuns) ListBySource(_ context.Context, _ string, _ int) ([]*domain.ImportRun, error) {
	return f.created, nil
}

type fakeStaged struct {
	files    []*domain.StagedFile
	statuses map[string]domain.StagedFileStatus
}

func (f *fakeStaged) Save(_ context.Context, file *domain.StagedFile) error {
	f.files = append(f.files, file)
	return nil
}

func (f *fakeStaged) ListBySource(_ context.Context, _ string, status domain.StagedFileStatus) ([]*domain.StagedFile, error) {
	var out []*domain.StagedFile
	for _, file := range f.files {
		if file.Status == status {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeStaged) Get(_ context.Context, id string) (*domain.StagedFile, error) {
	for _, file := range f.files {
		if file.ID == id {
			return file, nil
		}
	}
	return nil, domain.ErrSourceNotFound
}

func (f *fakeStaged) SetStatus(_ context.Context, id string, status domain.StagedFileStatus, _ string) error {
	if f.statuses == nil {
		f.statuses = make(map[string]domain.StagedFileStatus)
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeStaged) Delete(_ context.Context, _ string) error { return nil }

type fakeAlertSink struct {
	alerts []Alert
}

func (f *fakeAlertSink) Notify(_ context.Context, alert Alert) {
	f.alerts = append(f.alerts, alert)
}

type pipelineFixture struct {
	pipeline  *Pipeline
	sources   *fakeSources
	inventory *fakeInventory
	registry  *fakeRegistry
	stats     *fakeStats
	runs      *fakeRuns
	staged    *fakeStaged
	alerts    *fakeAlertSink
}

func newPipelineFixture(source *domain.Source) *pipelineFixture {
	f := &pipelineFixture{
		sources:   &fakeSources{sources: map[string]*domain.Source{source.ID: source}},
		inventory: &fakeInventory{},
		registry:  &fakeRegistry{},
		stats:     &fakeStats{},
		runs:      &fakeRuns{},
		staged:    &fakeStaged{},
		alerts:    &fakeAlertSink{},
	}
	f.pipeline = &Pipeline{
		Sources:   f.sources,
		Inventory: f.inventory,
		Registry:  f.registry,
		Stats:     f.stats,
		Runs:      f.runs,
		Staged:    f.staged,
		Cleaner:   cleaning.NewCleaner(nil),
		Alerts:    f.alerts,
		State:     NewCoordinator(),
		Now:       func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
	}
	return f
}

func regularSource() *domain.Source {
	return &domain.Source{
		ID:              "src-1",
		Name:            "Jovani",
		Kind:            domain.SourceKindManual,
		Role:            domain.SourceRoleRegular,
		UpdateStrategy:  domain.UpdateFullSync,
		SafetyThreshold: DefaultSafetyThreshold,
	}
}

func TestPipeline_Import_FullSync(t *testing.T) {
	f := newPipelineFixture(regularSource())
	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n1001,Red,6,0\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, 2, result.ItemCount)
	require.Len(t, f.inventory.replaced, 2)
	assert.Equal(t, "Jovani 1001", f.inventory.replaced[0].Style)
	assert.Empty(t, f.inventory.upserted, "full_sync never upserts")

	require.Len(t, f.stats.inserted, 1)
	assert.Equal(t, 2, f.stats.inserted[0].ItemCount)
	assert.Equal(t, "Jovani", f.stats.inserted[0].Prefix)

	assert.Equal(t, domain.RunCompleted, f.runs.statuses[result.RunID])
	assert.Equal(t, 2, f.runs.counts[result.RunID])
	assert.False(t, f.pipeline.State.Running("src-1"), "the lock releases after the run")
	assert.False(t, f.sources.lastSync["src-1"].IsZero())
	assert.Empty(t, f.sources.learned, "the plain row layout is never saved")
}

func TestPipeline_Import_Upsert(t *testing.T) {
	source := regularSource()
	source.UpdateStrategy = domain.UpdateUpsert
	f := newPipelineFixture(source)
	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, f.inventory.upserted, 1)
	assert.Empty(t, f.inventory.replaced)
}

func TestPipeline_Import_SafetyBlock(t *testing.T) {
	f := newPipelineFixture(regularSource())
	f.inventory.existing = 1000
	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err, "a safety block is an outcome, not an error")

	assert.False(t, result.Success)
	require.NotNil(t, result.SafetyBlock)
	assert.True(t, result.SafetyBlock.Blocked)
	assert.Empty(t, f.inventory.replaced, "nothing is written on a block")
	assert.Empty(t, f.stats.inserted)
	assert.Equal(t, domain.RunBlocked, f.runs.statuses[result.RunID])
	assert.False(t, f.pipeline.State.Running("src-1"))

	require.Len(t, f.alerts.alerts, 1)
	assert.Equal(t, AlertSafetyBlock, f.alerts.alerts[0].Kind)
	assert.Equal(t, "src-1", f.alerts.alerts[0].SourceID)
}

func TestPipeline_Import_Busy(t *testing.T) {
	f := newPipelineFixture(regularSource())
	require.NoError(t, f.pipeline.State.StartImport("src-1"))

	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n"),
	}}
	_, err := f.pipeline.Import(context.Background(), "src-1", files)
	assert.ErrorIs(t, err, domain.ErrImportBusy)
}

func TestPipeline_Import_UnknownSource(t *testing.T) {
	f := newPipelineFixture(regularSource())
	_, err := f.pipeline.Import(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestPipeline_Import_NoFiles(t *testing.T) {
	f := newPipelineFixture(regularSource())
	_, err := f.pipeline.Import(context.Background(), "src-1", nil)

	var acqErr *domain.AcquisitionError
	assert.ErrorAs(t, err, &acqErr)
	assert.False(t, f.pipeline.State.Running("src-1"), "the lock is never taken without files")
}

func TestPipeline_Import_LearnsDetectedFormat(t *testing.T) {
	source := regularSource()
	source.Name = "Sherri Hill"
	source.StockTextMappings = map[string]int{"Yes": 3, "Last Piece": 1, "No": 0}
	f := newPipelineFixture(source)

	files := []domain.FeedFile{{
		Name: "availability.csv",
		Data: []byte("Style,Color,,,4,Special Date,6,Special Date\n55001,Ivory,,,Yes,,Last Piece,2026-07-15\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.ItemCount)

	require.Len(t, f.sources.learned, 1)
	assert.Equal(t, formats.FormatSherriHill, f.sources.learned[0].format)
	assert.True(t, f.sources.learned[0].enabled)
}

func TestPipeline_Import_CorrectsStaleLearnedFormat(t *testing.T) {
	source := regularSource()
	source.Format = &domain.FormatConfig{Enabled: true, Format: formats.FormatTarikEdiz}
	f := newPipelineFixture(source)

	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, f.sources.learned, 1)
	assert.Equal(t, formats.FormatRow, f.sources.learned[0].format)
	assert.False(t, f.sources.learned[0].enabled, "the correction is saved disabled for review")
}

func TestPipeline_Import_SaleOwnedStylesExcluded(t *testing.T) {
	source := regularSource()
	source.LinkedSaleSourceID = "sale-1"
	f := newPipelineFixture(source)
	f.registry.active = []string{"JOVANI 1001"}

	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n1002,Red,4,2\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, f.inventory.replaced, 1)
	assert.Equal(t, "Jovani 1002", f.inventory.replaced[0].Style)
	assert.Equal(t, []string{"JOVANI 1001"}, f.inventory.deletedStyles,
		"persisted rows for owned styles are removed too")
	assert.Equal(t, 1, result.RuleStats.SaleStylesExcluded)
}

func TestPipeline_Import_SaleSourceRegistersStyles(t *testing.T) {
	source := regularSource()
	source.Role = domain.SourceRoleSale
	source.Name = "Mori Lee Sale"
	f := newPipelineFixture(source)

	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n1001,Red,6,2\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, []string{"MORI LEE 1001"}, f.registry.synced,
		"sale sources register their style set, deduplicated and prefixed")
}

func TestPipeline_ImportStaged(t *testing.T) {
	f := newPipelineFixture(regularSource())
	f.staged.files = []*domain.StagedFile{
		{
			ID:       "file-a",
			SourceID: "src-1",
			Status:   domain.StagedStatusStaged,
			Variants: []*domain.Variant{{Style: "Tarik Ediz 9001", Color: "Red", Size: "4", Stock: 2}},
		},
		{
			ID:       "file-b",
			SourceID: "src-1",
			Status:   domain.StagedStatusStaged,
			Variants: []*domain.Variant{{Style: "Ediz 9002", Color: "Navy", Size: "6", Stock: 1}},
		},
		{
			ID:       "file-c",
			SourceID: "src-1",
			Status:   domain.StagedStatusImported,
			Variants: []*domain.Variant{{Style: "Old 1", Color: "Red", Size: "4", Stock: 1}},
		},
	}

	result, err := f.pipeline.ImportStaged(context.Background(), "src-1")
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, f.inventory.replaced, 2, "only staged files combine; imported ones are done")
	assert.Equal(t, "Tarik Ediz 9001", f.inventory.replaced[0].Style,
		"staged variants keep their staging-time prefix")

	assert.Equal(t, domain.StagedStatusImported, f.staged.statuses["file-a"])
	assert.Equal(t, domain.StagedStatusImported, f.staged.statuses["file-b"])
	_, reused := f.staged.statuses["file-c"]
	assert.False(t, reused)
	assert.False(t, f.pipeline.State.Running("src-1"))
}

func TestPipeline_ImportStaged_NothingStaged(t *testing.T) {
	f := newPipelineFixture(regularSource())

	_, err := f.pipeline.ImportStaged(context.Background(), "src-1")
	var acqErr *domain.AcquisitionError
	assert.ErrorAs(t, err, &acqErr)
}

func TestPipeline_Import_StructuralGuard(t *testing.T) {
	source := regularSource()
	source.Validation = &domain.ValidationConfig{
		Structural: &domain.StructuralChecks{
			Enabled:     true,
			MinRowCount: 100,
		},
	}
	f := newPipelineFixture(source)

	files := []domain.FeedFile{{
		Name: "feed.csv",
		Data: []byte("Style,Color,Size,Stock\n1001,Red,4,3\n"),
	}}

	result, err := f.pipeline.Import(context.Background(), "src-1", files)
	var preErr *domain.PreImportError
	require.ErrorAs(t, err, &preErr)
	assert.False(t, result.Success)
	assert.NotNil(t, result.Validation)
	assert.Empty(t, f.inventory.replaced)
	assert.Equal(t, domain.RunFailed, f.runs.statuses[f.runs.created[0].ID])

	require.Len(t, f.alerts.alerts, 1)
	assert.Equal(t, AlertPreImportFailure, f.alerts.alerts[0].Kind)
	assert.NotEmpty(t, f.alerts.alerts[0].Details)
}
