// internal/validation/harness.go
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// CheckStructure runs the pre-import structural family against the raw grid.
// Failures abort the run before anything is parsed or written; the drop
// guard against the previous run is skipped for multi-file sources because a
// single staged file is always smaller than the combined total.
func CheckStructure(source *domain.Source, grid [][]string, previousRows int, multiFile bool, report *domain.ValidationReport) error {
	cfg := structuralConfig(source)
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	var failures []string
	fail := func(name, message string) {
		report.Add("structural", name, false, message)
		failures = append(failures, message)
	}
	pass := func(name string) {
		report.Add("structural", name, true, "")
	}

	if len(grid) == 0 {
		fail("file readable", "file contains no rows")
		return &domain.PreImportError{SourceID: source.ID, Failures: failures}
	}
	pass("file readable")

	if len(cfg.ExpectedColumns) > 0 {
		missing := missingColumns(grid, cfg.ExpectedColumns)
		if len(missing) > 0 {
			fail("expected columns", "columns not found: "+strings.Join(missing, ", "))
		} else {
			pass("expected columns")
		}
	}

	rows := len(grid)
	if cfg.MinRowCount > 0 {
		if rows < cfg.MinRowCount {
			fail("minimum rows", fmt.Sprintf("%d rows, need at least %d", rows, cfg.MinRowCount))
		} else {
			pass("minimum rows")
		}
	}
	if cfg.MaxRowCount > 0 {
		if rows > cfg.MaxRowCount {
			fail("maximum rows", fmt.Sprintf("%d rows, allowed at most %d", rows, cfg.MaxRowCount))
		} else {
			pass("maximum rows")
		}
	}

	if cfg.MaxRowDropPercent > 0 && previousRows > 0 && !multiFile {
		drop := percentDrop(previousRows, rows)
		if drop > cfg.MaxRowDropPercent {
			fail("row count drop", fmt.Sprintf("row count dropped %.1f%% (%d to %d), tolerance %.1f%%",
				drop, previousRows, rows, cfg.MaxRowDropPercent))
		} else {
			pass("row count drop")
		}
	}

	if len(failures) > 0 {
		return &domain.PreImportError{SourceID: source.ID, Failures: failures}
	}
	return nil
}

// CheckPostImport runs the checksum, distribution, delta, count and spot
// families after the write committed. Failures are reported, never rolled
// back.
func CheckPostImport(source *domain.Source, parsed, written []*domain.Variant, stats, previous *domain.ImportStats, now time.Time, report *domain.ValidationReport) {
	if source == nil || source.Validation == nil {
		return
	}
	cfg := source.Validation

	checkChecksum(cfg.Checksum, parsed, stats, report)
	checkDistribution(cfg.Distribution, written, report)
	checkDelta(cfg.Delta, stats, previous, report)
	checkCounts(cfg.Count, stats, report)
	runSpotChecks(cfg.SpotChecks, written, now, report)
}

func structuralConfig(source *domain.Source) *domain.StructuralChecks {
	if source == nil || source.Validation == nil {
		return nil
	}
	return source.Validation.Structural
}

// missingColumns scans the detected header row for each expected column by
// case-insensitive substring, mirroring how the row parser auto-maps.
func missingColumns(grid [][]string, expected []string) []string {
	headerIdx := formats.FindHeaderRow(grid)
	if headerIdx < 0 {
		headerIdx = 0
	}
	header := grid[headerIdx]

	var missing []string
	for _, want := range expected {
		found := false
		for _, cell := range header {
			if strings.Contains(strings.ToLower(cell), strings.ToLower(want)) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// checkChecksum compares what the parser saw with what was written. The
// tolerance covers legitimate pipeline attrition like dedupe and filters.
func checkChecksum(cfg *domain.ChecksumChecks, parsed []*domain.Variant, stats *domain.ImportStats, report *domain.ValidationReport) {
	if cfg == nil || !cfg.Enabled || stats == nil {
		return
	}

	parsedStock := 0
	styles := make(map[string]bool)
	colors := make(map[string]bool)
	for _, v := range parsed {
		parsedStock += v.Stock
		styles[strings.ToUpper(v.Style)] = true
		colors[strings.ToUpper(v.Color)] = true
	}

	compare := func(name string, fileValue, importedValue int) {
		if withinTolerance(fileValue, importedValue, cfg.TolerancePercent) {
			report.Add("checksum", name, true, "")
			return
		}
		report.Add("checksum", name, false,
			fmt.Sprintf("file had %d, import wrote %d (tolerance %.1f%%)", fileValue, importedValue, cfg.TolerancePercent))
	}

	compare("item count", len(parsed), stats.ItemCount)
	compare("total stock", parsedStock, stats.TotalStock)
	compare("unique styles", len(styles), stats.UniqueStyles)
	compare("unique colors", len(colors), stats.UniqueColors)
}

func checkDistribution(cfg *domain.DistributionChecks, written []*domain.Variant, report *domain.ValidationReport) {
	if cfg == nil || !cfg.Enabled || len(written) == 0 {
		return
	}

	stocked, priced, dated := 0, 0, 0
	for _, v := range written {
		if v.Stock > 0 {
			stocked++
		}
		if v.Price != nil {
			priced++
		}
		if v.ShipDate != "" {
			dated++
		}
	}
	total := float64(len(written))

	checkShare := func(name string, count int, min, max *float64) {
		if min == nil && max == nil {
			return
		}
		share := float64(count) / total * 100
		if min != nil && share < *min {
			report.Add("distribution", name, false, fmt.Sprintf("%.1f%% below minimum %.1f%%", share, *min))
			return
		}
		if max != nil && share > *max {
			report.Add("distribution", name, false, fmt.Sprintf("%.1f%% above maximum %.1f%%", share, *max))
			return
		}
		report.Add("distribution", name, true, "")
	}

	checkShare("stocked share", stocked, cfg.MinStockedPercent, cfg.MaxStockedPercent)
	checkShare("priced share", priced, cfg.MinPricedPercent, cfg.MaxPricedPercent)
	checkShare("ship-date share", dated, cfg.MinShipDatePercent, cfg.MaxShipDatePercent)
}

// checkDelta compares the run against the previous run's persisted stats.
// Growth is never flagged; only drops are bounded.
func checkDelta(cfg *domain.DeltaChecks, stats, previous *domain.ImportStats, report *domain.ValidationReport) {
	if cfg == nil || !cfg.Enabled || stats == nil || previous == nil {
		return
	}

	checkDrop := func(name string, prev, current int, maxDrop float64) {
		if maxDrop <= 0 || prev == 0 {
			return
		}
		drop := percentDrop(prev, current)
		if drop > maxDrop {
			report.Add("delta", name, false,
				fmt.Sprintf("dropped %.1f%% (%d to %d), tolerance %.1f%%", drop, prev, current, maxDrop))
			return
		}
		report.Add("delta", name, true, "")
	}

	checkDrop("item count", previous.ItemCount, stats.ItemCount, cfg.MaxItemDropPercent)
	checkDrop("total stock", previous.TotalStock, stats.TotalStock, cfg.MaxStockDropPercent)
	checkDrop("unique styles", previous.UniqueStyles, stats.UniqueStyles, cfg.MaxStyleDropPercent)
}

func checkCounts(cfg *domain.CountChecks, stats *domain.ImportStats, report *domain.ValidationReport) {
	if cfg == nil || !cfg.Enabled || stats == nil {
		return
	}

	bound := func(name string, value int, min, max *int) {
		if min == nil && max == nil {
			return
		}
		if min != nil && value < *min {
			report.Add("count", name, false, fmt.Sprintf("%d below minimum %d", value, *min))
			return
		}
		if max != nil && value > *max {
			report.Add("count", name, false, fmt.Sprintf("%d above maximum %d", value, *max))
			return
		}
		report.Add("count", name, true, "")
	}

	bound("items", stats.ItemCount, cfg.MinItems, cfg.MaxItems)
	bound("styles", stats.UniqueStyles, cfg.MinStyles, cfg.MaxStyles)
	bound("future-stock items", stats.FutureStockCount, nil, cfg.MaxFutureStock)
	bound("discontinued items", stats.DiscontinuedCount, nil, cfg.MaxDiscontinued)
}

// runSpotChecks pins known variants: each check finds candidates by style
// (and color/size when given) and asserts the configured condition.
func runSpotChecks(checks []domain.SpotCheck, written []*domain.Variant, now time.Time, report *domain.ValidationReport) {
	for _, check := range checks {
		name := spotName(check)
		match := findSpot(written, check, now)
		if check.Condition == domain.SpotExists || match == nil {
			passed := match != nil
			msg := ""
			if !passed {
				msg = "no variant satisfied the condition"
			}
			report.Add("spot", name, passed, msg)
			continue
		}
		report.Add("spot", name, true, "")
	}
}

// findSpot returns a variant matching the identity fields AND the condition,
// or nil. For SpotExists any identity match satisfies.
func findSpot(written []*domain.Variant, check domain.SpotCheck, now time.Time) *domain.Variant {
	for _, v := range written {
		if !strings.EqualFold(v.Style, check.Style) {
			continue
		}
		if check.Color != "" && !strings.EqualFold(v.Color, check.Color) {
			continue
		}
		if check.Size != "" && !strings.EqualFold(v.Size, check.Size) {
			continue
		}
		if spotConditionHolds(v, check.Condition, now) {
			return v
		}
	}
	return nil
}

func spotConditionHolds(v *domain.Variant, cond domain.SpotCheckCondition, now time.Time) bool {
	switch cond {
	case domain.SpotExists:
		return true
	case domain.SpotStockPositive:
		return v.Stock > 0
	case domain.SpotHasFutureDate:
		return v.HasValidFutureShipDate(now)
	case domain.SpotDiscontinued:
		return v.Discontinued
	case domain.SpotHasPrice:
		return v.Price != nil && *v.Price > 0
	default:
		return false
	}
}

func spotName(check domain.SpotCheck) string {
	parts := []string{check.Style}
	if check.Color != "" {
		parts = append(parts, check.Color)
	}
	if check.Size != "" {
		parts = append(parts, check.Size)
	}
	return strings.Join(parts, "/") + " " + string(check.Condition)
}

func withinTolerance(expected, actual int, tolerancePercent float64) bool {
	if expected == actual {
		return true
	}
	if expected == 0 {
		return false
	}
	diff := float64(expected - actual)
	if diff < 0 {
		diff = -diff
	}
	return diff/float64(expected)*100 <= tolerancePercent
}

func percentDrop(prev, current int) float64 {
	if prev <= 0 || current >= prev {
		return 0
	}
	return float64(prev-current) / float64(prev) * 100
}
