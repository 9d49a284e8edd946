// internal/domain/result.go
package domain

// SafetyResult is the structured outcome of the pre-write guards. The store
// is never mutated when Blocked is true.
type SafetyResult struct {
	Blocked       bool    `json:"blocked"`
	Message       string  `json:"message,omitempty"`
	ExistingCount int     `json:"existingCount,omitempty"`
	NewCount      int     `json:"newCount,omitempty"`
	DropPercent   float64 `json:"dropPercent,omitempty"`
}

// RuleStats counts per-rule outcomes inside applyImportRules and the
// surrounding pipeline steps. Transform warnings land here instead of
// aborting the run.
type RuleStats struct {
	ValueReplacements    int      `json:"valueReplacements,omitempty"`
	DatesNormalized      int      `json:"datesNormalized,omitempty"`
	StockTextMapped      int      `json:"stockTextMapped,omitempty"`
	ComplexStockMatched  int      `json:"complexStockMatched,omitempty"`
	DiscontinuedDetected int      `json:"discontinuedDetected,omitempty"`
	DiscontinuedFiltered int      `json:"discontinuedFiltered,omitempty"`
	MissingRequired      int      `json:"missingRequired,omitempty"`
	FutureStockFlagged   int      `json:"futureStockFlagged,omitempty"`
	ZeroPriceSkipped     int      `json:"zeroPriceSkipped,omitempty"`
	PriceClamped         int      `json:"priceClamped,omitempty"`
	PriceDropped         int      `json:"priceDropped,omitempty"`
	SalePricingApplied   int      `json:"salePricingApplied,omitempty"`
	BelowMinimumStock    int      `json:"belowMinimumStock,omitempty"`
	SizeLimited          int      `json:"sizeLimited,omitempty"`
	SizesExpanded        int      `json:"sizesExpanded,omitempty"`
	PriceExpanded        int      `json:"priceExpanded,omitempty"`
	SaleStylesExcluded   int      `json:"saleStylesExcluded,omitempty"`
	ColorsMapped         int      `json:"colorsMapped,omitempty"`
	ColorsSuggested      int      `json:"colorsSuggested,omitempty"`
	NoSizeDropped        int      `json:"noSizeDropped,omitempty"`
	Deduped              int      `json:"deduped,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}

// Warn records a non-fatal transform warning.
func (s *RuleStats) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// ValidationCheck is one pass/fail line in the validation report.
type ValidationCheck struct {
	Family  string `json:"family"`
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// ValidationReport aggregates all enabled check families. A failed report
// does not by itself block the write.
type ValidationReport struct {
	Checks   []ValidationCheck `json:"checks"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Accuracy float64           `json:"accuracy"`
}

// Add records a check outcome and keeps the aggregates current.
func (r *ValidationReport) Add(family, name string, passed bool, message string) {
	r.Checks = append(r.Checks, ValidationCheck{Family: family, Name: name, Passed: passed, Message: message})
	if passed {
		r.Passed++
	} else {
		r.Failed++
	}
	total := r.Passed + r.Failed
	if total > 0 {
		r.Accuracy = float64(r.Passed) / float64(total)
	}
}

// ImportResult is the pipeline's return value for every acquisition path.
type ImportResult struct {
	Success     bool              `json:"success"`
	ItemCount   int               `json:"itemCount"`
	FileID      string            `json:"fileId,omitempty"`
	RunID       string            `json:"runId,omitempty"`
	Stats       *ImportStats      `json:"stats,omitempty"`
	RuleStats   *RuleStats        `json:"ruleStats,omitempty"`
	Validation  *ValidationReport `json:"validation,omitempty"`
	SafetyBlock *SafetyResult     `json:"safetyBlock,omitempty"`
	Error       string            `json:"error,omitempty"`
}
