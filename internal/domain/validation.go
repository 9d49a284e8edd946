// internal/domain/validation.go
package domain

// ValidationConfig enables and tunes the per-source check families. Each
// family is independent; a nil block or Enabled=false skips that family.
type ValidationConfig struct {
	Structural   *StructuralChecks   `json:"structural,omitempty"`
	Checksum     *ChecksumChecks     `json:"checksum,omitempty"`
	Distribution *DistributionChecks `json:"distribution,omitempty"`
	Delta        *DeltaChecks        `json:"delta,omitempty"`
	Count        *CountChecks        `json:"count,omitempty"`
	SpotChecks   []SpotCheck         `json:"spotChecks,omitempty"`
}

// StructuralChecks run before parsing: readable file, expected columns, row
// count bounds, and a drop guard against the previous run's row count. The
// drop guard is skipped for multi-file sources.
type StructuralChecks struct {
	Enabled           bool     `json:"enabled"`
	ExpectedColumns   []string `json:"expectedColumns,omitempty"`
	MinRowCount       int      `json:"minRowCount,omitempty"`
	MaxRowCount       int      `json:"maxRowCount,omitempty"`
	MaxRowDropPercent float64  `json:"maxRowDropPercent,omitempty"`
}

// ChecksumChecks compare parsed-file aggregates against the written
// aggregates. TolerancePercent 0 means exact match.
type ChecksumChecks struct {
	Enabled          bool    `json:"enabled"`
	TolerancePercent float64 `json:"tolerancePercent,omitempty"`
}

// DistributionChecks bound the shape of the final stream: share of stocked
// items, priced items, and items carrying a ship date. Percent values run
// 0-100; a nil bound is open on that side.
type DistributionChecks struct {
	Enabled            bool     `json:"enabled"`
	MinStockedPercent  *float64 `json:"minStockedPercent,omitempty"`
	MaxStockedPercent  *float64 `json:"maxStockedPercent,omitempty"`
	MinPricedPercent   *float64 `json:"minPricedPercent,omitempty"`
	MaxPricedPercent   *float64 `json:"maxPricedPercent,omitempty"`
	MinShipDatePercent *float64 `json:"minShipDatePercent,omitempty"`
	MaxShipDatePercent *float64 `json:"maxShipDatePercent,omitempty"`
}

// DeltaChecks compare this run against the previous run's ImportStats.
type DeltaChecks struct {
	Enabled             bool    `json:"enabled"`
	MaxItemDropPercent  float64 `json:"maxItemDropPercent,omitempty"`
	MaxStockDropPercent float64 `json:"maxStockDropPercent,omitempty"`
	MaxStyleDropPercent float64 `json:"maxStyleDropPercent,omitempty"`
}

// CountChecks put absolute bounds on run-level totals. Nil bounds are open.
type CountChecks struct {
	Enabled         bool `json:"enabled"`
	MinItems        *int `json:"minItems,omitempty"`
	MaxItems        *int `json:"maxItems,omitempty"`
	MinStyles       *int `json:"minStyles,omitempty"`
	MaxStyles       *int `json:"maxStyles,omitempty"`
	MaxFutureStock  *int `json:"maxFutureStock,omitempty"`
	MaxDiscontinued *int `json:"maxDiscontinued,omitempty"`
}

// SpotCheckCondition names the assertion a spot check makes.
type SpotCheckCondition string

const (
	SpotExists        SpotCheckCondition = "exists"
	SpotStockPositive SpotCheckCondition = "stock>0"
	SpotHasFutureDate SpotCheckCondition = "has-future-date"
	SpotDiscontinued  SpotCheckCondition = "is-discontinued"
	SpotHasPrice      SpotCheckCondition = "has-price"
)

// SpotCheck pins one known variant. Color and Size narrow the match when
// set; an empty field matches any value.
type SpotCheck struct {
	Style     string             `json:"style"`
	Color     string             `json:"color,omitempty"`
	Size      string             `json:"size,omitempty"`
	Condition SpotCheckCondition `json:"condition"`
}
