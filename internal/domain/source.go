// internal/domain/source.go
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type SourceKind string

const (
	SourceKindManual SourceKind = "manual"
	SourceKindURL    SourceKind = "url"
	SourceKindEmail  SourceKind = "email"
)

type SourceRole string

const (
	SourceRoleRegular SourceRole = "regular"
	SourceRoleSale    SourceRole = "sale"
)

type UpdateStrategy string

const (
	UpdateFullSync UpdateStrategy = "full_sync"
	UpdateUpsert   UpdateStrategy = "upsert"
)

// DateOrder disambiguates slash dates. Unset means US.
type DateOrder string

const (
	DateOrderUS       DateOrder = "us"
	DateOrderEuropean DateOrder = "european"
)

// Source is the per-feed configuration unit. Every rule block is optional;
// an absent block means the rule is skipped, never defaulted.
type Source struct {
	ID                 string         `json:"id" db:"id"`
	Name               string         `json:"name" db:"name"`
	Kind               SourceKind     `json:"kind" db:"kind"`
	Role               SourceRole     `json:"role" db:"role"`
	LinkedSaleSourceID string         `json:"linkedSaleSourceId,omitempty" db:"linked_sale_source_id"`
	MarketplaceStoreID string         `json:"marketplaceStoreId,omitempty" db:"marketplace_store_id"`
	UpdateStrategy     UpdateStrategy `json:"updateStrategy" db:"update_strategy"`

	// SafetyThreshold is the maximum tolerated drop percent before a
	// full_sync write is blocked. 0 disables the percent guard.
	SafetyThreshold float64 `json:"safetyThreshold" db:"safety_threshold"`

	URL      string          `json:"url,omitempty"`
	Schedule *ScheduleConfig `json:"schedule,omitempty"`
	Email    *EmailSettings  `json:"emailSettings,omitempty"`

	ColumnMapping map[string]string `json:"columnMapping,omitempty"`
	DateOrder     DateOrder         `json:"dateOrder,omitempty"`

	Format         *FormatConfig          `json:"pivotConfig,omitempty"`
	Cleaning       *CleaningConfig        `json:"cleaningConfig,omitempty"`
	Discontinued   *DiscontinuedConfig    `json:"discontinuedConfig,omitempty"`
	FutureStock    *FutureStockConfig     `json:"futureStockConfig,omitempty"`
	SizeLimit      *SizeLimitConfig       `json:"sizeLimitConfig,omitempty"`
	VariantRules   []VariantRule          `json:"variantRules,omitempty"`
	PriceExpansion *PriceExpansionConfig  `json:"priceBasedExpansionConfig,omitempty"`
	SalePrice      *SalePriceConfig       `json:"salePriceConfig,omitempty"`
	StockInfo      *StockInfoConfig       `json:"stockInfoConfig,omitempty"`
	ComplexStock   *ComplexStockConfig    `json:"complexStockConfig,omitempty"`
	ValueRules     []ValueReplacementRule `json:"valueReplacementRules,omitempty"`
	PriceBounds    *PriceFloorCeiling     `json:"priceFloorCeiling,omitempty"`
	RegularPrice   *RegularPriceConfig    `json:"regularPriceConfig,omitempty"`
	MinimumStock   *MinimumStockConfig    `json:"minimumStockConfig,omitempty"`
	Validation     *ValidationConfig      `json:"validationConfig,omitempty"`

	// ConditionalShipDate: when IfColumn equals EqualsValue on a row, the
	// DateColumn supplies the ship date. Row-parser only.
	ConditionalShipDate *ConditionalShipDateRule `json:"conditionalShipDate,omitempty"`

	StockTextMappings map[string]int `json:"stockTextMappings,omitempty"`
	RequiredFields    []string       `json:"requiredFields,omitempty"`
	FilterZeroStock   bool           `json:"filterZeroStock,omitempty"`

	// KeepSaleOwnership leaves sale_owns_style untouched on upsert for
	// regular sources.
	KeepSaleOwnership bool `json:"keepSaleOwnership,omitempty"`

	RetryIfNoEmail       bool `json:"retryIfNoEmail,omitempty"`
	RetryIntervalMinutes int  `json:"retryIntervalMinutes,omitempty"`
	RetryCutoffHour      int  `json:"retryCutoffHour,omitempty"`

	LastSyncAt *time.Time `json:"lastSyncAt,omitempty" db:"last_sync_at"`
}

// ScheduleConfig holds the local wall-clock schedule for url/email pulls.
type ScheduleConfig struct {
	Auto      bool   `json:"auto"`
	Frequency string `json:"frequency"` // daily, weekly, hourly
	TimeLocal string `json:"timeLocal"` // "HH:MM"
}

// EmailSettings configures the IMAP acquisition channel.
type EmailSettings struct {
	Host                 string   `json:"host"`
	Port                 int      `json:"port"`
	Secure               bool     `json:"secure"`
	Username             string   `json:"username"`
	Password             string   `json:"password"`
	Folder               string   `json:"folder"`
	SenderWhitelist      []string `json:"senderWhitelist,omitempty"`
	SubjectFilter        string   `json:"subjectFilter,omitempty"`
	MarkAsRead           bool     `json:"markAsRead"`
	DeleteAfterDownload  bool     `json:"deleteAfterDownload"`
	ExtractLinksFromBody bool     `json:"extractLinksFromBody"`
	MultiFileMode        bool     `json:"multiFileMode"`
	ExpectedFiles        int      `json:"expectedFiles,omitempty"`
}

// FormatConfig records the learned spreadsheet layout for a source so later
// runs skip detection probing.
type FormatConfig struct {
	Enabled bool   `json:"enabled"`
	Format  string `json:"format"`
}

// ConditionalShipDateRule drives the row parser's conditional date mapping.
type ConditionalShipDateRule struct {
	IfColumn    string `json:"ifColumn"`
	EqualsValue string `json:"equalsValue"`
	DateColumn  string `json:"dateColumn"`
}

// FindReplaceRule is an ordered case-insensitive regex replacement applied
// to the style field.
type FindReplaceRule struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// StylePrefixRule maps a raw-style regex to a custom prefix.
type StylePrefixRule struct {
	Pattern string `json:"pattern"`
	Prefix  string `json:"prefix"`
}

type CleaningConfig struct {
	TrimWhitespace   bool              `json:"trimWhitespace"`
	RemoveFirstN     int               `json:"removeFirstN,omitempty"`
	RemoveLastN      int               `json:"removeLastN,omitempty"`
	FindReplaceRules []FindReplaceRule `json:"findReplaceRules,omitempty"`
	RemovePatterns   []string          `json:"removePatterns,omitempty"`

	UseCustomPrefixes bool              `json:"useCustomPrefixes,omitempty"`
	StylePrefixRules  []StylePrefixRule `json:"stylePrefixRules,omitempty"`

	CombinedVariantColumn    string `json:"combinedVariantColumn,omitempty"`
	CombinedVariantDelimiter string `json:"combinedVariantDelimiter,omitempty"`
	CombinedVariantOrder     string `json:"combinedVariantOrder,omitempty"` // e.g. "style,color,size"

	ConvertYesNo bool   `json:"convertYesNo,omitempty"`
	YesValue     string `json:"yesValue,omitempty"`
	NoValue      string `json:"noValue,omitempty"`

	// ColorSuggestionMinConfidence gates auto-applied advisor suggestions.
	// Zero means the 0.9 default.
	ColorSuggestionMinConfidence float64 `json:"colorSuggestionMinConfidence,omitempty"`
}

type DiscontinuedConfig struct {
	Column           string   `json:"column,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	SkipDiscontinued bool     `json:"skipDiscontinued"`
}

type FutureStockConfig struct {
	DateOnlyMode           bool   `json:"dateOnlyMode"`
	UseFutureDateAsShip    bool   `json:"useFutureDateAsShipDate"`
	FutureDateColumn       string `json:"futureDateColumn,omitempty"`
	IncomingStockColumn    string `json:"incomingStockColumn,omitempty"`
	PreserveZeroStockItems bool   `json:"preserveZeroStockItems"`
}

// SizeLimitBounds is one set of size-range bounds. A nil bound is
// open-ended on that side.
type SizeLimitBounds struct {
	MinNumeric *int    `json:"minNumeric,omitempty"`
	MaxNumeric *int    `json:"maxNumeric,omitempty"`
	MinLetter  *string `json:"minLetter,omitempty"`
	MaxLetter  *string `json:"maxLetter,omitempty"`
}

// PrefixOverride supplies alternate bounds for styles matching a pattern.
// The pattern is tested against the already-prefixed style.
type PrefixOverride struct {
	Pattern string          `json:"pattern"`
	Bounds  SizeLimitBounds `json:"bounds"`
}

type SizeLimitConfig struct {
	Enabled         bool             `json:"enabled"`
	Bounds          SizeLimitBounds  `json:"bounds"`
	PrefixOverrides []PrefixOverride `json:"prefixOverrides,omitempty"`
}

// VariantRule expands one size into additional sizes.
type VariantRule struct {
	Size         string   `json:"size"`
	ExpandToSize []string `json:"expandToSizes"`
}

// ExpansionTier maps a price range to an expansion width.
type ExpansionTier struct {
	MinPrice   float64  `json:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	ExpandDown int      `json:"expandDown"`
	ExpandUp   int      `json:"expandUp"`
}

type PriceExpansionConfig struct {
	Enabled           bool            `json:"enabled"`
	Tiers             []ExpansionTier `json:"tiers,omitempty"`
	DefaultExpandDown int             `json:"defaultExpandDown"`
	DefaultExpandUp   int             `json:"defaultExpandUp"`
}

// SalePriceConfig covers both the column-driven per-row sale price and the
// whole-source sale multiplier. Frontends historically sent the column form
// as columnSaleConfig; the loader folds both into this struct with
// salePriceConfig winning when both appear.
type SalePriceConfig struct {
	SalePriceColumn   string  `json:"salePriceColumn,omitempty"`
	PriceMultiplier   float64 `json:"priceMultiplier,omitempty"`
	UseCompareAtPrice bool    `json:"useCompareAtPrice,omitempty"`
}

type StockInfoConfig struct {
	InStockMessage       string `json:"inStockMessage,omitempty"`
	OutOfStockMessage    string `json:"outOfStockMessage,omitempty"`
	FutureDateMessage    string `json:"futureDateMessage,omitempty"`
	SizeExpansionMessage string `json:"sizeExpansionMessage,omitempty"`
	StockThreshold       int    `json:"stockThreshold,omitempty"`
	DateOffsetDays       int    `json:"dateOffsetDays,omitempty"`
}

// ComplexStockPattern applies a regex to the raw stock cell text.
// ExtractStock/ExtractDate are templates: either literals or
// backreferences like "$1".
type ComplexStockPattern struct {
	Name             string `json:"name"`
	Pattern          string `json:"pattern"`
	ExtractStock     string `json:"extractStock,omitempty"`
	ExtractDate      string `json:"extractDate,omitempty"`
	MarkDiscontinued bool   `json:"markDiscontinued,omitempty"`
	MarkSpecialOrder bool   `json:"markSpecialOrder,omitempty"`
}

type ComplexStockConfig struct {
	Enabled  bool                  `json:"enabled"`
	Patterns []ComplexStockPattern `json:"patterns,omitempty"`
}

// ValueReplacementRule is a per-field literal replacement.
type ValueReplacementRule struct {
	Field   string `json:"field"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

type PriceFloorCeiling struct {
	Floor       *float64 `json:"floor,omitempty"`
	Ceiling     *float64 `json:"ceiling,omitempty"`
	DropOutside bool     `json:"dropOutside,omitempty"` // clamp when false
}

type RegularPriceConfig struct {
	SkipZeroPrice bool    `json:"skipZeroPrice,omitempty"`
	Multiplier    float64 `json:"multiplier,omitempty"`
}

type MinimumStockConfig struct {
	Enabled   bool `json:"enabled"`
	Threshold int  `json:"threshold"`
}

// sourceConfigAlias lets UnmarshalJSON accept the legacy columnSaleConfig
// key without recursing.
type sourceAlias Source

type sourceWire struct {
	sourceAlias
	ColumnSale *SalePriceConfig `json:"columnSaleConfig,omitempty"`
}

// UnmarshalJSON folds columnSaleConfig into SalePrice. salePriceConfig wins
// when both are present.
func (s *Source) UnmarshalJSON(data []byte) error {
	var w sourceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Source(w.sourceAlias)
	if s.SalePrice == nil && w.ColumnSale != nil {
		s.SalePrice = w.ColumnSale
	}
	return nil
}

// ColorSuggestionThreshold returns the per-source advisor confidence gate.
func (s *Source) ColorSuggestionThreshold() float64 {
	if s.Cleaning != nil && s.Cleaning.ColorSuggestionMinConfidence > 0 {
		return s.Cleaning.ColorSuggestionMinConfidence
	}
	return 0.9
}

// PrefixBase returns the display-name prefix for this source: sale sources
// drop a trailing "Sale"/"Sales" token so sale and regular feeds of the same
// vendor share a prefix.
func (s *Source) PrefixBase() string {
	name := s.Name
	if s.Role == SourceRoleSale {
		for _, suffix := range []string{" Sales", " Sale", " sales", " sale"} {
			if trimmed, ok := strings.CutSuffix(name, suffix); ok {
				name = trimmed
				break
			}
		}
	}
	return name
}
