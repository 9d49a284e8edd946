package cleaning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

type fakeAdvisor struct {
	suggestions []ColorSuggestion
	err         error
	gotCodes    []string
}

func (f *fakeAdvisor) SuggestColors(_ context.Context, codes []string) ([]ColorSuggestion, error) {
	f.gotCodes = codes
	return f.suggestions, f.err
}

func TestCleaner_Clean(t *testing.T) {
	advisor := &fakeAdvisor{suggestions: []ColorSuggestion{
		{Bad: "BLK", Good: "Black", Confidence: 0.95},
		{Bad: "NVY", Good: "Navy", Confidence: 0.5},
	}}
	cleaner := NewCleaner(advisor)

	variants := []*domain.Variant{
		{Style: " 1001 ", Color: "BLK", Size: "4", Stock: 2},
		{Style: "1001", Color: "NVY", Size: "6", Stock: 1},
		{Style: "1002", Color: "red", Size: "", Stock: 3},
		{Style: "1003", Color: "IVORY", Size: "8", Stock: 1},
	}

	stats := &domain.RuleStats{}
	cleaned, applied := cleaner.Clean(context.Background(), variants, nil, stats)

	require.Len(t, cleaned, 3)
	assert.Equal(t, 1, stats.NoSizeDropped)

	assert.Equal(t, "1001", cleaned[0].Style)
	assert.Equal(t, "Black", cleaned[0].Color, "high-confidence suggestion applied")
	assert.Equal(t, "Nvy", cleaned[1].Color, "low-confidence code only gets title-cased")
	assert.Equal(t, "Ivory", cleaned[2].Color)
	assert.Equal(t, 1, stats.ColorsSuggested)

	require.Len(t, applied, 1)
	assert.Equal(t, "Black", applied[0].Good)

	assert.ElementsMatch(t, []string{"BLK", "NVY"}, advisor.gotCodes,
		"valid color names never reach the advisor")
}

func TestCleaner_Clean_AdvisorErrorIsAWarning(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("quota exceeded")}
	cleaner := NewCleaner(advisor)

	variants := []*domain.Variant{{Style: "1001", Color: "BLK", Size: "4", Stock: 1}}
	stats := &domain.RuleStats{}
	cleaned, applied := cleaner.Clean(context.Background(), variants, nil, stats)

	require.Len(t, cleaned, 1)
	assert.Nil(t, applied)
	require.Len(t, stats.Warnings, 1)
	assert.Contains(t, stats.Warnings[0], "quota exceeded")
}

func TestCleaner_Clean_ThresholdFromSource(t *testing.T) {
	advisor := &fakeAdvisor{suggestions: []ColorSuggestion{
		{Bad: "NVY", Good: "Navy", Confidence: 0.6},
	}}
	cleaner := NewCleaner(advisor)
	source := &domain.Source{Cleaning: &domain.CleaningConfig{ColorSuggestionMinConfidence: 0.5}}

	variants := []*domain.Variant{{Style: "1001", Color: "NVY", Size: "4", Stock: 1}}
	stats := &domain.RuleStats{}
	cleaned, applied := cleaner.Clean(context.Background(), variants, source, stats)

	require.Len(t, applied, 1)
	assert.Equal(t, "Navy", cleaned[0].Color)
}

func TestCleaner_Clean_SizeZeroIsKept(t *testing.T) {
	cleaner := NewCleaner(nil)

	variants := []*domain.Variant{{Style: "1001", Color: "Red", Size: "0", Stock: 1}}
	stats := &domain.RuleStats{}
	cleaned, _ := cleaner.Clean(context.Background(), variants, nil, stats)

	require.Len(t, cleaned, 1)
	assert.Equal(t, 0, stats.NoSizeDropped)
}

func TestDedupe(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "4", Stock: 1, ShipDate: "2026-05-01"},
		{Style: "1001", Color: "RED", Size: "4", Stock: 3},
		{Style: "1001", Color: "Red", Size: "6", Stock: 2},
	}

	stats := &domain.RuleStats{}
	result := Dedupe(variants, stats)

	require.Len(t, result, 2)
	assert.Equal(t, 1, stats.Deduped)

	winner := result[0]
	assert.Equal(t, 3, winner.Stock, "highest stock wins the identity")
	assert.Equal(t, "2026-05-01", winner.ShipDate, "sibling ship-date merges into the winner")
	assert.Equal(t, "6", result[1].Size, "first-seen order preserved")
}

func TestDedupe_WinnerKeepsOwnShipDate(t *testing.T) {
	variants := []*domain.Variant{
		{Style: "1001", Color: "Red", Size: "4", Stock: 5, ShipDate: "2026-01-01"},
		{Style: "1001", Color: "Red", Size: "4", Stock: 1, ShipDate: "2026-09-01"},
	}

	stats := &domain.RuleStats{}
	result := Dedupe(variants, stats)

	require.Len(t, result, 1)
	assert.Equal(t, "2026-01-01", result[0].ShipDate)
}
