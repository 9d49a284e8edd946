package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

func TestApplyPrefix(t *testing.T) {
	source := &domain.Source{Name: "Jovani"}
	variants := []*domain.Variant{
		{Style: "1001", Color: "NAVY"},
		{Style: "Jovani 1002", Color: "Red"},
		{Style: "2001", Color: "Red", Brand: "JVN"},
	}

	ApplyPrefix(variants, source)

	assert.Equal(t, "Jovani 1001", variants[0].Style)
	assert.Equal(t, "Jovani 1002", variants[1].Style, "already-prefixed styles are left alone")
	assert.Equal(t, "JVN 2001", variants[2].Style, "a parser-recognized brand wins")
	assert.Equal(t, "Navy", variants[0].Color)
}

func TestApplyPrefix_SaleSourceDropsSaleToken(t *testing.T) {
	source := &domain.Source{Name: "Jovani Sale", Role: domain.SourceRoleSale}
	variants := []*domain.Variant{{Style: "1001", Color: "Red"}}

	ApplyPrefix(variants, source)

	assert.Equal(t, "Jovani 1001", variants[0].Style)
}

func TestApplyPrefix_CustomRules(t *testing.T) {
	source := &domain.Source{
		Name: "Multibrand",
		Cleaning: &domain.CleaningConfig{
			UseCustomPrefixes: true,
			StylePrefixRules: []domain.StylePrefixRule{
				{Pattern: `^JV`, Prefix: "Jovani"},
				{Pattern: `^\d`, Prefix: "House"},
			},
		},
	}
	variants := []*domain.Variant{
		{Style: "JV100", Color: "Red"},
		{Style: "100", Color: "Red"},
		{Style: "XX100", Color: "Red"},
	}

	ApplyPrefix(variants, source)

	assert.Equal(t, "Jovani JV100", variants[0].Style, "first matching rule wins")
	assert.Equal(t, "House 100", variants[1].Style)
	assert.Equal(t, "Multibrand XX100", variants[2].Style, "no rule match falls back to the source name")
}
