package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Navy  Blue ", "Navy Blue"},
		{"Black / Gold", "Black/Gold"},
		{"Ivory - Nude", "Ivory-Nude"},
		{"Red&White", "Red & White"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColor(tt.in), tt.in)
	}
}

func TestTitleCaseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NAVY BLUE", "Navy Blue"},
		{"black/gold", "Black/Gold"},
		{"ivory-nude", "Ivory-Nude"},
		{"red & white", "Red & White"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleCaseColor(tt.in), tt.in)
	}
}

func TestIsValidColorName(t *testing.T) {
	assert.True(t, IsValidColorName("Navy"))
	assert.True(t, IsValidColorName("NAVY BLUE"), "case does not matter")
	assert.True(t, IsValidColorName("Black/Gold"))
	assert.False(t, IsValidColorName("NVY"))
	assert.False(t, IsValidColorName("Navy Sparkle"), "one unknown token fails the whole name")
	assert.False(t, IsValidColorName(""))
}

func TestIsKnownColorCode(t *testing.T) {
	assert.True(t, IsKnownColorCode("BLK"))
	assert.True(t, IsKnownColorCode("blk"), "codes match case-insensitively")
	assert.True(t, IsKnownColorCode("BLK/GLD"))
	assert.False(t, IsKnownColorCode("ZZZZ"))
	assert.False(t, IsKnownColorCode(""))
}

func TestLooksLikeAbbreviation(t *testing.T) {
	assert.True(t, LooksLikeAbbreviation("XQ"))
	assert.True(t, LooksLikeAbbreviation("MDNGT"))
	assert.False(t, LooksLikeAbbreviation("NAVY"), "valid color words are never abbreviations")
	assert.False(t, LooksLikeAbbreviation("Blk"), "mixed case is a word, not a code")
	assert.False(t, LooksLikeAbbreviation("B"), "too short")
	assert.False(t, LooksLikeAbbreviation("MIDNIGHT"), "too long")
	assert.False(t, LooksLikeAbbreviation("BL2"), "digits disqualify")
}
