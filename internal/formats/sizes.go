// internal/formats/sizes.go
package formats

import (
	"strings"
)

// numericSizeOrder is the fixed ordering used by size-limit filtering and
// size expansion. Plus sizes sit directly after their plain counterparts.
var numericSizeOrder = []string{
	"000", "00", "0", "2", "4", "6", "8", "10", "12", "14",
	"16", "16W", "18", "18W", "20", "20W", "22", "22W", "24", "24W",
	"26", "26W", "28", "28W", "30", "30W", "32", "32W", "34", "34W",
	"36", "36W",
}

// plainNumericOrder is the ladder used when stepping expansion from a plain
// numeric size; plusNumericOrder when stepping from a W size.
var plainNumericOrder = []string{
	"000", "00", "0", "2", "4", "6", "8", "10", "12", "14",
	"16", "18", "20", "22", "24", "26", "28", "30", "32", "34", "36",
}

var plusNumericOrder = []string{
	"16W", "18W", "20W", "22W", "24W", "26W", "28W", "30W", "32W", "34W", "36W",
}

var letterSizeOrder = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL", "3XL", "4XL", "5XL"}

// letterAliases folds equivalent letter tokens onto the canonical ladder.
var letterAliases = map[string]string{
	"2XL":  "XXL",
	"XXXL": "3XL",
}

var numericSizeIndex = buildIndex(numericSizeOrder)
var letterSizeIndex = buildIndex(letterSizeOrder)

func buildIndex(order []string) map[string]int {
	idx := make(map[string]int, len(order))
	for i, s := range order {
		idx[s] = i
	}
	return idx
}

// NormalizeSizeToken maps header spellings onto canonical size tokens:
// OOO/OO become 000/00 and leading-zero sizes 02..08 lose the zero.
func NormalizeSizeToken(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "OOO":
		return "000"
	case "OO":
		return "00"
	}
	if alias, ok := letterAliases[s]; ok {
		return alias
	}
	// 02 -> 2, 04 -> 4; 00 and 000 stay as-is.
	if len(s) == 2 && s[0] == '0' && s[1] >= '1' && s[1] <= '9' {
		return s[1:]
	}
	return s
}

// IsSizeToken reports whether the (normalized) token is a recognized size.
func IsSizeToken(raw string) bool {
	s := NormalizeSizeToken(raw)
	if _, ok := numericSizeIndex[s]; ok {
		return true
	}
	_, ok := letterSizeIndex[s]
	return ok
}

// IsNumericSize reports whether the token sits on the numeric ladder
// (including W sizes).
func IsNumericSize(raw string) bool {
	_, ok := numericSizeIndex[NormalizeSizeToken(raw)]
	return ok
}

// NumericSizeValue returns the integer magnitude of a numeric size token for
// bound comparisons. W sizes compare by their numeric part.
func NumericSizeValue(raw string) (int, bool) {
	s := NormalizeSizeToken(raw)
	if _, ok := numericSizeIndex[s]; !ok {
		return 0, false
	}
	s = strings.TrimSuffix(s, "W")
	switch s {
	case "000", "00":
		return 0, true
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// LetterSizeIndex returns the position of a letter size on the ladder.
func LetterSizeIndex(raw string) (int, bool) {
	idx, ok := letterSizeIndex[NormalizeSizeToken(raw)]
	return idx, ok
}

// StepSize walks the expansion ladder from a size by delta positions
// (negative = smaller). It stays within the size's own family: plain numeric
// sizes step the plain ladder, W sizes the W ladder.
func StepSize(from string, delta int) (string, bool) {
	s := NormalizeSizeToken(from)
	ladder := plainNumericOrder
	if strings.HasSuffix(s, "W") {
		ladder = plusNumericOrder
	}
	pos := -1
	for i, candidate := range ladder {
		if candidate == s {
			pos = i
			break
		}
	}
	if pos < 0 {
		return "", false
	}
	target := pos + delta
	if target < 0 || target >= len(ladder) {
		return "", false
	}
	return ladder[target], true
}

// DefaultOTSSizes is the positional size list for ots_format columns when no
// size_whole_comp column supplies one: even sizes 2 through 18.
var DefaultOTSSizes = []string{"2", "4", "6", "8", "10", "12", "14", "16", "18"}
