// internal/formats/stock.go
package formats

import (
	"strconv"
	"strings"
)

// ParseStock turns a stock cell into a non-negative integer. Numeric parse
// first, then user-configured text mappings (case-insensitive), then a
// digits-only salvage parse. Negative values clamp to zero.
func ParseStock(raw string, mappings map[string]int) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return clampStock(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return clampStock(int(f)), true
	}

	lower := strings.ToLower(s)
	for text, value := range mappings {
		if strings.ToLower(strings.TrimSpace(text)) == lower {
			return clampStock(value), true
		}
	}

	// En-dash and plain dash cells mean zero in several vendor feeds.
	if s == "-" || s == "–" || s == "—" {
		return 0, true
	}

	digits := stripNonDigits(s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return clampStock(n), true
}

func clampStock(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
