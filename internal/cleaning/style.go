// internal/cleaning/style.go
package cleaning

import (
	"regexp"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// CleanStyle applies the configured style-cleaning chain in its stable
// order: trim, collapse whitespace runs, positional removals, ordered
// find/replace rules, ordered remove-patterns.
func CleanStyle(style string, cfg *domain.CleaningConfig) string {
	s := strings.Join(strings.Fields(strings.TrimSpace(style)), " ")
	if cfg == nil {
		return s
	}

	if cfg.RemoveFirstN > 0 && len(s) > cfg.RemoveFirstN {
		s = s[cfg.RemoveFirstN:]
	} else if cfg.RemoveFirstN > 0 {
		s = ""
	}
	if cfg.RemoveLastN > 0 && len(s) > cfg.RemoveLastN {
		s = s[:len(s)-cfg.RemoveLastN]
	} else if cfg.RemoveLastN > 0 {
		s = ""
	}

	for _, rule := range cfg.FindReplaceRules {
		re, err := regexp.Compile("(?i)" + rule.Find)
		if err != nil {
			continue
		}
		s = re.ReplaceAllString(s, rule.Replace)
	}

	for _, pattern := range cfg.RemovePatterns {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
		if err != nil {
			continue
		}
		s = re.ReplaceAllString(s, "")
	}

	return strings.TrimSpace(s)
}
