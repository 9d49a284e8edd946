// internal/importer/prefix.go
package importer

import (
	"regexp"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/domain"
)

// ApplyPrefix rewrites each style to "{prefix} {rawStyle}". The prefix comes
// from, in order: a brand token a parser recognized, the first matching
// custom prefix rule, the source's display name (sale sources drop their
// trailing "Sale"/"Sales" token). Colors are title-cased here so staged and
// direct imports agree before dedupe.
func ApplyPrefix(variants []*domain.Variant, source *domain.Source) {
	rules := compilePrefixRules(source)
	base := source.PrefixBase()

	for _, v := range variants {
		prefix := base
		if v.Brand != "" {
			prefix = v.Brand
		} else if len(rules) > 0 {
			for _, rule := range rules {
				if rule.re.MatchString(v.Style) {
					prefix = rule.prefix
					break
				}
			}
		}
		if prefix != "" && !strings.HasPrefix(strings.ToUpper(v.Style), strings.ToUpper(prefix)+" ") {
			v.Style = prefix + " " + v.Style
		}
		v.Color = cleaning.TitleCaseColor(v.Color)
	}
}

type compiledPrefixRule struct {
	re     *regexp.Regexp
	prefix string
}

func compilePrefixRules(source *domain.Source) []compiledPrefixRule {
	if source.Cleaning == nil || !source.Cleaning.UseCustomPrefixes {
		return nil
	}
	rules := make([]compiledPrefixRule, 0, len(source.Cleaning.StylePrefixRules))
	for _, rule := range source.Cleaning.StylePrefixRules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			continue
		}
		rules = append(rules, compiledPrefixRule{re: re, prefix: rule.Prefix})
	}
	return rules
}
