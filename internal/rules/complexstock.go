// internal/rules/complexstock.go
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stylefeed/inventory-importer/internal/domain"
	"github.com/stylefeed/inventory-importer/internal/formats"
)

// compiledStockPattern is a ComplexStockPattern with its regex compiled
// once per run.
type compiledStockPattern struct {
	spec domain.ComplexStockPattern
	re   *regexp.Regexp
}

func compileStockPatterns(cfg *domain.ComplexStockConfig, stats *domain.RuleStats) []compiledStockPattern {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	compiled := make([]compiledStockPattern, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			stats.Warn("complex stock pattern " + p.Name + " does not compile: " + err.Error())
			continue
		}
		compiled = append(compiled, compiledStockPattern{spec: p, re: re})
	}
	return compiled
}

// apply matches the pattern list against the raw stock cell text. The first
// match wins: stock is overwritten from the extract template, the ship date
// from its template, and the discontinued / special-order flags are set.
func applyComplexStock(v *domain.Variant, patterns []compiledStockPattern, order domain.DateOrder) bool {
	raw := strings.TrimSpace(v.RawStockText)
	if raw == "" {
		return false
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatchIndex(raw)
		if m == nil {
			continue
		}

		if p.spec.ExtractStock != "" {
			expanded := string(p.re.ExpandString(nil, p.spec.ExtractStock, raw, m))
			if stock, err := strconv.Atoi(strings.TrimSpace(expanded)); err == nil {
				if stock < 0 {
					stock = 0
				}
				v.Stock = stock
			}
		}
		if p.spec.ExtractDate != "" {
			expanded := string(p.re.ExpandString(nil, p.spec.ExtractDate, raw, m))
			if iso := formats.ParseShipDate(expanded, order); iso != "" {
				v.ShipDate = iso
			}
		}
		if p.spec.MarkDiscontinued {
			v.Discontinued = true
		}
		if p.spec.MarkSpecialOrder {
			v.SpecialOrder = true
		}
		return true
	}
	return false
}
