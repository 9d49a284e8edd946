// internal/rules/stockinfo.go
package rules

import (
	"strings"
	"time"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// RenderStockInfo stamps the customer-facing availability text on each
// variant. Priority order per variant: size-expansion message, in-stock
// message, future-date message, out-of-stock message.
func RenderStockInfo(variants []*domain.Variant, cfg *domain.StockInfoConfig, now time.Time) {
	if cfg == nil {
		return
	}
	for _, v := range variants {
		v.StockInfo = renderOne(v, cfg, now)
	}
}

func renderOne(v *domain.Variant, cfg *domain.StockInfoConfig, now time.Time) string {
	if v.IsExpandedSize && cfg.SizeExpansionMessage != "" {
		date, ok := futureDate(v, cfg, now)
		return substituteDate(cfg.SizeExpansionMessage, date, ok)
	}
	if v.Stock > cfg.StockThreshold {
		return cfg.InStockMessage
	}
	if cfg.FutureDateMessage != "" {
		if date, ok := futureDate(v, cfg, now); ok {
			return substituteDate(cfg.FutureDateMessage, date, true)
		}
	}
	return substituteDate(cfg.OutOfStockMessage, time.Time{}, false)
}

// futureDate returns the ship date shifted by the configured offset when it
// lands strictly after today.
func futureDate(v *domain.Variant, cfg *domain.StockInfoConfig, now time.Time) (time.Time, bool) {
	if v.ShipDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", v.ShipDate)
	if err != nil {
		return time.Time{}, false
	}
	d = d.AddDate(0, 0, cfg.DateOffsetDays)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d, d.After(today)
}

// substituteDate fills the {date} placeholder, or strips it (plus stray
// spacing) when no date applies.
func substituteDate(message string, date time.Time, hasDate bool) string {
	if !strings.Contains(message, "{date}") {
		return message
	}
	if !hasDate {
		return strings.Join(strings.Fields(strings.ReplaceAll(message, "{date}", "")), " ")
	}
	return strings.ReplaceAll(message, "{date}", date.Format("January 2, 2006"))
}
