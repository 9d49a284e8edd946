// internal/importer/safety.go
package importer

import (
	"fmt"

	"github.com/stylefeed/inventory-importer/internal/domain"
)

// DefaultSafetyThreshold is assigned to new full_sync sources that do not
// set their own drop tolerance.
const DefaultSafetyThreshold = 50.0

// CheckSafety runs the pre-write guards for full_sync sources. Upsert never
// blocks because it cannot wipe unseen rows.
func CheckSafety(source *domain.Source, existing, incoming int) *domain.SafetyResult {
	if source.UpdateStrategy != domain.UpdateFullSync {
		return &domain.SafetyResult{Blocked: false}
	}

	if incoming == 0 && existing >= 1 {
		return &domain.SafetyResult{
			Blocked:       true,
			Message:       fmt.Sprintf("refusing to replace %d existing items with an empty feed", existing),
			ExistingCount: existing,
			NewCount:      0,
			DropPercent:   100,
		}
	}

	// A feed shrinking to under a tenth of a substantial catalog is treated
	// as corrupt regardless of the configured threshold.
	if existing > 100 && incoming < existing/10 {
		return &domain.SafetyResult{
			Blocked:       true,
			Message:       fmt.Sprintf("feed shrank from %d to %d items", existing, incoming),
			ExistingCount: existing,
			NewCount:      incoming,
			DropPercent:   dropPercent(existing, incoming),
		}
	}

	// Threshold 0 disables the percent guard; the guards above still apply.
	threshold := source.SafetyThreshold
	if threshold <= 0 {
		return &domain.SafetyResult{Blocked: false, ExistingCount: existing, NewCount: incoming}
	}

	drop := dropPercent(existing, incoming)
	if drop > threshold {
		return &domain.SafetyResult{
			Blocked:       true,
			Message:       fmt.Sprintf("item count dropped %.1f%% (threshold %.1f%%)", drop, threshold),
			ExistingCount: existing,
			NewCount:      incoming,
			DropPercent:   drop,
		}
	}

	return &domain.SafetyResult{
		Blocked:       false,
		ExistingCount: existing,
		NewCount:      incoming,
		DropPercent:   drop,
	}
}

func dropPercent(existing, incoming int) float64 {
	if existing <= 0 || incoming >= existing {
		return 0
	}
	return float64(existing-incoming) / float64(existing) * 100
}
