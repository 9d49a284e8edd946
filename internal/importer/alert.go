// internal/importer/alert.go
package importer

import (
	"context"

	"github.com/stylefeed/inventory-importer/pkg/logger"
)

const (
	AlertSafetyBlock      = "safety_block"
	AlertPreImportFailure = "pre_import_failure"
)

// Alert is a structured notification about a run that needs operator
// attention. The pipeline dispatches one for every safety block and every
// tripped pre-import guard.
type Alert struct {
	SourceID string   `json:"sourceId"`
	RunID    string   `json:"runId"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Details  []string `json:"details,omitempty"`
}

// AlertSink receives alerts. Notify must not block the run; sinks with slow
// transports should queue internally.
type AlertSink interface {
	Notify(ctx context.Context, alert Alert)
}

type logAlertSink struct{}

// NewLogAlertSink returns the default sink: alerts land in the structured
// log at error level.
func NewLogAlertSink() AlertSink {
	return logAlertSink{}
}

func (logAlertSink) Notify(_ context.Context, alert Alert) {
	logger.Log.Error().
		Str("source_id", alert.SourceID).
		Str("run_id", alert.RunID).
		Str("kind", alert.Kind).
		Strs("details", alert.Details).
		Msg(alert.Message)
}
