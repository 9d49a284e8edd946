// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds from the propagation policy: config, acquisition, parse and
// write errors abort a run; transform warnings accumulate in the stats.
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrImportBusy     = errors.New("an import is already running for this source")
	ErrNoRows         = errors.New("file contains no data rows")
	ErrNoMatchingMail = errors.New("no matching mail found")
)

// ConfigError marks a missing or malformed source configuration. Not
// retried.
type ConfigError struct {
	SourceID string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("source %s: invalid configuration: %s", e.SourceID, e.Reason)
}

// AcquisitionError marks a connection or download failure. The retry queue
// may reschedule email pulls.
type AcquisitionError struct {
	SourceID string
	Channel  string
	Err      error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("source %s: %s acquisition failed: %v", e.SourceID, e.Channel, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// ParseError marks an unreadable file or a file with no usable rows.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PreImportError marks a tripped structural validation guard. The run
// aborts before any parsing or writing and an alert is dispatched.
type PreImportError struct {
	SourceID string
	Failures []string
}

func (e *PreImportError) Error() string {
	return fmt.Sprintf("source %s: pre-import validation failed: %s", e.SourceID, strings.Join(e.Failures, "; "))
}

// WriteError marks a step-18 store failure. full_sync rolls back atomically;
// upsert reports the partial-success count.
type WriteError struct {
	SourceID  string
	Committed int
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("source %s: store write failed after %d rows: %v", e.SourceID, e.Committed, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
