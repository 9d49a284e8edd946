// internal/domain/staged.go
package domain

import "time"

type StagedFileStatus string

const (
	StagedStatusStaged   StagedFileStatus = "staged"
	StagedStatusImported StagedFileStatus = "imported"
	StagedStatusError    StagedFileStatus = "error"
)

// StagedFile holds one parsed file between acquisition and a multi-file
// combine. Variants are extracted (and prefixed) at staging time so the
// combine path matches the per-file import path.
type StagedFile struct {
	ID        string           `json:"id" db:"id"`
	SourceID  string           `json:"source_id" db:"source_id"`
	Filename  string           `json:"filename" db:"filename"`
	Format    string           `json:"format" db:"format"`
	RowCount  int              `json:"row_count" db:"row_count"`
	Status    StagedFileStatus `json:"status" db:"status"`
	Error     string           `json:"error,omitempty" db:"error"`
	Variants  []*Variant       `json:"variants"`
	Header    []string         `json:"header"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// FeedFile is one raw acquired buffer plus its filename.
type FeedFile struct {
	Name string
	Data []byte
}
