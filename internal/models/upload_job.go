package models

import "time"

// UploadJob is the persistence shape of a job row. JSONB payloads stay raw here;
// the mapping package handles (de)serialization.
type UploadJob struct {
	JobID          string
	FileName       string
	FileHash       string
	UploadedBy     string
	UploadType     string
	Status         string
	RowCount       int
	ProcessedRows  int
	FailedRows     int
	ColumnMapping  []byte // JSONB: source header -> matchable field
	MatchingConfig []byte // JSONB
	ErrorMessage   *string
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
