package domain

import "time"

// UploadJobStatus tracks a job through its lifecycle. processing is the initial
// state; completed and failed are terminal.
type UploadJobStatus string

const (
	JobStatusProcessing UploadJobStatus = "processing"
	JobStatusCompleted  UploadJobStatus = "completed"
	JobStatusFailed     UploadJobStatus = "failed"
)

// UploadType distinguishes uploads of transactions to reconcile from uploads
// that replace the active system baseline.
type UploadType string

const (
	UploadTypeTransaction UploadType = "transaction"
	UploadTypeSystem      UploadType = "system"
)

// UploadJob is one file submission. Identical file bytes for the same upload
// type reuse the latest non-failed job instead of creating a new one.
type UploadJob struct {
	JobID          string            `json:"jobID"`
	FileName       string            `json:"fileName"`
	FileHash       string            `json:"fileHash"` // sha256 over the raw bytes
	UploadedBy     string            `json:"uploadedBy"`
	UploadType     UploadType        `json:"uploadType"`
	Status         UploadJobStatus   `json:"status"`
	RowCount       int               `json:"rowCount"`
	ProcessedRows  int               `json:"processedRows"`
	FailedRows     int               `json:"failedRows"`
	ColumnMapping  map[string]string `json:"columnMapping"` // source header -> matchable field
	MatchingConfig MatchingConfig    `json:"matchingConfig"`
	ErrorMessage   *string           `json:"errorMessage,omitempty"`
	StartedAt      time.Time         `json:"startedAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// IsTerminal reports whether the job can no longer transition.
func (s UploadJobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
