package dto

import (
	"time"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
)

// CreateUploadJobRequest is the service-level submission payload. The handler
// assembles it from the multipart form; the raw file bytes stay opaque here,
// decoding them into rows is the row source's job.
type CreateUploadJobRequest struct {
	FileName       string
	FileBytes      []byte
	ColumnMapping  map[string]string
	UploadType     domain.UploadType
	MatchingConfig *MatchingConfigPayload
}

// UploadJobSubmission is the immediate acknowledgment for a submission. Reused
// is true when an identical file was already accepted for this upload type.
type UploadJobSubmission struct {
	JobID      string `json:"jobId"`
	Status     string `json:"status"`
	UploadType string `json:"uploadType"`
	Reused     bool   `json:"reused"`
	Message    string `json:"message"`
}

// ListJobsRequest filters the job listing.
type ListJobsRequest struct {
	Status     *domain.UploadJobStatus
	UploadType *domain.UploadType
	UploadedBy *string
}

// UploadJobResponse is the outward shape of a job.
type UploadJobResponse struct {
	JobID         string                 `json:"jobId"`
	FileName      string                 `json:"fileName"`
	UploadedBy    string                 `json:"uploadedBy"`
	UploadType    domain.UploadType      `json:"uploadType"`
	Status        domain.UploadJobStatus `json:"status"`
	RowCount      int                    `json:"rowCount"`
	ProcessedRows int                    `json:"processedRows"`
	FailedRows    int                    `json:"failedRows"`
	ErrorMessage  *string                `json:"errorMessage,omitempty"`
	StartedAt     time.Time              `json:"startedAt"`
	CompletedAt   *time.Time             `json:"completedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// ToUploadJobResponse converts a domain job to its response DTO.
func ToUploadJobResponse(job *domain.UploadJob) UploadJobResponse {
	return UploadJobResponse{
		JobID:         job.JobID,
		FileName:      job.FileName,
		UploadedBy:    job.UploadedBy,
		UploadType:    job.UploadType,
		Status:        job.Status,
		RowCount:      job.RowCount,
		ProcessedRows: job.ProcessedRows,
		FailedRows:    job.FailedRows,
		ErrorMessage:  job.ErrorMessage,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		CreatedAt:     job.CreatedAt,
	}
}

// ToUploadJobResponses converts a slice of domain jobs.
func ToUploadJobResponses(jobs []domain.UploadJob) []UploadJobResponse {
	responses := make([]UploadJobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToUploadJobResponse(&jobs[i])
	}
	return responses
}

// UploadPreviewResponse returns the first rows of a file for mapping setup.
type UploadPreviewResponse struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}
