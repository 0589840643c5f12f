package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/models"
)

// ToModelUploadJob converts a domain job into its persistence shape,
// serializing the JSONB payloads.
func ToModelUploadJob(job domain.UploadJob) (models.UploadJob, error) {
	columnMapping, err := json.Marshal(job.ColumnMapping)
	if err != nil {
		return models.UploadJob{}, fmt.Errorf("marshal column mapping: %w", err)
	}
	matchingConfig, err := json.Marshal(job.MatchingConfig)
	if err != nil {
		return models.UploadJob{}, fmt.Errorf("marshal matching config: %w", err)
	}

	return models.UploadJob{
		JobID:          job.JobID,
		FileName:       job.FileName,
		FileHash:       job.FileHash,
		UploadedBy:     job.UploadedBy,
		UploadType:     string(job.UploadType),
		Status:         string(job.Status),
		RowCount:       job.RowCount,
		ProcessedRows:  job.ProcessedRows,
		FailedRows:     job.FailedRows,
		ColumnMapping:  columnMapping,
		MatchingConfig: matchingConfig,
		ErrorMessage:   job.ErrorMessage,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}, nil
}

// MarshalMatchingConfig serializes a matching configuration for its JSONB column.
func MarshalMatchingConfig(config domain.MatchingConfig) ([]byte, error) {
	payload, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal matching config: %w", err)
	}
	return payload, nil
}

// ToDomainUploadJob converts a scanned job row back into the domain shape.
func ToDomainUploadJob(model models.UploadJob) (domain.UploadJob, error) {
	var columnMapping map[string]string
	if len(model.ColumnMapping) > 0 {
		if err := json.Unmarshal(model.ColumnMapping, &columnMapping); err != nil {
			return domain.UploadJob{}, fmt.Errorf("unmarshal column mapping for job %s: %w", model.JobID, err)
		}
	}

	var matchingConfig domain.MatchingConfig
	if len(model.MatchingConfig) > 0 {
		if err := json.Unmarshal(model.MatchingConfig, &matchingConfig); err != nil {
			return domain.UploadJob{}, fmt.Errorf("unmarshal matching config for job %s: %w", model.JobID, err)
		}
	}

	return domain.UploadJob{
		JobID:          model.JobID,
		FileName:       model.FileName,
		FileHash:       model.FileHash,
		UploadedBy:     model.UploadedBy,
		UploadType:     domain.UploadType(model.UploadType),
		Status:         domain.UploadJobStatus(model.Status),
		RowCount:       model.RowCount,
		ProcessedRows:  model.ProcessedRows,
		FailedRows:     model.FailedRows,
		ColumnMapping:  columnMapping,
		MatchingConfig: matchingConfig,
		ErrorMessage:   model.ErrorMessage,
		StartedAt:      model.StartedAt,
		CompletedAt:    model.CompletedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}, nil
}
