package services

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

// UploadSvcFacade is the submission and job-tracking surface: the
// deduplication gate, the asynchronous ingestion pipeline and the job state
// machine queries.
type UploadSvcFacade interface {
	// CreateUploadJob validates the column mapping, runs the deduplication
	// gate, and either returns the reused job or creates a new one and
	// schedules its background processing. The returned acknowledgment is
	// immediate; callers poll GetJob for completion.
	CreateUploadJob(ctx context.Context, identity domain.Identity, req dto.CreateUploadJobRequest) (*dto.UploadJobSubmission, error)

	// GetJob returns a job after an ownership check.
	GetJob(ctx context.Context, identity domain.Identity, jobID string) (*domain.UploadJob, error)

	// ListJobs returns jobs visible to the identity, newest first.
	ListJobs(ctx context.Context, identity domain.Identity, req dto.ListJobsRequest) ([]domain.UploadJob, error)

	// Preview decodes the first rows of a file for column mapping setup.
	Preview(ctx context.Context, fileName string, data []byte, limit int) (*dto.UploadPreviewResponse, error)
}
