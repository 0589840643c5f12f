package repositories

import (
	"context"
	"time"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
)

// ListJobsFilter narrows the job listing. Nil fields are ignored.
type ListJobsFilter struct {
	UploadedBy *string
	Status     *domain.UploadJobStatus
	UploadType *domain.UploadType
	Limit      int
}

// UploadJobReader defines read operations for upload jobs.
type UploadJobReader interface {
	// FindJobByID retrieves a job by its unique identifier.
	FindJobByID(ctx context.Context, jobID string) (*domain.UploadJob, error)

	// FindLatestReusableJob returns the most recent non-failed job for a
	// (file hash, upload type) pair, or ErrNotFound when none exists. This
	// backs the deduplication gate.
	FindLatestReusableJob(ctx context.Context, fileHash string, uploadType domain.UploadType) (*domain.UploadJob, error)

	// ListJobs retrieves jobs matching the filter, newest first.
	ListJobs(ctx context.Context, filter ListJobsFilter) ([]domain.UploadJob, error)
}

// UploadJobWriter defines write operations for upload jobs. Terminal
// transitions are guarded: they only apply while the job is still processing,
// so completedAt is written exactly once and reused jobs never transition.
type UploadJobWriter interface {
	// SaveJob inserts a new job in its initial processing state.
	SaveJob(ctx context.Context, job domain.UploadJob) error

	// UpdateRowCount records the drained source size on the job.
	UpdateRowCount(ctx context.Context, jobID string, rowCount int) error

	// UpdateMatchingConfig persists a configuration override onto the job.
	UpdateMatchingConfig(ctx context.Context, jobID string, config domain.MatchingConfig) error

	// MarkCompleted transitions processing -> completed with final counts.
	MarkCompleted(ctx context.Context, jobID string, processedRows, failedRows int, completedAt time.Time) error

	// MarkFailed transitions processing -> failed with the failure message.
	MarkFailed(ctx context.Context, jobID string, errorMessage string, failedAt time.Time) error
}

// UploadJobRepositoryFacade combines all upload job repository interfaces.
type UploadJobRepositoryFacade interface {
	UploadJobReader
	UploadJobWriter
}
