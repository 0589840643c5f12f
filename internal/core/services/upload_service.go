package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
	"github.com/Joshua-Peter7/reconsys/internal/utils/hashing"
	"github.com/Joshua-Peter7/reconsys/internal/utils/normalization"
)

const defaultJobsLimit = 200

type uploadService struct {
	jobRepo         portsrepo.UploadJobRepositoryFacade
	recordRepo      portsrepo.RecordRepositoryFacade
	reconciliation  portssvc.ReconciliationSvcFacade
	rowSource       portssvc.RowSource
	guard           *jobGuard
	maxUploadRows   int
	defaultVariance decimal.Decimal
	logger          *slog.Logger
}

// NewUploadService creates the submission and ingestion service.
func NewUploadService(
	jobRepo portsrepo.UploadJobRepositoryFacade,
	recordRepo portsrepo.RecordRepositoryFacade,
	reconciliation portssvc.ReconciliationSvcFacade,
	rowSource portssvc.RowSource,
	guard *jobGuard,
	maxUploadRows int,
	defaultVariance decimal.Decimal,
	logger *slog.Logger,
) portssvc.UploadSvcFacade {
	return &uploadService{
		jobRepo:         jobRepo,
		recordRepo:      recordRepo,
		reconciliation:  reconciliation,
		rowSource:       rowSource,
		guard:           guard,
		maxUploadRows:   maxUploadRows,
		defaultVariance: defaultVariance,
		logger:          logger,
	}
}

func (s *uploadService) CreateUploadJob(ctx context.Context, identity domain.Identity, req dto.CreateUploadJobRequest) (*dto.UploadJobSubmission, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.UploadType != domain.UploadTypeTransaction && req.UploadType != domain.UploadTypeSystem {
		return nil, fmt.Errorf("%w: unknown upload type %q", apperrors.ErrValidation, req.UploadType)
	}
	if len(req.FileBytes) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperrors.ErrValidation)
	}
	if missing := normalization.MissingMappingTargets(req.ColumnMapping); len(missing) > 0 {
		return nil, fmt.Errorf("%w: column mapping must cover %v", apperrors.ErrValidation, missing)
	}

	fileHash := hashing.HashBytes(req.FileBytes)

	// Deduplication gate: identical bytes for the same upload type reuse the
	// latest non-failed job instead of re-ingesting.
	existing, err := s.jobRepo.FindLatestReusableJob(ctx, fileHash, req.UploadType)
	if err == nil {
		logger.Info("Upload deduplicated onto existing job",
			slog.String("job_id", existing.JobID),
			slog.String("file_hash", fileHash),
		)
		return &dto.UploadJobSubmission{
			JobID:      existing.JobID,
			Status:     string(existing.Status),
			UploadType: string(existing.UploadType),
			Reused:     true,
			Message:    "identical file already accepted; reusing existing job",
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate upload: %w", err)
	}

	merged := applyConfigPayload(domain.DefaultMatchingConfig(s.defaultVariance), req.MatchingConfig)
	matchingConfig := sanitizeMatchingConfig(merged, s.defaultVariance)

	now := time.Now().UTC()
	job := domain.UploadJob{
		JobID:          uuid.NewString(),
		FileName:       req.FileName,
		FileHash:       fileHash,
		UploadedBy:     identity.UserID,
		UploadType:     req.UploadType,
		Status:         domain.JobStatusProcessing,
		ColumnMapping:  req.ColumnMapping,
		MatchingConfig: matchingConfig,
		StartedAt:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.jobRepo.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save upload job: %w", err)
	}

	go s.processUploadJob(job, req.FileBytes, identity.UserID)

	return &dto.UploadJobSubmission{
		JobID:      job.JobID,
		Status:     string(job.Status),
		UploadType: string(job.UploadType),
		Reused:     false,
		Message:    "upload accepted; processing started",
	}, nil
}

// processUploadJob drives the ingestion pipeline in the background, detached
// from the request context. Any failure, including a panic, lands the job in
// the failed state with a descriptive message.
func (s *uploadService) processUploadJob(job domain.UploadJob, fileBytes []byte, actorUserID string) {
	ctx := context.Background()
	logger := s.logger.With(
		slog.String("job_id", job.JobID),
		slog.String("upload_type", string(job.UploadType)),
	)

	if !s.guard.TryAcquire(job.JobID) {
		logger.Warn("Job is already being processed, skipping")
		return
	}
	defer s.guard.Release(job.JobID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Ingestion panicked", slog.Any("panic", r))
			s.failJob(ctx, logger, job.JobID, fmt.Sprintf("unexpected ingestion failure: %v", r))
		}
	}()

	if err := s.runIngestion(ctx, logger, &job, fileBytes, actorUserID); err != nil {
		s.failJob(ctx, logger, job.JobID, err.Error())
	}
}

func (s *uploadService) runIngestion(ctx context.Context, logger *slog.Logger, job *domain.UploadJob, fileBytes []byte, actorUserID string) error {
	rows, err := s.rowSource.Rows(job.FileName, fileBytes)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	if err := s.jobRepo.UpdateRowCount(ctx, job.JobID, len(rows)); err != nil {
		return fmt.Errorf("failed to record row count: %v", err)
	}
	job.RowCount = len(rows)

	if len(rows) > s.maxUploadRows {
		return fmt.Errorf("file has %d rows, exceeding the limit of %d; split the file and upload the parts separately", len(rows), s.maxUploadRows)
	}

	sourceType := domain.SourceTypeUploaded
	if job.UploadType == domain.UploadTypeSystem {
		sourceType = domain.SourceTypeSystem
		// A new baseline generation supersedes the old one wholesale.
		deactivated, err := s.recordRepo.DeactivateSystemRecords(ctx)
		if err != nil {
			return fmt.Errorf("failed to retire previous system baseline: %v", err)
		}
		logger.Info("Previous system baseline retired", slog.Int64("deactivated", deactivated))
	}

	now := time.Now().UTC()
	records := make([]domain.Record, 0, len(rows))
	failedRows := 0
	for i, raw := range rows {
		// Row numbers are 1-based over the data rows, after the header.
		normalized, problems := normalization.NormalizeRow(raw, job.ColumnMapping, i+2)
		if len(problems) > 0 {
			failedRows++
			continue
		}
		records = append(records, domain.Record{
			RecordID:        uuid.NewString(),
			UploadJobID:     job.JobID,
			SourceType:      sourceType,
			TransactionID:   normalized.TransactionID,
			ReferenceNumber: normalized.ReferenceNumber,
			Amount:          normalized.Amount,
			Date:            normalized.Date,
			RowNumber:       normalized.RowNumber,
			RawData:         normalized.RawData,
			NormalizedHash:  hashing.HashNormalizedRow(normalized.TransactionID, normalized.ReferenceNumber, normalized.Amount, normalized.Date),
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	inserted, failedInserts, err := s.recordRepo.InsertRecords(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to insert records: %v", err)
	}

	job.ProcessedRows = inserted
	job.FailedRows = failedRows + failedInserts

	if inserted == 0 && len(rows) > 0 {
		return fmt.Errorf("no valid rows were imported; verify that the column mapping points at the right columns and that amounts and dates are well formed")
	}

	if job.UploadType == domain.UploadTypeTransaction && inserted > 0 {
		if _, err := s.reconciliation.RunForJob(ctx, job, actorUserID); err != nil {
			return fmt.Errorf("reconciliation failed: %v", err)
		}
	}

	if err := s.jobRepo.MarkCompleted(ctx, job.JobID, job.ProcessedRows, job.FailedRows, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to finalize job: %v", err)
	}

	logger.Info("Ingestion completed",
		slog.Int("rows", len(rows)),
		slog.Int("imported", inserted),
		slog.Int("failed", job.FailedRows),
	)
	return nil
}

func (s *uploadService) failJob(ctx context.Context, logger *slog.Logger, jobID, message string) {
	logger.Error("Ingestion failed", slog.String("error", message))
	if err := s.jobRepo.MarkFailed(ctx, jobID, message, time.Now().UTC()); err != nil {
		logger.Error("Failed to mark job as failed", slog.String("error", err.Error()))
	}
}

func (s *uploadService) GetJob(ctx context.Context, identity domain.Identity, jobID string) (*domain.UploadJob, error) {
	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
		return nil, fmt.Errorf("%w: job %s belongs to another user", apperrors.ErrForbidden, jobID)
	}
	return job, nil
}

func (s *uploadService) ListJobs(ctx context.Context, identity domain.Identity, req dto.ListJobsRequest) ([]domain.UploadJob, error) {
	filter := portsrepo.ListJobsFilter{
		Status:     req.Status,
		UploadType: req.UploadType,
		Limit:      defaultJobsLimit,
	}
	if identity.IsAdmin {
		filter.UploadedBy = req.UploadedBy
	} else {
		// Non-privileged callers only ever see their own jobs.
		filter.UploadedBy = &identity.UserID
	}

	jobs, err := s.jobRepo.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *uploadService) Preview(ctx context.Context, fileName string, data []byte, limit int) (*dto.UploadPreviewResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperrors.ErrValidation)
	}
	headers, rows, err := s.rowSource.Preview(fileName, data, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	preview := &dto.UploadPreviewResponse{Headers: headers, Rows: make([]map[string]string, len(rows))}
	for i, row := range rows {
		preview.Rows[i] = row
	}
	return preview, nil
}
