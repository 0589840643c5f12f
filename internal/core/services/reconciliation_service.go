package services

import (
	"context"
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
)

const (
	defaultResultsLimit = 100
	maxResultsLimit     = 500
)

type reconciliationService struct {
	jobRepo         portsrepo.UploadJobRepositoryFacade
	recordRepo      portsrepo.RecordRepositoryFacade
	resultRepo      portsrepo.ReconciliationResultRepositoryFacade
	auditRepo       portsrepo.AuditLogRepositoryFacade
	guard           *jobGuard
	defaultVariance decimal.Decimal
}

// NewReconciliationService creates the matching engine service.
func NewReconciliationService(
	jobRepo portsrepo.UploadJobRepositoryFacade,
	recordRepo portsrepo.RecordRepositoryFacade,
	resultRepo portsrepo.ReconciliationResultRepositoryFacade,
	auditRepo portsrepo.AuditLogRepositoryFacade,
	guard *jobGuard,
	defaultVariance decimal.Decimal,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		jobRepo:         jobRepo,
		recordRepo:      recordRepo,
		resultRepo:      resultRepo,
		auditRepo:       auditRepo,
		guard:           guard,
		defaultVariance: defaultVariance,
	}
}

func (s *reconciliationService) TriggerReconciliation(ctx context.Context, identity domain.Identity, req dto.RunReconciliationRequest) (*dto.ReconciliationRunResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	job, err := s.jobRepo.FindJobByID(ctx, req.UploadJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", req.UploadJobID, err)
	}
	if job.UploadType != domain.UploadTypeTransaction {
		return nil, fmt.Errorf("%w: reconciliation only applies to transaction uploads", apperrors.ErrValidation)
	}
	if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
		return nil, fmt.Errorf("%w: job %s belongs to another user", apperrors.ErrForbidden, job.JobID)
	}

	if req.MatchingConfig != nil {
		merged := applyConfigPayload(sanitizeMatchingConfig(job.MatchingConfig, s.defaultVariance), req.MatchingConfig)
		job.MatchingConfig = sanitizeMatchingConfig(merged, s.defaultVariance)
		if err := s.jobRepo.UpdateMatchingConfig(ctx, job.JobID, job.MatchingConfig); err != nil {
			return nil, fmt.Errorf("failed to persist matching config for job %s: %w", job.JobID, err)
		}
	}

	if !s.guard.TryAcquire(job.JobID) {
		return nil, fmt.Errorf("%w: reconciliation already in progress for job %s", apperrors.ErrDuplicate, job.JobID)
	}
	defer s.guard.Release(job.JobID)

	payload, err := s.RunForJob(ctx, job, identity.UserID)
	if err != nil {
		return nil, err
	}

	// A job still processing is finalized by a successful run; terminal
	// jobs never transition and the guarded update keeps it that way.
	if !job.Status.IsTerminal() {
		if err := s.jobRepo.MarkCompleted(ctx, job.JobID, job.ProcessedRows, job.FailedRows, time.Now().UTC()); err != nil {
			logger.Error("Failed to finalize job after re-run", slog.String("job_id", job.JobID), slog.String("error", err.Error()))
		}
	}

	return payload, nil
}

// RunForJob evaluates every uploaded record of the job against the active
// system baseline and atomically replaces the job's result set. The caller
// must hold the job's lease.
func (s *reconciliationService) RunForJob(ctx context.Context, job *domain.UploadJob, actorUserID string) (*dto.ReconciliationRunResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cfg := sanitizeMatchingConfig(job.MatchingConfig, s.defaultVariance)

	uploaded, err := s.recordRepo.ListUploadedRecordsByJob(ctx, job.JobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploaded records for job %s: %w", job.JobID, err)
	}
	system, err := s.recordRepo.ListActiveSystemRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list system baseline: %w", err)
	}

	now := time.Now().UTC()
	results := evaluateRecords(uploaded, system, cfg, job.JobID, now)

	if err := s.resultRepo.ReplaceResultsForJob(ctx, job.JobID, results); err != nil {
		return nil, fmt.Errorf("failed to replace results for job %s: %w", job.JobID, err)
	}

	if len(results) > 0 {
		entries := buildEvaluationEntries(job.JobID, actorUserID, results, now)
		if err := s.auditRepo.AppendEntries(ctx, entries); err != nil {
			return nil, fmt.Errorf("failed to append audit entries for job %s: %w", job.JobID, err)
		}
	}

	stats := buildStats(results)
	logger.Info("Reconciliation run finished",
		slog.String("job_id", job.JobID),
		slog.Int("uploaded", len(uploaded)),
		slog.Int("baseline", len(system)),
		slog.Int("matched", stats.Matched),
		slog.Int("partially_matched", stats.PartiallyMatched),
		slog.Int("not_matched", stats.NotMatched),
		slog.Int("duplicates", stats.Duplicates),
	)

	return &dto.ReconciliationRunResponse{Config: cfg, Stats: stats}, nil
}

func (s *reconciliationService) ListResults(ctx context.Context, identity domain.Identity, req dto.ListResultsRequest) ([]domain.ReconciliationResult, error) {
	filter := portsrepo.ListResultsFilter{
		Status: req.Status,
		Limit:  req.Limit,
		Skip:   req.Skip,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultResultsLimit
	}
	if filter.Limit > maxResultsLimit {
		filter.Limit = maxResultsLimit
	}

	if req.UploadJobID != nil {
		job, err := s.jobRepo.FindJobByID(ctx, *req.UploadJobID)
		if err != nil {
			return nil, fmt.Errorf("failed to find job %s: %w", *req.UploadJobID, err)
		}
		if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
			return nil, fmt.Errorf("%w: job %s belongs to another user", apperrors.ErrForbidden, job.JobID)
		}
		filter.UploadJobID = req.UploadJobID
	} else if !identity.IsAdmin {
		jobIDs, err := s.visibleJobIDs(ctx, identity)
		if err != nil {
			return nil, err
		}
		if len(jobIDs) == 0 {
			return []domain.ReconciliationResult{}, nil
		}
		filter.UploadJobIDs = jobIDs
	}

	results, err := s.resultRepo.ListResults(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

func (s *reconciliationService) GetStats(ctx context.Context, identity domain.Identity, uploadJobID *string) (*domain.ReconciliationStats, error) {
	var jobIDs []string
	if uploadJobID != nil {
		job, err := s.jobRepo.FindJobByID(ctx, *uploadJobID)
		if err != nil {
			return nil, fmt.Errorf("failed to find job %s: %w", *uploadJobID, err)
		}
		if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
			return nil, fmt.Errorf("%w: job %s belongs to another user", apperrors.ErrForbidden, job.JobID)
		}
		jobIDs = []string{job.JobID}
	} else if !identity.IsAdmin {
		visible, err := s.visibleJobIDs(ctx, identity)
		if err != nil {
			return nil, err
		}
		if len(visible) == 0 {
			return &domain.ReconciliationStats{}, nil
		}
		jobIDs = visible
	}

	counts, err := s.resultRepo.CountResultsByStatus(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate result counts: %w", err)
	}

	stats := domain.ReconciliationStats{
		Matched:          counts[domain.StatusMatched],
		PartiallyMatched: counts[domain.StatusPartiallyMatched],
		NotMatched:       counts[domain.StatusNotMatched],
		Duplicates:       counts[domain.StatusDuplicate],
	}
	stats.Total = stats.Matched + stats.PartiallyMatched + stats.NotMatched + stats.Duplicates
	if stats.Total > 0 {
		stats.Accuracy = roundTwo(float64(stats.Matched+stats.PartiallyMatched) / float64(stats.Total) * 100)
	}
	return &stats, nil
}

// visibleJobIDs returns the IDs of every job owned by the identity.
func (s *reconciliationService) visibleJobIDs(ctx context.Context, identity domain.Identity) ([]string, error) {
	jobs, err := s.jobRepo.ListJobs(ctx, portsrepo.ListJobsFilter{UploadedBy: &identity.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for user %s: %w", identity.UserID, err)
	}
	jobIDs := make([]string, len(jobs))
	for i := range jobs {
		jobIDs[i] = jobs[i].JobID
	}
	return jobIDs, nil
}

// buildEvaluationEntries turns one run's results into ledger entries, one per
// evaluated record.
func buildEvaluationEntries(uploadJobID, actorUserID string, results []domain.ReconciliationResult, now time.Time) []domain.AuditLogEntry {
	entries := make([]domain.AuditLogEntry, len(results))
	for i := range results {
		result := &results[i]
		status := string(result.Status)
		metadata := map[string]any{
			"resultId":   result.ResultID,
			"confidence": result.Confidence,
		}
		if result.AmountVariancePercent != nil {
			metadata["amountVariancePercent"] = result.AmountVariancePercent.String()
		}
		entries[i] = domain.AuditLogEntry{
			EntryID:     uuid.NewString(),
			RecordID:    result.UploadedRecordID,
			UploadJobID: uploadJobID,
			Action:      domain.ActionReconciliationEvaluated,
			Source:      domain.AuditSourceSystem,
			ChangedBy:   actorUserID,
			Changes: []domain.AuditChange{{
				Field:    "status",
				OldValue: nil,
				NewValue: &status,
			}},
			Metadata:  metadata,
			CreatedAt: now,
		}
	}
	return entries
}
