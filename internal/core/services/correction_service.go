package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
	"github.com/Joshua-Peter7/reconsys/internal/utils/normalization"
)

type correctionService struct {
	jobRepo    portsrepo.UploadJobRepositoryFacade
	recordRepo portsrepo.RecordRepositoryFacade
	resultRepo portsrepo.ReconciliationResultRepositoryFacade
}

// NewCorrectionService creates the manual correction service.
func NewCorrectionService(
	jobRepo portsrepo.UploadJobRepositoryFacade,
	recordRepo portsrepo.RecordRepositoryFacade,
	resultRepo portsrepo.ReconciliationResultRepositoryFacade,
) portssvc.CorrectionSvcFacade {
	return &correctionService{
		jobRepo:    jobRepo,
		recordRepo: recordRepo,
		resultRepo: resultRepo,
	}
}

func (s *correctionService) ApplyCorrection(ctx context.Context, identity domain.Identity, resultID string, req dto.CorrectionRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.resultRepo.FindResultByID(ctx, resultID)
	if err != nil {
		return fmt.Errorf("failed to find result %s: %w", resultID, err)
	}
	job, err := s.jobRepo.FindJobByID(ctx, result.UploadJobID)
	if err != nil {
		return fmt.Errorf("failed to find job %s: %w", result.UploadJobID, err)
	}
	if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
		return fmt.Errorf("%w: result %s belongs to another user's job", apperrors.ErrForbidden, resultID)
	}
	record, err := s.recordRepo.FindRecordByID(ctx, result.UploadedRecordID)
	if err != nil {
		return fmt.Errorf("failed to find record %s: %w", result.UploadedRecordID, err)
	}

	if req.Status != nil && !domain.IsValidMatchStatus(domain.MatchStatus(*req.Status)) {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, *req.Status)
	}

	now := time.Now().UTC()
	changes, err := applyRecordUpdates(record, req.Updates)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		record.UpdatedAt = now
	}

	if req.Status != nil {
		newStatus := domain.MatchStatus(*req.Status)
		if newStatus != result.Status {
			oldStatus := string(result.Status)
			changes = append(changes, domain.AuditChange{
				Field:    "status",
				OldValue: &oldStatus,
				NewValue: req.Status,
			})
			result.Status = newStatus
		}
	}

	// Correction metadata is stamped even when the change set is empty; the
	// attempt itself is part of the result's history.
	result.ManuallyCorrected = true
	result.CorrectedBy = &identity.UserID
	result.CorrectedAt = &now
	// Notes are replaced wholesale on every correction; omitting them clears
	// any prior notes.
	result.CorrectionNotes = nil
	if req.Notes != "" {
		notes := req.Notes
		result.CorrectionNotes = &notes
	}
	result.UpdatedAt = now

	var entry *domain.AuditLogEntry
	if len(changes) > 0 {
		entry = &domain.AuditLogEntry{
			EntryID:     uuid.NewString(),
			RecordID:    record.RecordID,
			UploadJobID: job.JobID,
			Action:      domain.ActionManualCorrection,
			Source:      domain.AuditSourceManual,
			ChangedBy:   identity.UserID,
			Changes:     changes,
			Metadata: map[string]any{
				"resultId": result.ResultID,
				"notes":    req.Notes,
			},
			CreatedAt: now,
		}
	}

	if err := s.resultRepo.ApplyCorrection(ctx, *record, *result, entry); err != nil {
		return fmt.Errorf("failed to commit correction for result %s: %w", resultID, err)
	}

	logger.Info("Manual correction applied",
		slog.String("result_id", resultID),
		slog.String("record_id", record.RecordID),
		slog.Int("changes", len(changes)),
	)
	return nil
}

// applyRecordUpdates coerces and applies the requested field updates onto the
// record, returning one audit change per field whose value actually moved.
// Amount and date go through the same coercion as ingestion; a value that
// fails coercion rejects the whole correction.
func applyRecordUpdates(record *domain.Record, updates dto.CorrectionUpdates) ([]domain.AuditChange, error) {
	var changes []domain.AuditChange
	appendChange := func(field, oldValue, newValue string) {
		ov, nv := oldValue, newValue
		changes = append(changes, domain.AuditChange{Field: field, OldValue: &ov, NewValue: &nv})
	}

	if updates.TransactionID != nil && *updates.TransactionID != record.TransactionID {
		appendChange(domain.FieldTransactionID, record.TransactionID, *updates.TransactionID)
		record.TransactionID = *updates.TransactionID
	}
	if updates.ReferenceNumber != nil && *updates.ReferenceNumber != record.ReferenceNumber {
		appendChange(domain.FieldReferenceNumber, record.ReferenceNumber, *updates.ReferenceNumber)
		record.ReferenceNumber = *updates.ReferenceNumber
	}
	if updates.Amount != nil {
		amount, err := normalization.ParseAmount(*updates.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if !amount.Equal(record.Amount) {
			appendChange(domain.FieldAmount, record.Amount.StringFixed(2), amount.StringFixed(2))
			record.Amount = amount
		}
	}
	if updates.Date != nil {
		date, err := normalization.ParseDate(*updates.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		if !date.Equal(record.Date) {
			appendChange(domain.FieldDate, record.KeyValue(domain.FieldDate), date.UTC().Format(time.RFC3339))
			record.Date = date
		}
	}
	return changes, nil
}
