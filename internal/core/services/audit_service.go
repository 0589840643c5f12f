package services

import (
	"context"
	"fmt"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

const (
	defaultJobTimelineLimit = 5000
	defaultActorLimit       = 2000
)

type auditService struct {
	jobRepo    portsrepo.UploadJobRepositoryFacade
	recordRepo portsrepo.RecordRepositoryFacade
	auditRepo  portsrepo.AuditLogRepositoryFacade
}

// NewAuditService creates the ledger read service.
func NewAuditService(
	jobRepo portsrepo.UploadJobRepositoryFacade,
	recordRepo portsrepo.RecordRepositoryFacade,
	auditRepo portsrepo.AuditLogRepositoryFacade,
) portssvc.AuditSvcFacade {
	return &auditService{
		jobRepo:    jobRepo,
		recordRepo: recordRepo,
		auditRepo:  auditRepo,
	}
}

func (s *auditService) GetRecordTimeline(ctx context.Context, identity domain.Identity, recordID string) ([]domain.AuditLogEntry, error) {
	record, err := s.recordRepo.FindRecordByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to find record %s: %w", recordID, err)
	}
	job, err := s.jobRepo.FindJobByID(ctx, record.UploadJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", record.UploadJobID, err)
	}
	if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
		return nil, fmt.Errorf("%w: record %s belongs to another user's job", apperrors.ErrForbidden, recordID)
	}

	entries, err := s.auditRepo.ListEntriesByRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for record %s: %w", recordID, err)
	}
	return entries, nil
}

func (s *auditService) GetJobTimeline(ctx context.Context, identity domain.Identity, uploadJobID string) ([]domain.AuditLogEntry, error) {
	job, err := s.jobRepo.FindJobByID(ctx, uploadJobID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job %s: %w", uploadJobID, err)
	}
	if !identity.CanAccessJobOwnedBy(job.UploadedBy) {
		return nil, fmt.Errorf("%w: job %s belongs to another user", apperrors.ErrForbidden, uploadJobID)
	}

	entries, err := s.auditRepo.ListEntriesByJob(ctx, uploadJobID, defaultJobTimelineLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for job %s: %w", uploadJobID, err)
	}
	return entries, nil
}

func (s *auditService) GetActorActions(ctx context.Context, identity domain.Identity, req dto.ListActorActionsRequest) ([]domain.AuditLogEntry, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("%w: the actor trail is restricted to administrators", apperrors.ErrForbidden)
	}
	if req.Limit <= 0 || req.Limit > defaultActorLimit {
		req.Limit = defaultActorLimit
	}

	entries, err := s.auditRepo.ListEntriesByActor(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries by actor: %w", err)
	}
	return entries, nil
}
