package services

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

// AuditSvcFacade exposes read access to the append-only ledger.
type AuditSvcFacade interface {
	// GetRecordTimeline returns a record's audit entries, oldest first,
	// after an ownership check against the owning job.
	GetRecordTimeline(ctx context.Context, identity domain.Identity, recordID string) ([]domain.AuditLogEntry, error)

	// GetJobTimeline returns a job's audit entries, oldest first.
	GetJobTimeline(ctx context.Context, identity domain.Identity, uploadJobID string) ([]domain.AuditLogEntry, error)

	// GetActorActions returns entries by acting user; privileged callers only.
	GetActorActions(ctx context.Context, identity domain.Identity, req dto.ListActorActionsRequest) ([]domain.AuditLogEntry, error)
}
