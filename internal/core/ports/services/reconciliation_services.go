package services

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

// ReconciliationSvcFacade is the matching engine surface.
type ReconciliationSvcFacade interface {
	// TriggerReconciliation re-runs matching for a transaction job after
	// ownership checks, optionally persisting a configuration override first.
	// Prior results of the job are fully replaced.
	TriggerReconciliation(ctx context.Context, identity domain.Identity, req dto.RunReconciliationRequest) (*dto.ReconciliationRunResponse, error)

	// RunForJob executes matching for a job without ownership checks. It is
	// the ingestion pipeline's synchronous hand-off; the caller must already
	// hold the job's lease.
	RunForJob(ctx context.Context, job *domain.UploadJob, actorUserID string) (*dto.ReconciliationRunResponse, error)

	// ListResults returns results visible to the identity.
	ListResults(ctx context.Context, identity domain.Identity, req dto.ListResultsRequest) ([]domain.ReconciliationResult, error)

	// GetStats aggregates result statuses, job-scoped when uploadJobID is
	// non-nil, otherwise across every job visible to the identity.
	GetStats(ctx context.Context, identity domain.Identity, uploadJobID *string) (*domain.ReconciliationStats, error)
}
