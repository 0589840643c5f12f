package repositories

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
)

// ListResultsFilter narrows the result listing. Nil fields are ignored.
type ListResultsFilter struct {
	UploadJobID  *string
	Status       *domain.MatchStatus
	UploadJobIDs []string // restricts non-privileged callers to their own jobs
	Limit        int
	Skip         int
}

// ReconciliationResultReader defines read operations for reconciliation results.
type ReconciliationResultReader interface {
	// FindResultByID retrieves a result by its unique identifier.
	FindResultByID(ctx context.Context, resultID string) (*domain.ReconciliationResult, error)

	// ListResults retrieves results matching the filter, newest first.
	ListResults(ctx context.Context, filter ListResultsFilter) ([]domain.ReconciliationResult, error)

	// CountResultsByStatus aggregates result counts per status. An empty
	// jobIDs slice means no restriction.
	CountResultsByStatus(ctx context.Context, jobIDs []string) (map[domain.MatchStatus]int, error)
}

// ReconciliationResultWriter defines write operations for reconciliation results.
type ReconciliationResultWriter interface {
	// ReplaceResultsForJob deletes every prior result of the job and inserts
	// the new set inside one transaction: a re-run fully replaces, never
	// merges, and results are never partially published.
	ReplaceResultsForJob(ctx context.Context, uploadJobID string, results []domain.ReconciliationResult) error

	// ApplyCorrection commits a manual correction as one transaction:
	// the record's field updates, the result's status/correction metadata,
	// and the audit entry (nil when the change set was empty). Any failure
	// rolls the whole operation back.
	ApplyCorrection(ctx context.Context, record domain.Record, result domain.ReconciliationResult, entry *domain.AuditLogEntry) error
}

// ReconciliationResultRepositoryFacade combines all result repository interfaces.
type ReconciliationResultRepositoryFacade interface {
	ReconciliationResultReader
	ReconciliationResultWriter
}
