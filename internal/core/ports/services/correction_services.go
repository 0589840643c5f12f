package services

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

// CorrectionSvcFacade applies manual overrides to reconciliation results.
type CorrectionSvcFacade interface {
	// ApplyCorrection validates the request, computes the field change set
	// and commits record, result and audit entry as one transaction. The
	// correction metadata is stamped even when nothing changed; an audit
	// entry is written only for a non-empty change set.
	ApplyCorrection(ctx context.Context, identity domain.Identity, resultID string, req dto.CorrectionRequest) error
}
