package dto

import (
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MatchingConfigPayload is a caller-supplied matching configuration override.
// Every part is optional; the service merges it into the defaults and drops
// unknown field names.
type MatchingConfigPayload struct {
	Exact *struct {
		Fields []string `json:"fields"`
	} `json:"exact,omitempty"`
	Partial *struct {
		ReferenceField  string           `json:"referenceField"`
		AmountField     string           `json:"amountField"`
		VariancePercent *decimal.Decimal `json:"variancePercent"`
	} `json:"partial,omitempty"`
	Duplicate *struct {
		KeyField string `json:"keyField"`
	} `json:"duplicate,omitempty"`
}

// RunReconciliationRequest triggers a reconciliation run for one job.
type RunReconciliationRequest struct {
	UploadJobID    string                 `json:"uploadJobId" binding:"required"`
	MatchingConfig *MatchingConfigPayload `json:"matchingConfig,omitempty"`
}

// ReconciliationRunResponse returns the sanitized effective configuration and
// aggregate stats for a completed run.
type ReconciliationRunResponse struct {
	Config domain.MatchingConfig      `json:"config"`
	Stats  domain.ReconciliationStats `json:"stats"`
}

// ListResultsRequest filters the result listing.
type ListResultsRequest struct {
	UploadJobID *string
	Status      *domain.MatchStatus
	Limit       int
	Skip        int
}
