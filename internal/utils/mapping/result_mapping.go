package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/models"
)

// ToModelResult converts a domain reconciliation result into its persistence shape.
func ToModelResult(result domain.ReconciliationResult) (models.ReconciliationResult, error) {
	differences, err := json.Marshal(result.Differences)
	if err != nil {
		return models.ReconciliationResult{}, fmt.Errorf("marshal differences: %w", err)
	}

	return models.ReconciliationResult{
		ResultID:              result.ResultID,
		UploadJobID:           result.UploadJobID,
		UploadedRecordID:      result.UploadedRecordID,
		MatchedSystemRecordID: result.MatchedSystemRecordID,
		Status:                string(result.Status),
		Confidence:            result.Confidence,
		AmountVariancePercent: result.AmountVariancePercent,
		Differences:           differences,
		ManuallyCorrected:     result.ManuallyCorrected,
		CorrectedBy:           result.CorrectedBy,
		CorrectedAt:           result.CorrectedAt,
		CorrectionNotes:       result.CorrectionNotes,
		CreatedAt:             result.CreatedAt,
		UpdatedAt:             result.UpdatedAt,
	}, nil
}

// ToDomainResult converts a scanned result row back into the domain shape.
func ToDomainResult(model models.ReconciliationResult) (domain.ReconciliationResult, error) {
	var differences []domain.FieldDifference
	if len(model.Differences) > 0 {
		if err := json.Unmarshal(model.Differences, &differences); err != nil {
			return domain.ReconciliationResult{}, fmt.Errorf("unmarshal differences for result %s: %w", model.ResultID, err)
		}
	}

	return domain.ReconciliationResult{
		ResultID:              model.ResultID,
		UploadJobID:           model.UploadJobID,
		UploadedRecordID:      model.UploadedRecordID,
		MatchedSystemRecordID: model.MatchedSystemRecordID,
		Status:                domain.MatchStatus(model.Status),
		Confidence:            model.Confidence,
		AmountVariancePercent: model.AmountVariancePercent,
		Differences:           differences,
		ManuallyCorrected:     model.ManuallyCorrected,
		CorrectedBy:           model.CorrectedBy,
		CorrectedAt:           model.CorrectedAt,
		CorrectionNotes:       model.CorrectionNotes,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}, nil
}
