package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationResult is the persistence shape of one classification row.
type ReconciliationResult struct {
	ResultID              string
	UploadJobID           string
	UploadedRecordID      string
	MatchedSystemRecordID *string
	Status                string
	Confidence            float64
	AmountVariancePercent *decimal.Decimal
	Differences           []byte // JSONB ordered array of field differences
	ManuallyCorrected     bool
	CorrectedBy           *string
	CorrectedAt           *time.Time
	CorrectionNotes       *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
