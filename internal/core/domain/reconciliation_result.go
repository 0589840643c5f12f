package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus classifies one uploaded record against the active baseline.
type MatchStatus string

const (
	StatusMatched          MatchStatus = "matched"
	StatusPartiallyMatched MatchStatus = "partially_matched"
	StatusNotMatched       MatchStatus = "not_matched"
	StatusDuplicate        MatchStatus = "duplicate"
)

// IsValidMatchStatus reports whether s is one of the four persisted statuses.
func IsValidMatchStatus(s MatchStatus) bool {
	switch s {
	case StatusMatched, StatusPartiallyMatched, StatusNotMatched, StatusDuplicate:
		return true
	}
	return false
}

// FieldDifference records a field-level mismatch between an uploaded record and
// its matched system record. A result with no system match carries a single
// difference entry flagging the absence.
type FieldDifference struct {
	Field         string  `json:"field"`
	UploadedValue *string `json:"uploadedValue"`
	SystemValue   *string `json:"systemValue"`
}

// ReconciliationResult is the classification of exactly one uploaded record
// within one run. Re-running a job replaces its full result set.
type ReconciliationResult struct {
	ResultID              string            `json:"resultID"`
	UploadJobID           string            `json:"uploadJobID"`
	UploadedRecordID      string            `json:"uploadedRecordID"`
	MatchedSystemRecordID *string           `json:"matchedSystemRecordID,omitempty"`
	Status                MatchStatus       `json:"status"`
	Confidence            float64           `json:"confidence"`
	AmountVariancePercent *decimal.Decimal  `json:"amountVariancePercent,omitempty"`
	Differences           []FieldDifference `json:"differences"`
	ManuallyCorrected     bool              `json:"manuallyCorrected"`
	CorrectedBy           *string           `json:"correctedBy,omitempty"`
	CorrectedAt           *time.Time        `json:"correctedAt,omitempty"`
	CorrectionNotes       *string           `json:"correctionNotes,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}
