package domain

import "github.com/shopspring/decimal"

// ExactMatchConfig lists the fields whose composite key must be identical for an
// exact match.
type ExactMatchConfig struct {
	Fields []string `json:"fields"`
}

// PartialMatchConfig controls the amount-tolerant tier: candidates share the
// reference field value and their amount variance must stay within
// VariancePercent (boundary inclusive).
type PartialMatchConfig struct {
	ReferenceField  string          `json:"referenceField"`
	AmountField     string          `json:"amountField"`
	VariancePercent decimal.Decimal `json:"variancePercent"`
}

// DuplicateMatchConfig names the business key used to detect duplicate rows
// within one upload.
type DuplicateMatchConfig struct {
	KeyField string `json:"keyField"`
}

// MatchingConfig is the full matching engine configuration, persisted on the job.
type MatchingConfig struct {
	Exact     ExactMatchConfig     `json:"exact"`
	Partial   PartialMatchConfig   `json:"partial"`
	Duplicate DuplicateMatchConfig `json:"duplicate"`
}

// DefaultMatchingConfig returns the engine defaults with the given partial
// variance ceiling.
func DefaultMatchingConfig(variancePercent decimal.Decimal) MatchingConfig {
	return MatchingConfig{
		Exact: ExactMatchConfig{
			Fields: []string{FieldTransactionID, FieldAmount},
		},
		Partial: PartialMatchConfig{
			ReferenceField:  FieldReferenceNumber,
			AmountField:     FieldAmount,
			VariancePercent: variancePercent,
		},
		Duplicate: DuplicateMatchConfig{
			KeyField: FieldTransactionID,
		},
	}
}
