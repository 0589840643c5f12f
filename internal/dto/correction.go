package dto

// CorrectionUpdates is the typed change-set for a manual correction: each field
// is optional and only compared/applied when supplied. Amount and date arrive
// as strings and go through the same coercion as ingestion.
type CorrectionUpdates struct {
	TransactionID   *string `json:"transactionId,omitempty"`
	ReferenceNumber *string `json:"referenceNumber,omitempty"`
	Amount          *string `json:"amount,omitempty"`
	Date            *string `json:"date,omitempty"`
}

// CorrectionRequest applies a manual override to one reconciliation result.
type CorrectionRequest struct {
	Updates CorrectionUpdates `json:"updates"`
	Status  *string           `json:"status,omitempty"`
	Notes   string            `json:"notes,omitempty"`
}
