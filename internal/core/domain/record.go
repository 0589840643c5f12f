package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType separates uploaded rows from the system baseline they are matched
// against.
type SourceType string

const (
	SourceTypeUploaded SourceType = "uploaded"
	SourceTypeSystem   SourceType = "system"
)

// Record is one normalized row. Records are never deleted; superseded system
// generations are kept with Active=false. Only the manual correction workflow
// may change the four matchable fields.
type Record struct {
	RecordID        string            `json:"recordID"`
	UploadJobID     string            `json:"uploadJobID"`
	SourceType      SourceType        `json:"sourceType"`
	TransactionID   string            `json:"transactionId"`
	ReferenceNumber string            `json:"referenceNumber"`
	Amount          decimal.Decimal   `json:"amount"`
	Date            time.Time         `json:"date"`
	RowNumber       int               `json:"rowNumber"`
	RawData         map[string]string `json:"rawData"`
	NormalizedHash  string            `json:"normalizedHash"`
	Active          bool              `json:"active"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// KeyValue returns the canonical string form of a matchable field, as used in
// composite match keys: amounts at two decimal places, dates as UTC RFC3339,
// everything else verbatim.
func (r *Record) KeyValue(field string) string {
	switch field {
	case FieldTransactionID:
		return r.TransactionID
	case FieldReferenceNumber:
		return r.ReferenceNumber
	case FieldAmount:
		return r.Amount.StringFixed(2)
	case FieldDate:
		return r.Date.UTC().Format(time.RFC3339)
	default:
		return ""
	}
}

// SameCalendarDay reports whether both timestamps fall on the same UTC day.
func SameCalendarDay(left, right time.Time) bool {
	ly, lm, ld := left.UTC().Date()
	ry, rm, rd := right.UTC().Date()
	return ly == ry && lm == rm && ld == rd
}
