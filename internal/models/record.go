package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is the persistence shape of a normalized row.
type Record struct {
	RecordID        string
	UploadJobID     string
	SourceType      string
	TransactionID   string
	ReferenceNumber string
	Amount          decimal.Decimal
	RecordDate      time.Time
	RowNumber       int
	RawData         []byte // JSONB snapshot of the source row
	NormalizedHash  string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
