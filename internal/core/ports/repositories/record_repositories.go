package repositories

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
)

// RecordReader defines read operations for records.
type RecordReader interface {
	// FindRecordByID retrieves a record by its unique identifier.
	FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error)

	// ListUploadedRecordsByJob retrieves the active uploaded records of one
	// job, in insertion order.
	ListUploadedRecordsByJob(ctx context.Context, uploadJobID string) ([]domain.Record, error)

	// ListActiveSystemRecords retrieves the current system baseline, in
	// insertion order. The baseline is global, not job-scoped.
	ListActiveSystemRecords(ctx context.Context) ([]domain.Record, error)
}

// RecordWriter defines write operations for records.
type RecordWriter interface {
	// InsertRecords persists records in batches. A row that fails to insert
	// is counted, not fatal: the batch and the remaining batches continue.
	InsertRecords(ctx context.Context, records []domain.Record) (inserted int, failed int, err error)

	// DeactivateSystemRecords flags every currently active system record
	// inactive in one bulk update, making room for a new baseline generation.
	DeactivateSystemRecords(ctx context.Context) (int64, error)
}

// RecordRepositoryFacade combines all record repository interfaces.
type RecordRepositoryFacade interface {
	RecordReader
	RecordWriter
}
