package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
	"github.com/Joshua-Peter7/reconsys/internal/models"
	"github.com/Joshua-Peter7/reconsys/internal/utils/mapping"
)

// insertBatchSize bounds one round trip of record inserts.
const insertBatchSize = 1000

type PgxRecordRepository struct {
	BaseRepository
}

// newPgxRecordRepository creates a new repository for record data.
func newPgxRecordRepository(pool *pgxpool.Pool) portsrepo.RecordRepositoryFacade {
	return &PgxRecordRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.RecordRepositoryFacade = (*PgxRecordRepository)(nil)

const recordColumns = `record_id, upload_job_id, source_type, transaction_id, reference_number,
	amount, record_date, row_number, raw_data, normalized_hash, active, created_at, updated_at`

const insertRecordQuery = `
	INSERT INTO records (` + recordColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var model models.Record
	err := row.Scan(
		&model.RecordID,
		&model.UploadJobID,
		&model.SourceType,
		&model.TransactionID,
		&model.ReferenceNumber,
		&model.Amount,
		&model.RecordDate,
		&model.RowNumber,
		&model.RawData,
		&model.NormalizedHash,
		&model.Active,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record, err := mapping.ToDomainRecord(model)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// recordExecer is the slice of the pool the insert path needs.
type recordExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func recordInsertArgs(model models.Record) []any {
	return []any{
		model.RecordID,
		model.UploadJobID,
		model.SourceType,
		model.TransactionID,
		model.ReferenceNumber,
		model.Amount,
		model.RecordDate,
		model.RowNumber,
		model.RawData,
		model.NormalizedHash,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	}
}

// InsertRecords persists records in batches of insertBatchSize. A row that
// fails to insert only bumps the failed counter; the rest of the batch and
// the remaining batches still go through.
func (r *PgxRecordRepository) InsertRecords(ctx context.Context, records []domain.Record) (int, int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	inserted, failed := 0, 0
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		chunk := make([]models.Record, 0, end-start)
		for _, record := range records[start:end] {
			model, err := mapping.ToModelRecord(record)
			if err != nil {
				logger.Warn("Skipping unmappable record", slog.String("record_id", record.RecordID), slog.String("error", err.Error()))
				failed++
				continue
			}
			chunk = append(chunk, model)
		}

		chunkInserted, chunkFailed := insertRecordChunk(ctx, r.Pool, logger, chunk)
		inserted += chunkInserted
		failed += chunkFailed
	}
	return inserted, failed, nil
}

// insertRecordChunk lands one chunk. The batched fast path runs in a single
// implicit transaction, so any failing row rolls the whole chunk back; such a
// chunk is retried with one statement per row so the good rows still land and
// only the bad ones count as failed.
func insertRecordChunk(ctx context.Context, db recordExecer, logger *slog.Logger, chunk []models.Record) (int, int) {
	if len(chunk) == 0 {
		return 0, 0
	}

	if err := insertChunkBatched(ctx, db, chunk); err != nil {
		logger.Warn("Record insert batch rolled back, retrying rows individually", slog.String("error", err.Error()))
		return insertChunkRowByRow(ctx, db, logger, chunk)
	}
	return len(chunk), 0
}

func insertChunkBatched(ctx context.Context, db recordExecer, chunk []models.Record) error {
	batch := &pgx.Batch{}
	for _, model := range chunk {
		batch.Queue(insertRecordQuery, recordInsertArgs(model)...)
	}

	br := db.SendBatch(ctx, batch)
	var execErr error
	for range chunk {
		if _, err := br.Exec(); err != nil && execErr == nil {
			execErr = err
		}
	}
	if err := br.Close(); err != nil && execErr == nil {
		execErr = err
	}
	return execErr
}

func insertChunkRowByRow(ctx context.Context, db recordExecer, logger *slog.Logger, chunk []models.Record) (int, int) {
	inserted, failed := 0, 0
	for _, model := range chunk {
		if _, err := db.Exec(ctx, insertRecordQuery, recordInsertArgs(model)...); err != nil {
			logger.Warn("Record insert failed", slog.String("record_id", model.RecordID), slog.String("error", err.Error()))
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}

// FindRecordByID retrieves a record by its ID.
func (r *PgxRecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE record_id = $1;`

	record, err := scanRecord(r.Pool.QueryRow(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record %s: %w", recordID, err)
	}
	return record, nil
}

// ListUploadedRecordsByJob retrieves the active uploaded records of one job,
// in insertion order.
func (r *PgxRecordRepository) ListUploadedRecordsByJob(ctx context.Context, uploadJobID string) ([]domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE upload_job_id = $1 AND source_type = $2 AND active
		ORDER BY row_number;
	`
	return r.queryRecords(ctx, query, uploadJobID, string(domain.SourceTypeUploaded))
}

// ListActiveSystemRecords retrieves the current system baseline.
func (r *PgxRecordRepository) ListActiveSystemRecords(ctx context.Context) ([]domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE source_type = $1 AND active
		ORDER BY created_at, row_number;
	`
	return r.queryRecords(ctx, query, string(domain.SourceTypeSystem))
}

func (r *PgxRecordRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]domain.Record, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	return records, nil
}

// DeactivateSystemRecords flags every currently active system record inactive
// in one bulk update.
func (r *PgxRecordRepository) DeactivateSystemRecords(ctx context.Context) (int64, error) {
	query := `UPDATE records SET active = false, updated_at = now() WHERE source_type = $1 AND active;`
	tag, err := r.Pool.Exec(ctx, query, string(domain.SourceTypeSystem))
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate system records: %w", err)
	}
	return tag.RowsAffected(), nil
}
