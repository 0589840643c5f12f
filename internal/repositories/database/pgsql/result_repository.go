package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	"github.com/Joshua-Peter7/reconsys/internal/models"
	"github.com/Joshua-Peter7/reconsys/internal/utils/mapping"
)

type PgxResultRepository struct {
	BaseRepository
}

// newPgxResultRepository creates a new repository for reconciliation results.
func newPgxResultRepository(pool *pgxpool.Pool) portsrepo.ReconciliationResultRepositoryFacade {
	return &PgxResultRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ReconciliationResultRepositoryFacade = (*PgxResultRepository)(nil)

const resultColumns = `result_id, upload_job_id, uploaded_record_id, matched_system_record_id,
	status, confidence, amount_variance_percent, differences, manually_corrected,
	corrected_by, corrected_at, correction_notes, created_at, updated_at`

const insertResultQuery = `
	INSERT INTO reconciliation_results (` + resultColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`

func scanResult(row pgx.Row) (*domain.ReconciliationResult, error) {
	var model models.ReconciliationResult
	err := row.Scan(
		&model.ResultID,
		&model.UploadJobID,
		&model.UploadedRecordID,
		&model.MatchedSystemRecordID,
		&model.Status,
		&model.Confidence,
		&model.AmountVariancePercent,
		&model.Differences,
		&model.ManuallyCorrected,
		&model.CorrectedBy,
		&model.CorrectedAt,
		&model.CorrectionNotes,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	result, err := mapping.ToDomainResult(model)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func queueResultInsert(batch *pgx.Batch, model models.ReconciliationResult) {
	batch.Queue(insertResultQuery,
		model.ResultID,
		model.UploadJobID,
		model.UploadedRecordID,
		model.MatchedSystemRecordID,
		model.Status,
		model.Confidence,
		model.AmountVariancePercent,
		model.Differences,
		model.ManuallyCorrected,
		model.CorrectedBy,
		model.CorrectedAt,
		model.CorrectionNotes,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

// ReplaceResultsForJob deletes every prior result of the job and inserts the
// new set inside one transaction.
func (r *PgxResultRepository) ReplaceResultsForJob(ctx context.Context, uploadJobID string, results []domain.ReconciliationResult) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reconciliation_results WHERE upload_job_id = $1;`, uploadJobID); err != nil {
		return fmt.Errorf("failed to delete prior results for job %s: %w", uploadJobID, err)
	}

	batch := &pgx.Batch{}
	for _, result := range results {
		model, err := mapping.ToModelResult(result)
		if err != nil {
			return fmt.Errorf("failed to map result %s: %w", result.ResultID, err)
		}
		queueResultInsert(batch, model)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to insert results for job %s: %w", uploadJobID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// ApplyCorrection commits a manual correction atomically: the record's field
// values, the result's status and correction metadata, and the audit entry
// when the change set was non-empty.
func (r *PgxResultRepository) ApplyCorrection(ctx context.Context, record domain.Record, result domain.ReconciliationResult, entry *domain.AuditLogEntry) error {
	recordModel, err := mapping.ToModelRecord(record)
	if err != nil {
		return fmt.Errorf("failed to map record %s: %w", record.RecordID, err)
	}
	resultModel, err := mapping.ToModelResult(result)
	if err != nil {
		return fmt.Errorf("failed to map result %s: %w", result.ResultID, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	recordQuery := `
		UPDATE records
		SET transaction_id = $2, reference_number = $3, amount = $4, record_date = $5, updated_at = $6
		WHERE record_id = $1;
	`
	tag, err := tx.Exec(ctx, recordQuery,
		recordModel.RecordID,
		recordModel.TransactionID,
		recordModel.ReferenceNumber,
		recordModel.Amount,
		recordModel.RecordDate,
		recordModel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", recordModel.RecordID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	resultQuery := `
		UPDATE reconciliation_results
		SET status = $2, manually_corrected = $3, corrected_by = $4, corrected_at = $5,
			correction_notes = $6, updated_at = $7
		WHERE result_id = $1;
	`
	tag, err = tx.Exec(ctx, resultQuery,
		resultModel.ResultID,
		resultModel.Status,
		resultModel.ManuallyCorrected,
		resultModel.CorrectedBy,
		resultModel.CorrectedAt,
		resultModel.CorrectionNotes,
		resultModel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update result %s: %w", resultModel.ResultID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if entry != nil {
		entryModel, err := mapping.ToModelAuditEntry(*entry)
		if err != nil {
			return fmt.Errorf("failed to map audit entry %s: %w", entry.EntryID, err)
		}
		if _, err := tx.Exec(ctx, insertAuditEntryQuery,
			entryModel.EntryID,
			entryModel.RecordID,
			entryModel.UploadJobID,
			entryModel.Action,
			entryModel.Source,
			entryModel.ChangedBy,
			entryModel.Changes,
			entryModel.Metadata,
			entryModel.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert audit entry for result %s: %w", resultModel.ResultID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindResultByID retrieves a result by its ID.
func (r *PgxResultRepository) FindResultByID(ctx context.Context, resultID string) (*domain.ReconciliationResult, error) {
	query := `SELECT ` + resultColumns + ` FROM reconciliation_results WHERE result_id = $1;`

	result, err := scanResult(r.Pool.QueryRow(ctx, query, resultID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find result %s: %w", resultID, err)
	}
	return result, nil
}

// ListResults retrieves results matching the filter, newest first.
func (r *PgxResultRepository) ListResults(ctx context.Context, filter portsrepo.ListResultsFilter) ([]domain.ReconciliationResult, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + resultColumns + ` FROM reconciliation_results`)

	var conditions []string
	var args []interface{}
	if filter.UploadJobID != nil {
		args = append(args, *filter.UploadJobID)
		conditions = append(conditions, "upload_job_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if len(filter.UploadJobIDs) > 0 {
		args = append(args, filter.UploadJobIDs)
		conditions = append(conditions, "upload_job_id = ANY($"+strconv.Itoa(len(args))+")")
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, result_id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	results := make([]domain.ReconciliationResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}
	return results, nil
}

// CountResultsByStatus aggregates result counts per status, optionally
// restricted to a set of jobs.
func (r *PgxResultRepository) CountResultsByStatus(ctx context.Context, jobIDs []string) (map[domain.MatchStatus]int, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT status, COUNT(*) FROM reconciliation_results`)

	var args []interface{}
	if len(jobIDs) > 0 {
		args = append(args, jobIDs)
		sb.WriteString(" WHERE upload_job_id = ANY($1)")
	}
	sb.WriteString(" GROUP BY status;")

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count results by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.MatchStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[domain.MatchStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status count rows: %w", err)
	}
	return counts, nil
}
