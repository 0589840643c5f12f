package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/models"
	"github.com/Joshua-Peter7/reconsys/internal/utils/mapping"
)

// appendBatchSize bounds one round trip of ledger appends.
const appendBatchSize = 1000

type PgxAuditLogRepository struct {
	BaseRepository
}

// newPgxAuditLogRepository creates a new repository for the audit ledger.
func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

const auditEntryColumns = `entry_id, record_id, upload_job_id, action, source, changed_by,
	changes, metadata, created_at`

const insertAuditEntryQuery = `
	INSERT INTO audit_logs (` + auditEntryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func scanAuditEntry(row pgx.Row) (*domain.AuditLogEntry, error) {
	var model models.AuditLogEntry
	err := row.Scan(
		&model.EntryID,
		&model.RecordID,
		&model.UploadJobID,
		&model.Action,
		&model.Source,
		&model.ChangedBy,
		&model.Changes,
		&model.Metadata,
		&model.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry, err := mapping.ToDomainAuditEntry(model)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// AppendEntries inserts entries in chunks of appendBatchSize. Appending is
// the only mutation the ledger accepts.
func (r *PgxAuditLogRepository) AppendEntries(ctx context.Context, entries []domain.AuditLogEntry) error {
	for start := 0; start < len(entries); start += appendBatchSize {
		end := start + appendBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		batch := &pgx.Batch{}
		for _, entry := range entries[start:end] {
			model, err := mapping.ToModelAuditEntry(entry)
			if err != nil {
				return fmt.Errorf("failed to map audit entry %s: %w", entry.EntryID, err)
			}
			batch.Queue(insertAuditEntryQuery,
				model.EntryID,
				model.RecordID,
				model.UploadJobID,
				model.Action,
				model.Source,
				model.ChangedBy,
				model.Changes,
				model.Metadata,
				model.CreatedAt,
			)
		}

		br := r.Pool.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to append audit entries: %w", err)
		}
	}
	return nil
}

// ListEntriesByRecord returns a record's timeline, oldest first.
func (r *PgxAuditLogRepository) ListEntriesByRecord(ctx context.Context, recordID string) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT ` + auditEntryColumns + `
		FROM audit_logs
		WHERE record_id = $1
		ORDER BY created_at, entry_id;
	`
	return r.queryEntries(ctx, query, recordID)
}

// ListEntriesByJob returns a job's timeline, oldest first, capped at limit.
func (r *PgxAuditLogRepository) ListEntriesByJob(ctx context.Context, uploadJobID string, limit int) ([]domain.AuditLogEntry, error) {
	query := `
		SELECT ` + auditEntryColumns + `
		FROM audit_logs
		WHERE upload_job_id = $1
		ORDER BY created_at, entry_id
		LIMIT $2;
	`
	return r.queryEntries(ctx, query, uploadJobID, limit)
}

// ListEntriesByActor returns entries filtered by acting user and time window,
// newest first.
func (r *PgxAuditLogRepository) ListEntriesByActor(ctx context.Context, filter dto.ListActorActionsRequest) ([]domain.AuditLogEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + auditEntryColumns + ` FROM audit_logs`)

	var conditions []string
	var args []interface{}
	if filter.ChangedBy != nil {
		args = append(args, *filter.ChangedBy)
		conditions = append(conditions, "changed_by = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, entry_id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	return r.queryEntries(ctx, sb.String(), args...)
}

func (r *PgxAuditLogRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]domain.AuditLogEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entry rows: %w", err)
	}
	return entries, nil
}

// UpdateEntry always fails: the ledger is append-only. No SQL runs; the
// schema's triggers back the same guarantee for out-of-band access.
func (r *PgxAuditLogRepository) UpdateEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	return apperrors.ErrImmutableAuditLog
}

// DeleteEntry always fails: the ledger is append-only.
func (r *PgxAuditLogRepository) DeleteEntry(ctx context.Context, entryID string) error {
	return apperrors.ErrImmutableAuditLog
}
