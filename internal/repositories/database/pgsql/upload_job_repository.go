package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	"github.com/Joshua-Peter7/reconsys/internal/models"
	"github.com/Joshua-Peter7/reconsys/internal/utils/mapping"
)

type PgxUploadJobRepository struct {
	BaseRepository
}

// newPgxUploadJobRepository creates a new repository for upload job data.
func newPgxUploadJobRepository(pool *pgxpool.Pool) portsrepo.UploadJobRepositoryFacade {
	return &PgxUploadJobRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.UploadJobRepositoryFacade = (*PgxUploadJobRepository)(nil)

const uploadJobColumns = `job_id, file_name, file_hash, uploaded_by, upload_type, status,
	row_count, processed_rows, failed_rows, column_mapping, matching_config,
	error_message, started_at, completed_at, created_at, updated_at`

func scanUploadJob(row pgx.Row) (*domain.UploadJob, error) {
	var model models.UploadJob
	err := row.Scan(
		&model.JobID,
		&model.FileName,
		&model.FileHash,
		&model.UploadedBy,
		&model.UploadType,
		&model.Status,
		&model.RowCount,
		&model.ProcessedRows,
		&model.FailedRows,
		&model.ColumnMapping,
		&model.MatchingConfig,
		&model.ErrorMessage,
		&model.StartedAt,
		&model.CompletedAt,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job, err := mapping.ToDomainUploadJob(model)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// SaveJob inserts a new job in its initial processing state.
func (r *PgxUploadJobRepository) SaveJob(ctx context.Context, job domain.UploadJob) error {
	model, err := mapping.ToModelUploadJob(job)
	if err != nil {
		return fmt.Errorf("failed to map job %s: %w", job.JobID, err)
	}

	query := `
		INSERT INTO upload_jobs (` + uploadJobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = r.Pool.Exec(ctx, query,
		model.JobID,
		model.FileName,
		model.FileHash,
		model.UploadedBy,
		model.UploadType,
		model.Status,
		model.RowCount,
		model.ProcessedRows,
		model.FailedRows,
		model.ColumnMapping,
		model.MatchingConfig,
		model.ErrorMessage,
		model.StartedAt,
		model.CompletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save upload job %s: %w", model.JobID, err)
	}
	return nil
}

// FindJobByID retrieves a job by its ID.
func (r *PgxUploadJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.UploadJob, error) {
	query := `SELECT ` + uploadJobColumns + ` FROM upload_jobs WHERE job_id = $1;`

	job, err := scanUploadJob(r.Pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find upload job %s: %w", jobID, err)
	}
	return job, nil
}

// FindLatestReusableJob returns the most recent non-failed job for a file
// hash and upload type pair.
func (r *PgxUploadJobRepository) FindLatestReusableJob(ctx context.Context, fileHash string, uploadType domain.UploadType) (*domain.UploadJob, error) {
	query := `
		SELECT ` + uploadJobColumns + `
		FROM upload_jobs
		WHERE file_hash = $1 AND upload_type = $2 AND status <> $3
		ORDER BY created_at DESC
		LIMIT 1;
	`
	job, err := scanUploadJob(r.Pool.QueryRow(ctx, query, fileHash, string(uploadType), string(domain.JobStatusFailed)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reusable job for hash %s: %w", fileHash, err)
	}
	return job, nil
}

// ListJobs retrieves jobs matching the filter, newest first.
func (r *PgxUploadJobRepository) ListJobs(ctx context.Context, filter portsrepo.ListJobsFilter) ([]domain.UploadJob, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + uploadJobColumns + ` FROM upload_jobs`)

	var conditions []string
	var args []interface{}
	if filter.UploadedBy != nil {
		args = append(args, *filter.UploadedBy)
		conditions = append(conditions, "uploaded_by = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.UploadType != nil {
		args = append(args, string(*filter.UploadType))
		conditions = append(conditions, "upload_type = $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.UploadJob, 0)
	for rows.Next() {
		job, err := scanUploadJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload job row: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload job rows: %w", err)
	}
	return jobs, nil
}

// UpdateRowCount records the drained source size on the job.
func (r *PgxUploadJobRepository) UpdateRowCount(ctx context.Context, jobID string, rowCount int) error {
	query := `UPDATE upload_jobs SET row_count = $2, updated_at = now() WHERE job_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, jobID, rowCount)
	if err != nil {
		return fmt.Errorf("failed to update row count for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateMatchingConfig persists a configuration override onto the job.
func (r *PgxUploadJobRepository) UpdateMatchingConfig(ctx context.Context, jobID string, config domain.MatchingConfig) error {
	payload, err := mapping.MarshalMatchingConfig(config)
	if err != nil {
		return fmt.Errorf("failed to marshal matching config for job %s: %w", jobID, err)
	}

	query := `UPDATE upload_jobs SET matching_config = $2, updated_at = now() WHERE job_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, jobID, payload)
	if err != nil {
		return fmt.Errorf("failed to update matching config for job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkCompleted transitions processing -> completed with the final counters.
// The status guard makes terminal jobs immune, so completed_at is written at
// most once.
func (r *PgxUploadJobRepository) MarkCompleted(ctx context.Context, jobID string, processedRows, failedRows int, completedAt time.Time) error {
	query := `
		UPDATE upload_jobs
		SET status = $2, processed_rows = $3, failed_rows = $4, completed_at = $5, updated_at = $5
		WHERE job_id = $1 AND status = $6;
	`
	_, err := r.Pool.Exec(ctx, query,
		jobID,
		string(domain.JobStatusCompleted),
		processedRows,
		failedRows,
		completedAt,
		string(domain.JobStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", jobID, err)
	}
	return nil
}

// MarkFailed transitions processing -> failed with the failure message, under
// the same status guard as MarkCompleted.
func (r *PgxUploadJobRepository) MarkFailed(ctx context.Context, jobID string, errorMessage string, failedAt time.Time) error {
	query := `
		UPDATE upload_jobs
		SET status = $2, error_message = $3, completed_at = $4, updated_at = $4
		WHERE job_id = $1 AND status = $5;
	`
	_, err := r.Pool.Exec(ctx, query,
		jobID,
		string(domain.JobStatusFailed),
		errorMessage,
		failedAt,
		string(domain.JobStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", jobID, err)
	}
	return nil
}
