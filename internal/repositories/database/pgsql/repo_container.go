package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UploadJobRepo: newPgxUploadJobRepository(dbPool),
		RecordRepo:    newPgxRecordRepository(dbPool),
		ResultRepo:    newPgxResultRepository(dbPool),
		AuditLogRepo:  newPgxAuditLogRepository(dbPool),
	}
}
