package repositories

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

// AuditLogReader defines read operations over the audit ledger.
type AuditLogReader interface {
	// ListEntriesByRecord returns a record's timeline, oldest first.
	ListEntriesByRecord(ctx context.Context, recordID string) ([]domain.AuditLogEntry, error)

	// ListEntriesByJob returns a job's timeline, oldest first, capped at limit.
	ListEntriesByJob(ctx context.Context, uploadJobID string, limit int) ([]domain.AuditLogEntry, error)

	// ListEntriesByActor returns entries filtered by acting user and window,
	// newest first.
	ListEntriesByActor(ctx context.Context, filter dto.ListActorActionsRequest) ([]domain.AuditLogEntry, error)
}

// AuditLogWriter is the only way data enters the ledger.
type AuditLogWriter interface {
	// AppendEntries inserts entries in bounded-size chunks.
	AppendEntries(ctx context.Context, entries []domain.AuditLogEntry) error
}

// AuditLogRepositoryFacade is an append-only store: besides reads and appends
// it exposes UpdateEntry and DeleteEntry only so that every mutation path is
// structurally rejected with ErrImmutableAuditLog (no SQL ever runs for them).
// The schema enforces the same guarantee with triggers for out-of-band access.
type AuditLogRepositoryFacade interface {
	AuditLogReader
	AuditLogWriter

	// UpdateEntry always returns apperrors.ErrImmutableAuditLog.
	UpdateEntry(ctx context.Context, entry domain.AuditLogEntry) error

	// DeleteEntry always returns apperrors.ErrImmutableAuditLog.
	DeleteEntry(ctx context.Context, entryID string) error
}
