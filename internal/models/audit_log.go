package models

import "time"

// AuditLogEntry is the persistence shape of one append-only ledger row.
// There is deliberately no updated_at: entries are written once.
type AuditLogEntry struct {
	EntryID     string
	RecordID    string
	UploadJobID string
	Action      string
	Source      string
	ChangedBy   string
	Changes     []byte // JSONB ordered array of {field, oldValue, newValue}
	Metadata    []byte // JSONB
	CreatedAt   time.Time
}
