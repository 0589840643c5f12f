package domain

import "time"

// AuditSource identifies what kind of actor produced an audit entry.
type AuditSource string

const (
	AuditSourceSystem AuditSource = "system"
	AuditSourceManual AuditSource = "manual"
	AuditSourceImport AuditSource = "import"
)

// Audit actions written by this service.
const (
	ActionReconciliationEvaluated = "reconciliation_evaluated"
	ActionManualCorrection        = "manual_correction"
)

// AuditChange is one field-level change inside an audit entry. Values are kept
// as their canonical string forms; nil means absent.
type AuditChange struct {
	Field    string  `json:"field"`
	OldValue *string `json:"oldValue"`
	NewValue *string `json:"newValue"`
}

// AuditLogEntry is one append-only ledger row. Entries are created once and can
// never be updated or deleted; the storage layer rejects both.
type AuditLogEntry struct {
	EntryID     string         `json:"entryID"`
	RecordID    string         `json:"recordID"`
	UploadJobID string         `json:"uploadJobID"`
	Action      string         `json:"action"`
	Source      AuditSource    `json:"source"`
	ChangedBy   string         `json:"changedBy"`
	Changes     []AuditChange  `json:"changes"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
}
