package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/models"
)

// ToModelAuditEntry converts a domain audit entry into its persistence shape.
func ToModelAuditEntry(entry domain.AuditLogEntry) (models.AuditLogEntry, error) {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return models.AuditLogEntry{}, fmt.Errorf("marshal audit changes: %w", err)
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return models.AuditLogEntry{}, fmt.Errorf("marshal audit metadata: %w", err)
	}

	return models.AuditLogEntry{
		EntryID:     entry.EntryID,
		RecordID:    entry.RecordID,
		UploadJobID: entry.UploadJobID,
		Action:      entry.Action,
		Source:      string(entry.Source),
		ChangedBy:   entry.ChangedBy,
		Changes:     changes,
		Metadata:    metadata,
		CreatedAt:   entry.CreatedAt,
	}, nil
}

// ToDomainAuditEntry converts a scanned audit row back into the domain shape.
func ToDomainAuditEntry(model models.AuditLogEntry) (domain.AuditLogEntry, error) {
	var changes []domain.AuditChange
	if len(model.Changes) > 0 {
		if err := json.Unmarshal(model.Changes, &changes); err != nil {
			return domain.AuditLogEntry{}, fmt.Errorf("unmarshal changes for audit entry %s: %w", model.EntryID, err)
		}
	}
	var metadata map[string]any
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return domain.AuditLogEntry{}, fmt.Errorf("unmarshal metadata for audit entry %s: %w", model.EntryID, err)
		}
	}

	return domain.AuditLogEntry{
		EntryID:     model.EntryID,
		RecordID:    model.RecordID,
		UploadJobID: model.UploadJobID,
		Action:      model.Action,
		Source:      domain.AuditSource(model.Source),
		ChangedBy:   model.ChangedBy,
		Changes:     changes,
		Metadata:    metadata,
		CreatedAt:   model.CreatedAt,
	}, nil
}
