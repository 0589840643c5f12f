package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/models"
)

// ToModelRecord converts a domain record into its persistence shape.
func ToModelRecord(record domain.Record) (models.Record, error) {
	rawData, err := json.Marshal(record.RawData)
	if err != nil {
		return models.Record{}, fmt.Errorf("marshal raw data: %w", err)
	}

	return models.Record{
		RecordID:        record.RecordID,
		UploadJobID:     record.UploadJobID,
		SourceType:      string(record.SourceType),
		TransactionID:   record.TransactionID,
		ReferenceNumber: record.ReferenceNumber,
		Amount:          record.Amount,
		RecordDate:      record.Date,
		RowNumber:       record.RowNumber,
		RawData:         rawData,
		NormalizedHash:  record.NormalizedHash,
		Active:          record.Active,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}, nil
}

// ToDomainRecord converts a scanned record row back into the domain shape.
func ToDomainRecord(model models.Record) (domain.Record, error) {
	var rawData map[string]string
	if len(model.RawData) > 0 {
		if err := json.Unmarshal(model.RawData, &rawData); err != nil {
			return domain.Record{}, fmt.Errorf("unmarshal raw data for record %s: %w", model.RecordID, err)
		}
	}

	return domain.Record{
		RecordID:        model.RecordID,
		UploadJobID:     model.UploadJobID,
		SourceType:      domain.SourceType(model.SourceType),
		TransactionID:   model.TransactionID,
		ReferenceNumber: model.ReferenceNumber,
		Amount:          model.Amount,
		Date:            model.RecordDate,
		RowNumber:       model.RowNumber,
		RawData:         rawData,
		NormalizedHash:  model.NormalizedHash,
		Active:          model.Active,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}
