package services

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

const (
	confidenceExact   = 100
	confidencePartial = 75
)

const compositeKeySeparator = "|"

// sanitizeMatchingConfig normalizes a stored configuration against the engine
// defaults: unknown exact fields are dropped, empty parts fall back to the
// defaults, and a non-positive variance ceiling is replaced by the default.
func sanitizeMatchingConfig(cfg domain.MatchingConfig, defaultVariance decimal.Decimal) domain.MatchingConfig {
	sane := domain.DefaultMatchingConfig(defaultVariance)

	var exactFields []string
	for _, field := range cfg.Exact.Fields {
		if domain.IsAllowedMatchField(field) {
			exactFields = append(exactFields, field)
		}
	}
	if len(exactFields) > 0 {
		sane.Exact.Fields = exactFields
	}

	if domain.IsAllowedMatchField(cfg.Partial.ReferenceField) {
		sane.Partial.ReferenceField = cfg.Partial.ReferenceField
	}
	if domain.IsAllowedMatchField(cfg.Partial.AmountField) {
		sane.Partial.AmountField = cfg.Partial.AmountField
	}
	if cfg.Partial.VariancePercent.IsPositive() {
		sane.Partial.VariancePercent = cfg.Partial.VariancePercent
	}

	if domain.IsAllowedMatchField(cfg.Duplicate.KeyField) {
		sane.Duplicate.KeyField = cfg.Duplicate.KeyField
	}

	return sane
}

// applyConfigPayload overlays a caller-supplied override onto a base
// configuration. Absent parts keep the base values.
func applyConfigPayload(base domain.MatchingConfig, payload *dto.MatchingConfigPayload) domain.MatchingConfig {
	if payload == nil {
		return base
	}
	merged := base
	if payload.Exact != nil {
		merged.Exact.Fields = payload.Exact.Fields
	}
	if payload.Partial != nil {
		if payload.Partial.ReferenceField != "" {
			merged.Partial.ReferenceField = payload.Partial.ReferenceField
		}
		if payload.Partial.AmountField != "" {
			merged.Partial.AmountField = payload.Partial.AmountField
		}
		if payload.Partial.VariancePercent != nil {
			merged.Partial.VariancePercent = *payload.Partial.VariancePercent
		}
	}
	if payload.Duplicate != nil && payload.Duplicate.KeyField != "" {
		merged.Duplicate.KeyField = payload.Duplicate.KeyField
	}
	return merged
}

// compositeKey joins a record's canonical field values for exact matching.
func compositeKey(record *domain.Record, fields []string) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = record.KeyValue(field)
	}
	return strings.Join(parts, compositeKeySeparator)
}

// evaluateRecords classifies every uploaded record against the system baseline
// in tier order: duplicate, exact, partial, not matched. The first tier that
// fires wins. The output order follows the uploaded record order; ties among
// equally close partial candidates resolve to the earliest candidate.
func evaluateRecords(uploaded, system []domain.Record, cfg domain.MatchingConfig, uploadJobID string, now time.Time) []domain.ReconciliationResult {
	duplicateCounts := make(map[string]int, len(uploaded))
	for i := range uploaded {
		key := uploaded[i].KeyValue(cfg.Duplicate.KeyField)
		if key != "" {
			duplicateCounts[key]++
		}
	}

	exactIndex := make(map[string]*domain.Record, len(system))
	partialIndex := make(map[string][]*domain.Record)
	for i := range system {
		candidate := &system[i]
		exactIndex[compositeKey(candidate, cfg.Exact.Fields)] = candidate
		refKey := candidate.KeyValue(cfg.Partial.ReferenceField)
		if refKey != "" {
			partialIndex[refKey] = append(partialIndex[refKey], candidate)
		}
	}

	results := make([]domain.ReconciliationResult, 0, len(uploaded))
	for i := range uploaded {
		record := &uploaded[i]
		result := domain.ReconciliationResult{
			ResultID:         uuid.NewString(),
			UploadJobID:      uploadJobID,
			UploadedRecordID: record.RecordID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		dupKey := record.KeyValue(cfg.Duplicate.KeyField)
		if dupKey != "" && duplicateCounts[dupKey] > 1 {
			result.Status = domain.StatusDuplicate
			result.Confidence = 0
			result.Differences = buildDifferences(record, nil)
			results = append(results, result)
			continue
		}

		if match, ok := exactIndex[compositeKey(record, cfg.Exact.Fields)]; ok {
			zero := decimal.Zero
			result.Status = domain.StatusMatched
			result.Confidence = confidenceExact
			result.MatchedSystemRecordID = &match.RecordID
			result.AmountVariancePercent = &zero
			result.Differences = buildDifferences(record, match)
			results = append(results, result)
			continue
		}

		if match, variance := closestPartialMatch(record, partialIndex, cfg.Partial); match != nil {
			rounded := variance.Round(4)
			result.Status = domain.StatusPartiallyMatched
			result.Confidence = confidencePartial
			result.MatchedSystemRecordID = &match.RecordID
			result.AmountVariancePercent = &rounded
			result.Differences = buildDifferences(record, match)
			results = append(results, result)
			continue
		}

		result.Status = domain.StatusNotMatched
		result.Confidence = 0
		result.Differences = buildDifferences(record, nil)
		results = append(results, result)
	}
	return results
}

// closestPartialMatch scans candidates sharing the record's reference field
// value and returns the one with the smallest amount variance within the
// ceiling, boundary inclusive. Candidates with a zero amount are skipped.
func closestPartialMatch(record *domain.Record, partialIndex map[string][]*domain.Record, cfg domain.PartialMatchConfig) (*domain.Record, decimal.Decimal) {
	refKey := record.KeyValue(cfg.ReferenceField)
	if refKey == "" || cfg.AmountField != domain.FieldAmount {
		return nil, decimal.Zero
	}

	var best *domain.Record
	var bestVariance decimal.Decimal
	for _, candidate := range partialIndex[refKey] {
		if candidate.Amount.IsZero() {
			continue
		}
		variance := record.Amount.Sub(candidate.Amount).Div(candidate.Amount).Mul(decimal.NewFromInt(100)).Abs()
		if variance.Cmp(cfg.VariancePercent) > 0 {
			continue
		}
		if best == nil || variance.Cmp(bestVariance) < 0 {
			best = candidate
			bestVariance = variance
		}
	}
	return best, bestVariance
}

// buildDifferences compares an uploaded record with its matched system record
// field by field, in canonical string forms. With no match it returns a single
// entry flagging the absent system record.
func buildDifferences(uploaded, matched *domain.Record) []domain.FieldDifference {
	if matched == nil {
		txn := uploaded.TransactionID
		return []domain.FieldDifference{{
			Field:         "systemRecord",
			UploadedValue: &txn,
			SystemValue:   nil,
		}}
	}

	var differences []domain.FieldDifference
	appendDiff := func(field, uploadedValue, systemValue string) {
		uv, sv := uploadedValue, systemValue
		differences = append(differences, domain.FieldDifference{
			Field:         field,
			UploadedValue: &uv,
			SystemValue:   &sv,
		})
	}

	if uploaded.TransactionID != matched.TransactionID {
		appendDiff(domain.FieldTransactionID, uploaded.TransactionID, matched.TransactionID)
	}
	if uploaded.ReferenceNumber != matched.ReferenceNumber {
		appendDiff(domain.FieldReferenceNumber, uploaded.ReferenceNumber, matched.ReferenceNumber)
	}
	if !uploaded.Amount.Equal(matched.Amount) {
		appendDiff(domain.FieldAmount, uploaded.KeyValue(domain.FieldAmount), matched.KeyValue(domain.FieldAmount))
	}
	if !domain.SameCalendarDay(uploaded.Date, matched.Date) {
		appendDiff(domain.FieldDate, uploaded.KeyValue(domain.FieldDate), matched.KeyValue(domain.FieldDate))
	}
	return differences
}

// buildStats aggregates one run's results. Accuracy counts full and partial
// matches over the total, as a percentage rounded to two decimal places.
func buildStats(results []domain.ReconciliationResult) domain.ReconciliationStats {
	stats := domain.ReconciliationStats{Total: len(results)}
	for i := range results {
		switch results[i].Status {
		case domain.StatusMatched:
			stats.Matched++
		case domain.StatusPartiallyMatched:
			stats.PartiallyMatched++
		case domain.StatusNotMatched:
			stats.NotMatched++
		case domain.StatusDuplicate:
			stats.Duplicates++
		}
	}
	if stats.Total > 0 {
		stats.Accuracy = roundTwo(float64(stats.Matched+stats.PartiallyMatched) / float64(stats.Total) * 100)
	}
	return stats
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
