package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

func testRecord(t *testing.T, txnID, ref, amount, date string) domain.Record {
	t.Helper()
	parsedDate, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return domain.Record{
		RecordID:        uuid.NewString(),
		TransactionID:   txnID,
		ReferenceNumber: ref,
		Amount:          decimal.RequireFromString(amount),
		Date:            parsedDate,
		Active:          true,
	}
}

func defaultTestConfig() domain.MatchingConfig {
	return domain.DefaultMatchingConfig(decimal.NewFromInt(2))
}

func TestSanitizeMatchingConfig_DropsUnknownFields(t *testing.T) {
	cfg := domain.MatchingConfig{
		Exact:     domain.ExactMatchConfig{Fields: []string{"transactionId", "bogus", "amount"}},
		Partial:   domain.PartialMatchConfig{ReferenceField: "nope", AmountField: "amount", VariancePercent: decimal.NewFromInt(5)},
		Duplicate: domain.DuplicateMatchConfig{KeyField: "alsoNope"},
	}

	sane := sanitizeMatchingConfig(cfg, decimal.NewFromInt(2))

	assert.Equal(t, []string{"transactionId", "amount"}, sane.Exact.Fields)
	assert.Equal(t, "referenceNumber", sane.Partial.ReferenceField)
	assert.Equal(t, "amount", sane.Partial.AmountField)
	assert.True(t, sane.Partial.VariancePercent.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "transactionId", sane.Duplicate.KeyField)
}

func TestSanitizeMatchingConfig_EmptyFallsBackToDefaults(t *testing.T) {
	sane := sanitizeMatchingConfig(domain.MatchingConfig{}, decimal.NewFromInt(2))

	assert.Equal(t, defaultTestConfig(), sane)
}

func TestSanitizeMatchingConfig_NonPositiveVarianceReplaced(t *testing.T) {
	cfg := domain.MatchingConfig{
		Partial: domain.PartialMatchConfig{VariancePercent: decimal.NewFromInt(-3)},
	}

	sane := sanitizeMatchingConfig(cfg, decimal.NewFromInt(2))

	assert.True(t, sane.Partial.VariancePercent.Equal(decimal.NewFromInt(2)))
}

func TestApplyConfigPayload(t *testing.T) {
	base := defaultTestConfig()

	assert.Equal(t, base, applyConfigPayload(base, nil))

	variance := decimal.NewFromFloat(7.5)
	payload := &dto.MatchingConfigPayload{}
	payload.Exact = &struct {
		Fields []string `json:"fields"`
	}{Fields: []string{"transactionId", "date"}}
	payload.Partial = &struct {
		ReferenceField  string           `json:"referenceField"`
		AmountField     string           `json:"amountField"`
		VariancePercent *decimal.Decimal `json:"variancePercent"`
	}{ReferenceField: "transactionId", VariancePercent: &variance}
	payload.Duplicate = &struct {
		KeyField string `json:"keyField"`
	}{KeyField: "referenceNumber"}

	merged := applyConfigPayload(base, payload)

	assert.Equal(t, []string{"transactionId", "date"}, merged.Exact.Fields)
	assert.Equal(t, "transactionId", merged.Partial.ReferenceField)
	assert.Equal(t, "amount", merged.Partial.AmountField) // absent, keeps base
	assert.True(t, merged.Partial.VariancePercent.Equal(variance))
	assert.Equal(t, "referenceNumber", merged.Duplicate.KeyField)
}

func TestEvaluateRecords_ExactMatch(t *testing.T) {
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}
	system := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords(uploaded, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusMatched, results[0].Status)
	assert.Equal(t, float64(100), results[0].Confidence)
	require.NotNil(t, results[0].MatchedSystemRecordID)
	assert.Equal(t, system[0].RecordID, *results[0].MatchedSystemRecordID)
	require.NotNil(t, results[0].AmountVariancePercent)
	assert.True(t, results[0].AmountVariancePercent.IsZero())
	assert.Empty(t, results[0].Differences)
	assert.Equal(t, uploaded[0].RecordID, results[0].UploadedRecordID)
	assert.Equal(t, "job-1", results[0].UploadJobID)
}

func TestEvaluateRecords_ExactMatchReportsRemainingDifferences(t *testing.T) {
	// Exact key is transactionId+amount; reference and date still differ.
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-A", "100.00", "2026-03-01")}
	system := []domain.Record{testRecord(t, "TXN-1", "REF-B", "100.00", "2026-03-02")}

	results := evaluateRecords(uploaded, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusMatched, results[0].Status)
	require.Len(t, results[0].Differences, 2)
	assert.Equal(t, "referenceNumber", results[0].Differences[0].Field)
	assert.Equal(t, "date", results[0].Differences[1].Field)
}

func TestEvaluateRecords_DuplicatePreemptsExact(t *testing.T) {
	first := testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")
	second := testRecord(t, "TXN-1", "REF-2", "200.00", "2026-03-02")
	system := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords([]domain.Record{first, second}, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, domain.StatusDuplicate, result.Status)
		assert.Equal(t, float64(0), result.Confidence)
		assert.Nil(t, result.MatchedSystemRecordID)
	}
}

func TestEvaluateRecords_PartialMatchWithinVariance(t *testing.T) {
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "101.00", "2026-03-01")}
	system := []domain.Record{testRecord(t, "TXN-9", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords(uploaded, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusPartiallyMatched, results[0].Status)
	assert.Equal(t, float64(75), results[0].Confidence)
	require.NotNil(t, results[0].AmountVariancePercent)
	assert.True(t, results[0].AmountVariancePercent.Equal(decimal.NewFromInt(1)))
}

func TestEvaluateRecords_PartialBoundaryIsInclusive(t *testing.T) {
	// Exactly 2% off with a 2% ceiling still matches partially.
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "102.00", "2026-03-01")}
	system := []domain.Record{testRecord(t, "TXN-9", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords(uploaded, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusPartiallyMatched, results[0].Status)
}

func TestEvaluateRecords_PartialPicksClosestCandidate(t *testing.T) {
	closer := testRecord(t, "TXN-8", "REF-1", "100.50", "2026-03-01")
	farther := testRecord(t, "TXN-9", "REF-1", "99.00", "2026-03-01")
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords(uploaded, []domain.Record{farther, closer}, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	require.NotNil(t, results[0].MatchedSystemRecordID)
	assert.Equal(t, closer.RecordID, *results[0].MatchedSystemRecordID)
}

func TestEvaluateRecords_PartialSkipsZeroAmountCandidates(t *testing.T) {
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}
	system := []domain.Record{testRecord(t, "TXN-9", "REF-1", "0.00", "2026-03-01")}

	results := evaluateRecords(uploaded, system, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusNotMatched, results[0].Status)
}

func TestEvaluateRecords_NotMatchedCarriesAbsenceDifference(t *testing.T) {
	uploaded := []domain.Record{testRecord(t, "TXN-1", "REF-1", "100.00", "2026-03-01")}

	results := evaluateRecords(uploaded, nil, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusNotMatched, results[0].Status)
	require.Len(t, results[0].Differences, 1)
	assert.Equal(t, "systemRecord", results[0].Differences[0].Field)
	require.NotNil(t, results[0].Differences[0].UploadedValue)
	assert.Equal(t, "TXN-1", *results[0].Differences[0].UploadedValue)
	assert.Nil(t, results[0].Differences[0].SystemValue)
}

func TestEvaluateRecords_OutputFollowsUploadOrder(t *testing.T) {
	a := testRecord(t, "TXN-A", "REF-A", "10.00", "2026-03-01")
	b := testRecord(t, "TXN-B", "REF-B", "20.00", "2026-03-01")
	c := testRecord(t, "TXN-C", "REF-C", "30.00", "2026-03-01")

	results := evaluateRecords([]domain.Record{a, b, c}, nil, defaultTestConfig(), "job-1", time.Now().UTC())

	require.Len(t, results, 3)
	assert.Equal(t, a.RecordID, results[0].UploadedRecordID)
	assert.Equal(t, b.RecordID, results[1].UploadedRecordID)
	assert.Equal(t, c.RecordID, results[2].UploadedRecordID)
}

func TestBuildStats(t *testing.T) {
	results := []domain.ReconciliationResult{
		{Status: domain.StatusMatched},
		{Status: domain.StatusPartiallyMatched},
		{Status: domain.StatusNotMatched},
		{Status: domain.StatusNotMatched},
		{Status: domain.StatusDuplicate},
		{Status: domain.StatusDuplicate},
	}

	stats := buildStats(results)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 1, stats.PartiallyMatched)
	assert.Equal(t, 2, stats.NotMatched)
	assert.Equal(t, 2, stats.Duplicates)
	assert.Equal(t, 33.33, stats.Accuracy)
}

func TestBuildStats_Empty(t *testing.T) {
	stats := buildStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, float64(0), stats.Accuracy)
}
