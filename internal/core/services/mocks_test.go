package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portsrepo "github.com/Joshua-Peter7/reconsys/internal/core/ports/repositories"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/utils/normalization"
)

// --- Mock UploadJobRepository ---

type MockUploadJobRepository struct {
	mock.Mock
}

func (m *MockUploadJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.UploadJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadJob), args.Error(1)
}

func (m *MockUploadJobRepository) FindLatestReusableJob(ctx context.Context, fileHash string, uploadType domain.UploadType) (*domain.UploadJob, error) {
	args := m.Called(ctx, fileHash, uploadType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadJob), args.Error(1)
}

func (m *MockUploadJobRepository) ListJobs(ctx context.Context, filter portsrepo.ListJobsFilter) ([]domain.UploadJob, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UploadJob), args.Error(1)
}

func (m *MockUploadJobRepository) SaveJob(ctx context.Context, job domain.UploadJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockUploadJobRepository) UpdateRowCount(ctx context.Context, jobID string, rowCount int) error {
	args := m.Called(ctx, jobID, rowCount)
	return args.Error(0)
}

func (m *MockUploadJobRepository) UpdateMatchingConfig(ctx context.Context, jobID string, config domain.MatchingConfig) error {
	args := m.Called(ctx, jobID, config)
	return args.Error(0)
}

func (m *MockUploadJobRepository) MarkCompleted(ctx context.Context, jobID string, processedRows, failedRows int, completedAt time.Time) error {
	args := m.Called(ctx, jobID, processedRows, failedRows, completedAt)
	return args.Error(0)
}

func (m *MockUploadJobRepository) MarkFailed(ctx context.Context, jobID string, errorMessage string, failedAt time.Time) error {
	args := m.Called(ctx, jobID, errorMessage, failedAt)
	return args.Error(0)
}

// --- Mock RecordRepository ---

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRecordRepository) ListUploadedRecordsByJob(ctx context.Context, uploadJobID string) ([]domain.Record, error) {
	args := m.Called(ctx, uploadJobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) ListActiveSystemRecords(ctx context.Context) ([]domain.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Record), args.Error(1)
}

func (m *MockRecordRepository) InsertRecords(ctx context.Context, records []domain.Record) (int, int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockRecordRepository) DeactivateSystemRecords(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ReconciliationResultRepository ---

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) FindResultByID(ctx context.Context, resultID string) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}

func (m *MockResultRepository) ListResults(ctx context.Context, filter portsrepo.ListResultsFilter) ([]domain.ReconciliationResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationResult), args.Error(1)
}

func (m *MockResultRepository) CountResultsByStatus(ctx context.Context, jobIDs []string) (map[domain.MatchStatus]int, error) {
	args := m.Called(ctx, jobIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.MatchStatus]int), args.Error(1)
}

func (m *MockResultRepository) ReplaceResultsForJob(ctx context.Context, uploadJobID string, results []domain.ReconciliationResult) error {
	args := m.Called(ctx, uploadJobID, results)
	return args.Error(0)
}

func (m *MockResultRepository) ApplyCorrection(ctx context.Context, record domain.Record, result domain.ReconciliationResult, entry *domain.AuditLogEntry) error {
	args := m.Called(ctx, record, result, entry)
	return args.Error(0)
}

// --- Mock AuditLogRepository ---

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) ListEntriesByRecord(ctx context.Context, recordID string) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditLogRepository) ListEntriesByJob(ctx context.Context, uploadJobID string, limit int) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, uploadJobID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditLogRepository) ListEntriesByActor(ctx context.Context, filter dto.ListActorActionsRequest) ([]domain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditLogRepository) AppendEntries(ctx context.Context, entries []domain.AuditLogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockAuditLogRepository) UpdateEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) DeleteEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

// --- Stub RowSource ---

type stubRowSource struct {
	rows    []normalization.RawRow
	headers []string
	err     error
}

func (s *stubRowSource) Rows(fileName string, data []byte) ([]normalization.RawRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubRowSource) Preview(fileName string, data []byte, limit int) ([]string, []normalization.RawRow, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if limit > len(s.rows) {
		limit = len(s.rows)
	}
	return s.headers, s.rows[:limit], nil
}
