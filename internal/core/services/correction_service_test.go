package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
)

type CorrectionServiceTestSuite struct {
	suite.Suite
	mockJobRepo    *MockUploadJobRepository
	mockRecordRepo *MockRecordRepository
	mockResultRepo *MockResultRepository
	service        portssvc.CorrectionSvcFacade
}

func (suite *CorrectionServiceTestSuite) SetupTest() {
	suite.mockJobRepo = new(MockUploadJobRepository)
	suite.mockRecordRepo = new(MockRecordRepository)
	suite.mockResultRepo = new(MockResultRepository)
	suite.service = NewCorrectionService(suite.mockJobRepo, suite.mockRecordRepo, suite.mockResultRepo)
}

func (suite *CorrectionServiceTestSuite) fixture() (*domain.ReconciliationResult, *domain.UploadJob, domain.Record) {
	record := testRecord(suite.T(), "TXN-1", "REF-1", "100.00", "2026-03-01")
	job := &domain.UploadJob{JobID: "job-1", UploadedBy: "u1", UploadType: domain.UploadTypeTransaction}
	record.UploadJobID = job.JobID
	result := &domain.ReconciliationResult{
		ResultID:         "result-1",
		UploadJobID:      job.JobID,
		UploadedRecordID: record.RecordID,
		Status:           domain.StatusNotMatched,
	}
	return result, job, record
}

func (suite *CorrectionServiceTestSuite) expectLookups(ctx context.Context, result *domain.ReconciliationResult, job *domain.UploadJob, record domain.Record) {
	suite.mockResultRepo.On("FindResultByID", ctx, result.ResultID).Return(result, nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(&record, nil).Once()
}

func strptr(s string) *string { return &s }

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_ResultNotFound() {
	ctx := context.Background()
	suite.mockResultRepo.On("FindResultByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, "missing", dto.CorrectionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_Forbidden() {
	ctx := context.Background()
	result, job, _ := suite.fixture()
	suite.mockResultRepo.On("FindResultByID", ctx, result.ResultID).Return(result, nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "intruder"}, result.ResultID, dto.CorrectionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockResultRepo.AssertNotCalled(suite.T(), "ApplyCorrection")
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_RejectsUnknownStatus() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	suite.expectLookups(ctx, result, job, record)

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{
		Status: strptr("sort_of_matched"),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockResultRepo.AssertNotCalled(suite.T(), "ApplyCorrection")
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_RejectsMalformedAmount() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	suite.expectLookups(ctx, result, job, record)

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{
		Updates: dto.CorrectionUpdates{Amount: strptr("one hundred")},
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockResultRepo.AssertNotCalled(suite.T(), "ApplyCorrection")
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_CommitsChangeSetAndAuditEntry() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	suite.expectLookups(ctx, result, job, record)

	suite.mockResultRepo.On("ApplyCorrection", ctx,
		mock.MatchedBy(func(updated domain.Record) bool {
			return updated.TransactionID == "TXN-FIXED" && updated.Amount.StringFixed(2) == "105.50"
		}),
		mock.MatchedBy(func(updated domain.ReconciliationResult) bool {
			return updated.Status == domain.StatusMatched &&
				updated.ManuallyCorrected &&
				updated.CorrectedBy != nil && *updated.CorrectedBy == "u1" &&
				updated.CorrectedAt != nil &&
				updated.CorrectionNotes != nil && *updated.CorrectionNotes == "checked against bank statement"
		}),
		mock.MatchedBy(func(entry *domain.AuditLogEntry) bool {
			if entry == nil || entry.Action != domain.ActionManualCorrection || entry.Source != domain.AuditSourceManual {
				return false
			}
			// transactionId, amount and status moved; referenceNumber did not
			if len(entry.Changes) != 3 {
				return false
			}
			return entry.Changes[0].Field == domain.FieldTransactionID &&
				entry.Changes[1].Field == domain.FieldAmount &&
				entry.Changes[2].Field == "status" &&
				*entry.Changes[2].OldValue == string(domain.StatusNotMatched) &&
				*entry.Changes[2].NewValue == string(domain.StatusMatched)
		}),
	).Return(nil).Once()

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{
		Updates: dto.CorrectionUpdates{
			TransactionID: strptr("TXN-FIXED"),
			Amount:        strptr("105.50"),
		},
		Status: strptr(string(domain.StatusMatched)),
		Notes:  "checked against bank statement",
	})

	suite.Require().NoError(err)
	suite.mockResultRepo.AssertExpectations(suite.T())
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_NoOpStampsMetadataWithoutAuditEntry() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	suite.expectLookups(ctx, result, job, record)

	suite.mockResultRepo.On("ApplyCorrection", ctx,
		mock.AnythingOfType("domain.Record"),
		mock.MatchedBy(func(updated domain.ReconciliationResult) bool {
			return updated.ManuallyCorrected && updated.CorrectedBy != nil && *updated.CorrectedBy == "u1"
		}),
		(*domain.AuditLogEntry)(nil),
	).Return(nil).Once()

	// Same values as the record already holds: empty change set.
	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{
		Updates: dto.CorrectionUpdates{
			TransactionID: strptr("TXN-1"),
			Amount:        strptr("100.00"),
		},
		Status: strptr(string(domain.StatusNotMatched)),
	})

	suite.Require().NoError(err)
	suite.mockResultRepo.AssertExpectations(suite.T())
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_OmittedNotesClearPriorNotes() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	result.CorrectionNotes = strptr("stale notes from an earlier pass")
	suite.expectLookups(ctx, result, job, record)

	suite.mockResultRepo.On("ApplyCorrection", ctx,
		mock.AnythingOfType("domain.Record"),
		mock.MatchedBy(func(updated domain.ReconciliationResult) bool {
			return updated.ManuallyCorrected && updated.CorrectionNotes == nil
		}),
		(*domain.AuditLogEntry)(nil),
	).Return(nil).Once()

	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{})

	suite.Require().NoError(err)
	suite.mockResultRepo.AssertExpectations(suite.T())
}

func (suite *CorrectionServiceTestSuite) TestApplyCorrection_EquivalentAmountFormIsNoChange() {
	ctx := context.Background()
	result, job, record := suite.fixture()
	suite.expectLookups(ctx, result, job, record)

	suite.mockResultRepo.On("ApplyCorrection", ctx,
		mock.AnythingOfType("domain.Record"),
		mock.AnythingOfType("domain.ReconciliationResult"),
		(*domain.AuditLogEntry)(nil),
	).Return(nil).Once()

	// "100" coerces to the same two-decimal amount as the stored 100.00.
	err := suite.service.ApplyCorrection(ctx, domain.Identity{UserID: "u1"}, result.ResultID, dto.CorrectionRequest{
		Updates: dto.CorrectionUpdates{Amount: strptr("100")},
	})

	suite.Require().NoError(err)
	suite.mockResultRepo.AssertExpectations(suite.T())
}

func TestCorrectionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CorrectionServiceTestSuite))
}
