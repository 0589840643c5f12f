package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Joshua-Peter7/reconsys/internal/apperrors"
	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/handlers"
	"github.com/Joshua-Peter7/reconsys/internal/platform/config"
)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) TriggerReconciliation(ctx context.Context, identity domain.Identity, req dto.RunReconciliationRequest) (*dto.ReconciliationRunResponse, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationRunResponse), args.Error(1)
}
func (m *MockReconciliationService) RunForJob(ctx context.Context, job *domain.UploadJob, actorUserID string) (*dto.ReconciliationRunResponse, error) {
	args := m.Called(ctx, job, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconciliationRunResponse), args.Error(1)
}
func (m *MockReconciliationService) ListResults(ctx context.Context, identity domain.Identity, req dto.ListResultsRequest) ([]domain.ReconciliationResult, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationResult), args.Error(1)
}
func (m *MockReconciliationService) GetStats(ctx context.Context, identity domain.Identity, uploadJobID *string) (*domain.ReconciliationStats, error) {
	args := m.Called(ctx, identity, uploadJobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationStats), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

// --- Mock CorrectionService ---
type MockCorrectionService struct {
	mock.Mock
}

func (m *MockCorrectionService) ApplyCorrection(ctx context.Context, identity domain.Identity, resultID string, req dto.CorrectionRequest) error {
	args := m.Called(ctx, identity, resultID, req)
	return args.Error(0)
}

var _ portssvc.CorrectionSvcFacade = (*MockCorrectionService)(nil)

// --- Test Suite ---
type ReconciliationHandlerTestSuite struct {
	suite.Suite
	router                    *gin.Engine
	mockReconciliationService *MockReconciliationService
	mockCorrectionService     *MockCorrectionService
	jwtSecret                 string
}

// generateTestToken creates a signed JWT for the given user.
func (suite *ReconciliationHandlerTestSuite) generateTestToken(userID, role string) string {
	claims := struct {
		Role string `json:"role,omitempty"`
		jwt.RegisteredClaims
	}{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *ReconciliationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockReconciliationService = new(MockReconciliationService)
	suite.mockCorrectionService = new(MockCorrectionService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, MaxFileSizeMB: 1}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Reconciliation: suite.mockReconciliationService,
		Correction:     suite.mockCorrectionService,
	})
}

func (suite *ReconciliationHandlerTestSuite) doJSON(method, url, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ReconciliationHandlerTestSuite) TestRunReconciliation_Success() {
	userID := "user-1"
	expected := &dto.ReconciliationRunResponse{
		Stats: domain.ReconciliationStats{Total: 4, Matched: 2, PartiallyMatched: 1, NotMatched: 1, Accuracy: 75},
	}

	suite.mockReconciliationService.On("TriggerReconciliation",
		mock.Anything,
		domain.Identity{UserID: userID},
		mock.MatchedBy(func(req dto.RunReconciliationRequest) bool {
			return req.UploadJobID == "job-1"
		}),
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/run", suite.generateTestToken(userID, ""),
		gin.H{"uploadJobId": "job-1"})

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ReconciliationRunResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(expected.Stats, body.Stats)
	suite.mockReconciliationService.AssertExpectations(suite.T())
}

func (suite *ReconciliationHandlerTestSuite) TestRunReconciliation_MissingJobID() {
	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/run", suite.generateTestToken("user-1", ""), gin.H{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconciliationService.AssertNotCalled(suite.T(), "TriggerReconciliation")
}

func (suite *ReconciliationHandlerTestSuite) TestRunReconciliation_Unauthorized() {
	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/run", "", gin.H{"uploadJobId": "job-1"})

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestRunReconciliation_ConflictMapsTo409() {
	suite.mockReconciliationService.On("TriggerReconciliation", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/run", suite.generateTestToken("user-1", ""),
		gin.H{"uploadJobId": "job-1"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReconciliationHandlerTestSuite) TestListResults_AdminRoleFlowsThroughToken() {
	suite.mockReconciliationService.On("ListResults",
		mock.Anything,
		domain.Identity{UserID: "admin-1", IsAdmin: true},
		mock.MatchedBy(func(req dto.ListResultsRequest) bool {
			return req.Status != nil && *req.Status == domain.StatusNotMatched && req.Limit == 25
		}),
	).Return([]domain.ReconciliationResult{}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/reconciliation/results?status=not_matched&limit=25",
		suite.generateTestToken("admin-1", "admin"), nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReconciliationService.AssertExpectations(suite.T())
}

func (suite *ReconciliationHandlerTestSuite) TestListResults_UnknownStatusRejected() {
	w := suite.doJSON(http.MethodGet, "/api/v1/reconciliation/results?status=bogus",
		suite.generateTestToken("user-1", ""), nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReconciliationService.AssertNotCalled(suite.T(), "ListResults")
}

func (suite *ReconciliationHandlerTestSuite) TestCorrectResult_Success() {
	newStatus := "matched"
	suite.mockCorrectionService.On("ApplyCorrection",
		mock.Anything,
		domain.Identity{UserID: "user-1"},
		"result-1",
		mock.MatchedBy(func(req dto.CorrectionRequest) bool {
			return req.Status != nil && *req.Status == newStatus && req.Notes == "verified manually"
		}),
	).Return(nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/results/result-1/correction",
		suite.generateTestToken("user-1", ""),
		gin.H{"status": newStatus, "notes": "verified manually", "updates": gin.H{}})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockCorrectionService.AssertExpectations(suite.T())
}

func (suite *ReconciliationHandlerTestSuite) TestCorrectResult_ForbiddenMapsTo403() {
	suite.mockCorrectionService.On("ApplyCorrection", mock.Anything, mock.Anything, "result-1", mock.Anything).
		Return(apperrors.ErrForbidden).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/reconciliation/results/result-1/correction",
		suite.generateTestToken("user-2", ""), gin.H{"updates": gin.H{}})

	suite.Equal(http.StatusForbidden, w.Code)
}

// --- Run Test Suite ---
func TestReconciliationHandler(t *testing.T) {
	suite.Run(t, new(ReconciliationHandlerTestSuite))
}
