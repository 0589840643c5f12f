package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
)

// reconciliationHandler handles HTTP requests for runs, results and corrections.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
	correctionService     portssvc.CorrectionSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade, cs portssvc.CorrectionSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
		correctionService:     cs,
	}
}

// registerReconciliationRoutes registers routes related to reconciliation.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade, correctionService portssvc.CorrectionSvcFacade) {
	h := newReconciliationHandler(reconciliationService, correctionService)

	reconciliation := rg.Group("/reconciliation")
	{
		reconciliation.POST("/run", h.runReconciliation)
		reconciliation.GET("/results", h.listResults)
		reconciliation.GET("/stats", h.getStats)
		reconciliation.POST("/results/:resultID/correction", h.correctResult)
	}
}

// runReconciliation re-runs matching for a job, optionally with a
// configuration override that is persisted on the job first.
func (h *reconciliationHandler) runReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RunReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reconciliation run", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	payload, err := h.reconciliationService.TriggerReconciliation(c.Request.Context(), identity, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to run reconciliation")
		return
	}

	logger.Info("Reconciliation run requested", slog.String("job_id", req.UploadJobID))
	c.JSON(http.StatusOK, payload)
}

// listResults returns results visible to the caller.
func (h *reconciliationHandler) listResults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListResultsRequest
	if raw := c.Query("uploadJobId"); raw != "" {
		req.UploadJobID = &raw
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.MatchStatus(raw)
		if !domain.IsValidMatchStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		req.Status = &status
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			req.Limit = parsed
		}
	}
	if raw := c.Query("skip"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			req.Skip = parsed
		}
	}

	results, err := h.reconciliationService.ListResults(c.Request.Context(), identity, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list results")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// getStats aggregates result statuses, optionally for one job.
func (h *reconciliationHandler) getStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var uploadJobID *string
	if raw := c.Query("uploadJobId"); raw != "" {
		uploadJobID = &raw
	}

	stats, err := h.reconciliationService.GetStats(c.Request.Context(), identity, uploadJobID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// correctResult applies a manual correction to one result.
func (h *reconciliationHandler) correctResult(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for correction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resultID := c.Param("resultID")
	if err := h.correctionService.ApplyCorrection(c.Request.Context(), identity, resultID, req); err != nil {
		respondServiceError(c, logger, err, "Failed to apply correction")
		return
	}

	logger.Info("Correction applied", slog.String("result_id", resultID))
	c.JSON(http.StatusOK, gin.H{"message": "correction applied"})
}
