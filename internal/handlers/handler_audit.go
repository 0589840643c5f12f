package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
)

// auditHandler handles HTTP reads over the append-only ledger.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers routes related to the audit ledger.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	audit := rg.Group("/audit")
	{
		audit.GET("/records/:recordID", h.getRecordTimeline)
		audit.GET("/jobs/:jobID", h.getJobTimeline)
		audit.GET("/actions", h.getActorActions)
	}
}

// getRecordTimeline returns one record's audit entries, oldest first.
func (h *auditHandler) getRecordTimeline(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.auditService.GetRecordTimeline(c.Request.Context(), identity, c.Param("recordID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get record timeline")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// getJobTimeline returns one job's audit entries, oldest first.
func (h *auditHandler) getJobTimeline(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.auditService.GetJobTimeline(c.Request.Context(), identity, c.Param("jobID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get job timeline")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// getActorActions returns the administrator-only trail of actions by user.
func (h *auditHandler) getActorActions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListActorActionsRequest
	if raw := c.Query("changedBy"); raw != "" {
		req.ChangedBy = &raw
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		req.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		req.To = &to
	}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			req.Limit = parsed
		}
	}

	entries, err := h.auditService.GetActorActions(c.Request.Context(), identity, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get actor actions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
