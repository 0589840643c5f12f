package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
	portssvc "github.com/Joshua-Peter7/reconsys/internal/core/ports/services"
	"github.com/Joshua-Peter7/reconsys/internal/dto"
	"github.com/Joshua-Peter7/reconsys/internal/middleware"
)

const defaultPreviewRows = 10

// uploadHandler handles HTTP requests for file submissions and job tracking.
type uploadHandler struct {
	uploadService portssvc.UploadSvcFacade
	maxFileBytes  int64
}

func newUploadHandler(us portssvc.UploadSvcFacade, maxFileSizeMB int) *uploadHandler {
	return &uploadHandler{
		uploadService: us,
		maxFileBytes:  int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// registerUploadRoutes registers routes related to uploads.
func registerUploadRoutes(rg *gin.RouterGroup, uploadService portssvc.UploadSvcFacade, maxFileSizeMB int) {
	h := newUploadHandler(uploadService, maxFileSizeMB)

	uploads := rg.Group("/uploads")
	{
		uploads.POST("", h.createUpload)
		uploads.POST("/preview", h.previewUpload)
		uploads.GET("", h.listJobs)
		uploads.GET("/:jobID", h.getJob)
	}
}

// readUploadedFile pulls the multipart file out of the request, enforcing the
// configured size ceiling.
func (h *uploadHandler) readUploadedFile(c *gin.Context) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.New("a file part named 'file' is required")
	}
	if fileHeader.Size > h.maxFileBytes {
		return "", nil, errors.New("file exceeds the maximum allowed size")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, errors.New("failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		return "", nil, errors.New("failed to read uploaded file")
	}
	if int64(len(data)) > h.maxFileBytes {
		return "", nil, errors.New("file exceeds the maximum allowed size")
	}
	return fileHeader.Filename, data, nil
}

// createUpload accepts a multipart submission: the file, its upload type, the
// column mapping and an optional matching configuration override.
func (h *uploadHandler) createUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	fileName, fileBytes, err := h.readUploadedFile(c)
	if err != nil {
		logger.Warn("Rejected upload file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var columnMapping map[string]string
	if raw := c.PostForm("columnMapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &columnMapping); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "columnMapping must be a JSON object of source column to field name"})
			return
		}
	}

	var matchingConfig *dto.MatchingConfigPayload
	if raw := c.PostForm("matchingConfig"); raw != "" {
		matchingConfig = &dto.MatchingConfigPayload{}
		if err := json.Unmarshal([]byte(raw), matchingConfig); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "matchingConfig must be a JSON object"})
			return
		}
	}

	req := dto.CreateUploadJobRequest{
		FileName:       fileName,
		FileBytes:      fileBytes,
		ColumnMapping:  columnMapping,
		UploadType:     domain.UploadType(c.PostForm("uploadType")),
		MatchingConfig: matchingConfig,
	}

	submission, err := h.uploadService.CreateUploadJob(c.Request.Context(), identity, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to accept upload")
		return
	}

	status := http.StatusAccepted
	if submission.Reused {
		status = http.StatusOK
	}
	logger.Info("Upload submission handled", slog.String("job_id", submission.JobID), slog.Bool("reused", submission.Reused))
	c.JSON(status, submission)
}

// previewUpload decodes the first rows of a file so the caller can build a
// column mapping before submitting.
func (h *uploadHandler) previewUpload(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileName, fileBytes, err := h.readUploadedFile(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := defaultPreviewRows
	if raw := c.PostForm("rows"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	preview, err := h.uploadService.Preview(c.Request.Context(), fileName, fileBytes, limit)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to preview file")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// getJob returns one job; callers poll this while ingestion runs.
func (h *uploadHandler) getJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	job, err := h.uploadService.GetJob(c.Request.Context(), identity, c.Param("jobID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get job")
		return
	}
	c.JSON(http.StatusOK, dto.ToUploadJobResponse(job))
}

// listJobs returns the jobs visible to the caller, newest first.
func (h *uploadHandler) listJobs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	identity, ok := middleware.GetIdentityFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListJobsRequest
	if raw := c.Query("status"); raw != "" {
		status := domain.UploadJobStatus(raw)
		req.Status = &status
	}
	if raw := c.Query("uploadType"); raw != "" {
		uploadType := domain.UploadType(raw)
		req.UploadType = &uploadType
	}
	if raw := c.Query("uploadedBy"); raw != "" {
		req.UploadedBy = &raw
	}

	jobs, err := h.uploadService.ListJobs(c.Request.Context(), identity, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": dto.ToUploadJobResponses(jobs)})
}
