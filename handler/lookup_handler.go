package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LookupRunner is implemented by service.LookupService.
type LookupRunner interface {
	Run(ctx context.Context, req dto.LookupRequest) (*dto.LookupResult, error)
	Resolve(ctx context.Context, req *dto.ResolveRequest) (*dto.ResolveResponse, error)
}

type LookupHandler struct {
	lookup LookupRunner
	logger *zap.Logger
}

func NewLookupHandler(lookup LookupRunner, logger *zap.Logger) *LookupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupHandler{lookup: lookup, logger: logger}
}

// Health handles GET /health
func (h *LookupHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lazy-search",
	})
}

// Lookup handles POST /api/v1/lookup. The updated workbook is returned as an
// attachment, or the run summary with ?format=json.
func (h *LookupHandler) Lookup(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to parse multipart form", err)
		return
	}

	request := &dto.UploadRequest{Files: form.File["files[]"]}
	if wb := form.File["workbook"]; len(wb) > 0 {
		request.Workbook = wb[0]
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	workDir, err := os.MkdirTemp("", "lookup-*")
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "failed to create work directory", err)
		return
	}
	defer os.RemoveAll(workDir)

	docDir := filepath.Join(workDir, "documents")
	if err := os.Mkdir(docDir, 0o755); err != nil {
		h.sendError(c, http.StatusInternalServerError, "failed to create work directory", err)
		return
	}

	workbookPath := filepath.Join(workDir, filepath.Base(request.Workbook.Filename))
	if err := c.SaveUploadedFile(request.Workbook, workbookPath); err != nil {
		h.sendError(c, http.StatusInternalServerError, "failed to store workbook", err)
		return
	}
	for _, f := range request.Files {
		if err := c.SaveUploadedFile(f, filepath.Join(docDir, filepath.Base(f.Filename))); err != nil {
			h.sendError(c, http.StatusInternalServerError, "failed to store document", err)
			return
		}
	}

	h.logger.Info("received lookup request",
		zap.String("workbook", request.Workbook.Filename),
		zap.Int("documents", len(request.Files)),
	)

	result, err := h.lookup.Run(c.Request.Context(), dto.LookupRequest{
		WorkbookPath: workbookPath,
		DocumentDir:  docDir,
	})
	if err != nil {
		h.sendServiceError(c, "lookup failed", err)
		return
	}

	if c.Query("format") == "json" {
		result.OutputPath = filepath.Base(result.OutputPath)
		c.JSON(http.StatusOK, result)
		return
	}
	c.FileAttachment(result.OutputPath, filepath.Base(result.OutputPath))
}

// Resolve handles POST /api/v1/resolve
func (h *LookupHandler) Resolve(c *gin.Context) {
	var request dto.ResolveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	response, err := h.lookup.Resolve(c.Request.Context(), &request)
	if err != nil {
		h.sendServiceError(c, "resolve failed", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *LookupHandler) sendServiceError(c *gin.Context, message string, err error) {
	if dto.IsInputError(err) {
		h.sendError(c, http.StatusBadRequest, message, err)
		return
	}
	h.sendError(c, http.StatusInternalServerError, message, err)
}

// sendError sends a structured error response
func (h *LookupHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		h.logger.Warn(message, zap.Int("status", statusCode), zap.Error(err))
	}

	code := "LOOKUP_FAILED"
	if statusCode == http.StatusBadRequest {
		code = "INVALID_INPUT"
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}

// Register mounts the lookup routes on router.
func (h *LookupHandler) Register(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/lookup", h.Lookup)
		api.POST("/resolve", h.Resolve)
	}
}
