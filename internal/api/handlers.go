package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"transcriptions/internal/logger"
	"transcriptions/internal/middleware"
	"transcriptions/internal/model"
	"transcriptions/internal/transcription"
	"transcriptions/internal/utils"
)

const (
	msgNotFound      = "Transcription not found"
	msgInvalidID     = "Invalid transcription id"
	msgInvalidBody   = "Invalid request body"
	msgReadFailed    = "Failed to read transcription"
	msgTranscribe    = "Failed to transcribe audio"
	msgStoreFailed   = "Failed to store transcription"
	msgDeleteFailed  = "Failed to delete transcription"
	msgDeleteSuccess = "Transcription deleted successfully"
)

// TranscriptionService is what the handlers need from the service layer
type TranscriptionService interface {
	Get(ctx context.Context, id int64) (model.Item, error)
	Create(ctx context.Context, id int64, audioURL string) (model.Item, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	svc TranscriptionService
	log *logger.Logger
}

func NewHandler(svc TranscriptionService, log *logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.WithComponent("api"),
	}
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(h *Handler, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log.WithComponent("http")))
	r.Use(middleware.CORS())

	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", healthCheck)

	t := r.Group("/transcriptions")
	{
		t.GET("/:id", h.getTranscription)
		t.POST("", h.createTranscription)
		t.DELETE("/:id", h.deleteTranscription)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "transcription-service",
	})
}

// parseID reads the :id path parameter as a non-negative integer
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		utils.Error(c, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

func (h *Handler) requestLog(c *gin.Context) *logger.Logger {
	return h.log.WithRequestID(c.GetString(middleware.ContextRequestID))
}

// getTranscription handles GET /transcriptions/:id
func (h *Handler) getTranscription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, transcription.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		h.requestLog(c).WithError(err).Error("Error reading transcription", map[string]interface{}{"id": id})
		utils.Error(c, http.StatusInternalServerError, msgReadFailed)
		return
	}

	utils.Success(c, item)
}

// createTranscription handles POST /transcriptions
func (h *Handler) createTranscription(c *gin.Context) {
	var req model.CreateTranscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.requestLog(c).Warn("Rejected create request", map[string]interface{}{"reason": err.Error()})
		utils.Error(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req.ID, req.Data)
	switch {
	case errors.Is(err, transcription.ErrTranscribe):
		utils.Error(c, http.StatusBadGateway, msgTranscribe)
		return
	case err != nil:
		h.requestLog(c).WithError(err).Error("Error creating transcription", map[string]interface{}{"id": req.ID})
		utils.Error(c, http.StatusInternalServerError, msgStoreFailed)
		return
	}

	utils.Success(c, item)
}

// deleteTranscription handles DELETE /transcriptions/:id
func (h *Handler) deleteTranscription(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		utils.Error(c, http.StatusInternalServerError, msgDeleteFailed)
		return
	}

	utils.Message(c, msgDeleteSuccess)
}
