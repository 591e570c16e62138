package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
)

type WebhookHandler struct {
	token      string
	jobService *services.JobService
	log        logrus.FieldLogger
}

func NewWebhookHandler(token string, jobService *services.JobService, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{
		token:      token,
		jobService: jobService,
		log:        log,
	}
}

// HandleEngineWebhook godoc
// @Summary     Sync engine status callback
// @Description Receives job status updates from the sync engine. The Authorization header must carry the
// @Description configured engine webhook token, with or without a "Bearer " prefix.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Authorization header string true "Engine webhook token"
// @Param       event body models.EngineWebhookEvent true "Status update"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /webhooks/engine [post]
func (h *WebhookHandler) HandleEngineWebhook(c *gin.Context) {
	if h.token == "" {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "engine webhooks are disabled"})
		return
	}

	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if token == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "missing authorization token"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid authorization token"})
		return
	}

	var event models.EngineWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse event",
			Message: err.Error(),
		})
		return
	}
	if event.Reference == "" && event.JobID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "event has no job reference"})
		return
	}

	job, err := h.jobService.ApplyEngineUpdate(c.Request.Context(), event)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("engine_job_id", event.JobID).Error("failed to apply engine update")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to apply update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "job_status": string(job.Status)})
}
