package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
)

type DownloadHandler struct {
	jobService *services.JobService
	log        logrus.FieldLogger
}

func NewDownloadHandler(jobService *services.JobService, log logrus.FieldLogger) *DownloadHandler {
	return &DownloadHandler{
		jobService: jobService,
		log:        log,
	}
}

// Download godoc
// @Summary     Download the synced output
// @Description Redirects to a short-lived link to the synced .mov. Payment is enforced here,
// @Description whatever the page believes about its own payment state.
// @Tags        jobs
// @Param       id path string true "Job ID"
// @Success     302 "Redirect to the output file"
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /download/{id} [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	link, _, err := h.jobService.DownloadURL(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, link)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
	case errors.Is(err, services.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
			Error:   "payment required",
			Message: "Please complete the Pay-per-job payment before downloading.",
		})
	case errors.Is(err, services.ErrJobNotReady):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "job not ready"})
	default:
		h.log.WithError(err).WithField("job_id", c.Param("id")).Error("download failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "download failed"})
	}
}
