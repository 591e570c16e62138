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

type JobHandler struct {
	jobService *services.JobService
	log        logrus.FieldLogger
}

func NewJobHandler(jobService *services.JobService, log logrus.FieldLogger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		log:        log,
	}
}

// GetJob godoc
// @Summary     Get job status
// @Description Returns the job status. previewUrl is only present once the job is ready.
// @Tags        jobs
// @Produce     json
// @Param       id path string true "Job ID"
// @Success     200 {object} models.JobResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /job/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("job_id", c.Param("id")).Error("failed to get job")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get job",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, job.Response())
}
