package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/services"
)

// UploadFieldName is the multipart field carrying the media file.
const UploadFieldName = "file"

type UploadHandler struct {
	jobService     *services.JobService
	maxUploadBytes int64
	log            logrus.FieldLogger
}

func NewUploadHandler(jobService *services.JobService, maxUploadBytes int64, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{
		jobService:     jobService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Upload godoc
// @Summary     Upload media and start a sync job
// @Description Streams the first file of the multipart field "file" to storage and submits it to the sync engine.
// @Description Only the first file is used; any further files in the request are ignored.
// @Description Errors are returned as plain text so the page can show them verbatim.
// @Tags        jobs
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Camera clip or external audio"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {string} string "No files uploaded / unsupported file type"
// @Failure     413 {string} string "file too large"
// @Failure     502 {string} string "sync engine unavailable"
// @Router      /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.jobService == nil {
		c.String(http.StatusInternalServerError, "job service not available")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		c.String(http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			c.String(http.StatusBadRequest, "No files uploaded")
			return
		}
		if err != nil {
			h.writeError(c, err)
			return
		}

		if part.FormName() != UploadFieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		job, err := h.jobService.CreateJob(c.Request.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.UploadResponse{
			JobID:  job.ID,
			Status: string(job.Status),
		})
		return
	}
}

func (h *UploadHandler) writeError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.String(http.StatusRequestEntityTooLarge, "file too large")
	case errors.Is(err, services.ErrUnsupportedFileType):
		c.String(http.StatusBadRequest, "unsupported file type")
	case errors.Is(err, services.ErrEngineUnavailable):
		c.String(http.StatusBadGateway, "sync engine unavailable")
	default:
		h.log.WithError(err).Error("upload failed")
		c.String(http.StatusInternalServerError, "upload failed")
	}
}
