package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/paypal"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
)

// OrdersHandler links captured PayPal orders to jobs.
type OrdersHandler struct {
	jobService *services.JobService
	log        logrus.FieldLogger
}

func NewOrdersHandler(jobService *services.JobService, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{
		jobService: jobService,
		log:        log,
	}
}

// MarkPaid godoc
// @Summary     Mark a job as paid
// @Description Records a captured Pay-per-job PayPal order against the job. When PayPal credentials are
// @Description configured the order is looked up and must be COMPLETED for the job price in USD.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Param       id path string true "Job ID"
// @Param       request body models.MarkPaidRequest false "Captured PayPal order"
// @Success     200 {object} models.MarkPaidResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /paypal/mark-paid/{id} [post]
func (h *OrdersHandler) MarkPaid(c *gin.Context) {
	var req models.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	jobID := c.Param("id")
	job, err := h.jobService.MarkPaid(c.Request.Context(), jobID, req.OrderID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
		return
	case errors.Is(err, services.ErrOrderRequired):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, store.ErrOrderUsed):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "order already used",
			Message: "this PayPal order already paid for another job",
		})
		return
	case errors.Is(err, paypal.ErrOrderNotCaptured), errors.Is(err, paypal.ErrAmountMismatch):
		c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
			Error:   "payment not verified",
			Message: err.Error(),
		})
		return
	default:
		h.log.WithError(err).WithField("job_id", jobID).Error("mark-paid failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to mark job paid",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.MarkPaidResponse{
		JobID:  job.ID,
		Paid:   job.Paid,
		PaidAt: job.PaidAt,
		Status: string(job.Status),
	})
}
