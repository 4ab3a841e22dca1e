package v1

import (
	"io"
	"net/http"

	"github.com/flexprice/donorsync/internal/api/dto"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/service"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	service service.ReconciliationService
	log     *logger.Logger
}

func NewWebhookHandler(
	service service.ReconciliationService,
	log *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

// @Summary Cardcom donation webhook
// @Description Records a one-time or recurring donation from a form encoded Cardcom notification
// @Tags Webhooks
// @Accept application/x-www-form-urlencoded
// @Success 200
// @Failure 500 {string} string
// @Router /webhooks/cardcom/donation [post]
func (h *WebhookHandler) DonationWebhook(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	result, err := h.service.ProcessDonationWebhook(c.Request.Context(), body)
	if err != nil {
		c.Error(err)
		return
	}

	h.logResult(c, "donation webhook processed", result)
	c.Status(http.StatusOK)
}

// @Summary Cardcom recurring status webhook
// @Description Marks the next unpaid installment of a recurring donation as paid
// @Tags Webhooks
// @Accept application/x-www-form-urlencoded
// @Success 200
// @Failure 500 {string} string
// @Router /webhooks/cardcom/recurring [post]
func (h *WebhookHandler) RecurringStatusWebhook(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}

	result, err := h.service.ProcessRecurringStatusWebhook(c.Request.Context(), body)
	if err != nil {
		c.Error(err)
		return
	}

	h.logResult(c, "recurring status webhook processed", result)
	c.Status(http.StatusOK)
}

func (h *WebhookHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Failed to read webhook body").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	return body, true
}

func (h *WebhookHandler) logResult(c *gin.Context, msg string, result *dto.ReconciliationResult) {
	if result == nil {
		return
	}
	h.log.Infow(msg,
		"outcome", result.Outcome,
		"kind", result.Kind,
		"record_id", result.RecordID,
		"donor_id", result.DonorID,
		"fund_id", result.FundID,
	)
}
