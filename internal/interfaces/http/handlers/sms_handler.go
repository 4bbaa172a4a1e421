package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/smsgw/internal/application/dto"
	"github.com/turtacn/smsgw/internal/application/service"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
	"github.com/turtacn/smsgw/pkg/utils"
)

// SmsHandler serves the send, list and alert endpoints.
type SmsHandler struct {
	smsService service.SmsAppService
	logger     logger.Logger
}

// NewSmsHandler creates an SmsHandler.
func NewSmsHandler(smsService service.SmsAppService, log logger.Logger) *SmsHandler {
	return &SmsHandler{
		smsService: smsService,
		logger:     log.WithComponent("sms_handler"),
	}
}

// SendSMS sends one message.
// POST /send-sms
func (h *SmsHandler) SendSMS(c *gin.Context) {
	var req dto.SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(c.Request.Context(), "Invalid send request", logger.Error(err))
		respondError(c, h.logger, errors.ErrInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.smsService.SendSMS(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSMS lists messages stored on the device.
// GET /get-sms?count=20&ascending=false&unread_preferred=false&box_type=1&sort_by=0
func (h *SmsHandler) GetSMS(c *gin.Context) {
	var query dto.ListSMSQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, h.logger, errors.ErrInvalidRequest(err.Error()))
		return
	}
	params, gwErr := query.ToListParams()
	if gwErr != nil {
		respondError(c, h.logger, gwErr)
		return
	}

	resp, gwErr := h.smsService.ListSMS(c.Request.Context(), params)
	if gwErr != nil {
		respondError(c, h.logger, gwErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertmanager forwards an Alertmanager webhook as an SMS.
// POST /alertmanager
func (h *SmsHandler) Alertmanager(c *gin.Context) {
	var webhook dto.AlertmanagerWebhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		h.logger.Warn(c.Request.Context(), "Invalid Alertmanager payload", logger.Error(err))
		respondError(c, h.logger, errors.ErrInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(&webhook); err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp, err := h.smsService.ForwardAlert(c.Request.Context(), &webhook)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
