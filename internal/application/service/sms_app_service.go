// Package service contains the application services that compose the device client and
// the quota ledger into the operations exposed by the gateway.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/turtacn/smsgw/internal/application/dto"
	"github.com/turtacn/smsgw/internal/domain/models"
	domainservice "github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
)

// SmsAppService dispatches gateway operations to the device.
type SmsAppService interface {
	SendSMS(ctx context.Context, req *dto.SendSMSRequest) (*dto.SendSMSResponse, errors.GatewayError)
	ListSMS(ctx context.Context, params models.ListParams) (*dto.ListSMSResponse, errors.GatewayError)
	ForwardAlert(ctx context.Context, webhook *dto.AlertmanagerWebhook) (*dto.SendSMSResponse, errors.GatewayError)
}

type smsAppServiceImpl struct {
	device         domainservice.DeviceClient
	ledger         domainservice.QuotaLedger
	metrics        domainservice.Metrics
	alertRecipient string
	logSensitive   bool
	log            logger.Logger
}

// SmsAppServiceConfig carries the settings the dispatcher needs beyond its collaborators.
type SmsAppServiceConfig struct {
	AlertRecipient string
	LogSensitive   bool
}

// NewSmsAppService creates the dispatcher. metrics may be nil.
func NewSmsAppService(
	device domainservice.DeviceClient,
	ledger domainservice.QuotaLedger,
	metrics domainservice.Metrics,
	cfg SmsAppServiceConfig,
	log logger.Logger,
) SmsAppService {
	return &smsAppServiceImpl{
		device:         device,
		ledger:         ledger,
		metrics:        metrics,
		alertRecipient: strings.TrimSpace(cfg.AlertRecipient),
		logSensitive:   cfg.LogSensitive,
		log:            log.WithComponent("dispatcher"),
	}
}

// SendSMS admits the request against the ledger and submits it to the device. A dry
// run is admitted and opens a session like any send; only the submission is skipped.
func (s *smsAppServiceImpl) SendSMS(ctx context.Context, req *dto.SendSMSRequest) (*dto.SendSMSResponse, errors.GatewayError) {
	s.log.Info(ctx, "Received request to send SMS",
		logger.String("client", callerOrNone(req.Client)),
		logger.Sensitive("to", req.To, s.logSensitive),
		logger.Sensitive("message", req.Message, s.logSensitive),
		logger.Bool("dry_run", req.DryRun),
	)

	if gwErr := s.admit(ctx, req.Client); gwErr != nil {
		return nil, gwErr
	}
	if gwErr := s.deliver(ctx, req.To, req.Message, req.DryRun, "Failed to send SMS"); gwErr != nil {
		return nil, gwErr
	}

	if req.DryRun {
		return &dto.SendSMSResponse{Status: "success", Message: "Dry run, SMS not sent"}, nil
	}

	s.log.Info(ctx, "SMS sent successfully",
		logger.String("client", callerOrNone(req.Client)),
		logger.Sensitive("to", req.To, s.logSensitive),
	)
	return &dto.SendSMSResponse{Status: "success", Message: "SMS sent successfully!"}, nil
}

// ListSMS reads messages from the device. Reads are not rate limited.
func (s *smsAppServiceImpl) ListSMS(ctx context.Context, params models.ListParams) (*dto.ListSMSResponse, errors.GatewayError) {
	session, err := s.device.AcquireSession(ctx)
	if err != nil {
		s.log.Error(ctx, "Error getting session info", err)
		return nil, classifyDeviceError("Failed to get session info", err)
	}

	result, err := s.device.ListMessages(ctx, session, params)
	if err != nil {
		s.log.Error(ctx, "Error receiving SMS", err)
		return nil, classifyDeviceError("Failed to get SMS list", err)
	}

	if s.metrics != nil {
		s.metrics.SetStoredMessages(result.Count)
	}
	return dto.NewListSMSResponse(result), nil
}

// ForwardAlert sends the formatted alert to the configured recipient, accounted under
// the "alertmanager" caller.
func (s *smsAppServiceImpl) ForwardAlert(ctx context.Context, webhook *dto.AlertmanagerWebhook) (*dto.SendSMSResponse, errors.GatewayError) {
	s.log.Info(ctx, "Received alert from Alertmanager", logger.String("status", webhook.Status))

	if s.alertRecipient == "" {
		s.log.Warn(ctx, "Alertmanager webhook received but no alert phone number configured")
		return nil, errors.ErrConfiguration("Alert phone number not configured")
	}

	message := webhook.FormatMessage()
	if gwErr := s.admit(ctx, constants.AlertCallerName); gwErr != nil {
		return nil, gwErr
	}
	if gwErr := s.deliver(ctx, s.alertRecipient, message, false, "Failed to send alert SMS"); gwErr != nil {
		return nil, gwErr
	}

	s.log.Info(ctx, "Alert SMS sent successfully", logger.Sensitive("message", message, s.logSensitive))
	return &dto.SendSMSResponse{Status: "success", Message: "Alert SMS sent successfully!"}, nil
}

func (s *smsAppServiceImpl) admit(ctx context.Context, caller string) errors.GatewayError {
	err := s.ledger.CheckAndIncrement(caller)
	if err == nil {
		return nil
	}

	var quotaErr *models.QuotaExceededError
	if stderrors.As(err, &quotaErr) {
		s.log.Warn(ctx, "Rate limit exceeded",
			logger.String("client", callerOrNone(caller)),
			logger.String("scope", string(quotaErr.Scope)),
			logger.String("period", string(quotaErr.Period)),
		)
		if s.metrics != nil {
			s.metrics.RecordRateLimitHit(string(quotaErr.Scope), string(quotaErr.Period))
		}
		return errors.ErrRateLimitExceeded("Rate limit exceeded: " + err.Error()).WithCause(err)
	}
	return errors.ErrServerError(err.Error()).WithCause(err)
}

// deliver acquires a fresh session and submits one message. A quota unit granted before
// this call stays consumed whatever the outcome. Dry runs are not counted as sent.
func (s *smsAppServiceImpl) deliver(ctx context.Context, to, message string, dryRun bool, failure string) errors.GatewayError {
	session, err := s.device.AcquireSession(ctx)
	if err != nil {
		s.log.Error(ctx, "Error getting session info", err)
		return classifyDeviceError("Failed to get session info", err)
	}

	if err := s.device.SendMessage(ctx, session, to, message, dryRun); err != nil {
		s.log.Error(ctx, "Error sending SMS", err)
		return classifyDeviceError(failure, err)
	}

	if s.metrics != nil && !dryRun {
		s.metrics.RecordSmsSent(CountryCode(to))
	}
	return nil
}

// classifyDeviceError maps a device fault to a client error and anything else to a
// server error. The device's own message is kept in the text.
func classifyDeviceError(prefix string, err error) errors.GatewayError {
	msg := fmt.Sprintf("%s: %v", prefix, err)
	if models.IsDeviceFault(err) {
		return errors.ErrDeviceFault(msg).WithCause(err)
	}
	return errors.ErrServerError(msg).WithCause(err)
}

// CountryCode returns a coarse grouping tag for a recipient: the first four characters
// of an international number, else "unknown".
func CountryCode(phone string) string {
	if !strings.HasPrefix(phone, "+") {
		return "unknown"
	}
	runes := []rune(phone)
	if len(runes) > 4 {
		runes = runes[:4]
	}
	return string(runes)
}

func callerOrNone(caller string) string {
	if caller == "" {
		return "none"
	}
	return caller
}
