package service

import (
	"time"

	"github.com/turtacn/smsgw/internal/application/dto"
	domainservice "github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/utils"
)

// StatusAppService reports the gateway's configuration and quota usage.
type StatusAppService interface {
	Status() *dto.StatusResponse
}

// StatusInfo is the static part of the status report.
type StatusInfo struct {
	ModemURL       string
	TLSEnabled     bool
	AlertRecipient string
	StartedAt      time.Time
}

type statusAppServiceImpl struct {
	ledger domainservice.QuotaLedger
	info   StatusInfo
	now    func() time.Time
}

// NewStatusAppService creates a status reporter over ledger.
func NewStatusAppService(ledger domainservice.QuotaLedger, info StatusInfo) StatusAppService {
	return &statusAppServiceImpl{ledger: ledger, info: info, now: time.Now}
}

func (s *statusAppServiceImpl) Status() *dto.StatusResponse {
	return &dto.StatusResponse{
		Service:        constants.ServiceName,
		Version:        constants.Version,
		GitHash:        constants.GitHash,
		ModemURL:       s.info.ModemURL,
		TLSEnabled:     s.info.TLSEnabled,
		AlertRecipient: s.info.AlertRecipient,
		StartedAt:      s.info.StartedAt.Unix(),
		Uptime:         utils.FormatUptime(s.now().Sub(s.info.StartedAt)),
		Global:         s.ledger.Status(),
		Callers:        s.ledger.CallerStatus(),
	}
}
