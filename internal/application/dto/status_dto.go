package dto

import "github.com/turtacn/smsgw/internal/domain/models"

// StatusResponse is the body of GET /api/status and the data behind the HTML status page.
type StatusResponse struct {
	Service        string                     `json:"service"`
	Version        string                     `json:"version"`
	GitHash        string                     `json:"git_hash"`
	ModemURL       string                     `json:"modem_url"`
	TLSEnabled     bool                       `json:"tls_enabled"`
	AlertRecipient string                     `json:"alert_recipient,omitempty"`
	StartedAt      int64                      `json:"started_at"`
	Uptime         string                     `json:"uptime"`
	Global         models.QuotaStatus         `json:"global"`
	Callers        []models.CallerQuotaStatus `json:"callers"`
}

// BannerResponse is the body of GET /.
type BannerResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}
