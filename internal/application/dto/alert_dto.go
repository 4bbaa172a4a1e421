package dto

import (
	"fmt"
	"strings"
)

// AlertmanagerWebhook is the Alertmanager webhook payload, version 4.
type AlertmanagerWebhook struct {
	Version           string            `json:"version"`
	GroupKey          string            `json:"groupKey"`
	TruncatedAlerts   int               `json:"truncatedAlerts"`
	Status            string            `json:"status" validate:"required"`
	Receiver          string            `json:"receiver"`
	GroupLabels       map[string]string `json:"groupLabels"`
	CommonLabels      map[string]string `json:"commonLabels"`
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`
	Alerts            []Alert           `json:"alerts"`
}

// Alert is one alert of a webhook group.
type Alert struct {
	Status       string            `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     string            `json:"startsAt"`
	EndsAt       string            `json:"endsAt"`
	GeneratorURL string            `json:"generatorURL"`
	Fingerprint  string            `json:"fingerprint"`
}

// FormatMessage renders the group as one line, e.g.
// "FIRING: DiskFull (critical) - Disk usage above 95%".
func (w *AlertmanagerWebhook) FormatMessage() string {
	name := firstOf(w.CommonLabels, "Unknown Alert", "alertname")
	severity := firstOf(w.CommonLabels, "unknown", "severity")
	summary := firstOf(w.CommonAnnotations, "No summary", "summary", "description", "message")
	return fmt.Sprintf("%s: %s (%s) - %s", strings.ToUpper(w.Status), name, severity, summary)
}

func firstOf(m map[string]string, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return def
}
