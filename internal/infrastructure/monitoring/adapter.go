// Package monitoring provides the zap logger, Prometheus metrics and OpenTelemetry tracing,
// plus the adapter that exposes the metrics through the domain interfaces.
package monitoring

import (
	"time"

	"github.com/turtacn/smsgw/internal/domain/service"
)

var (
	_ service.Metrics       = (*MetricsAdapter)(nil)
	_ service.UsageObserver = (*MetricsAdapter)(nil)
)

// MetricsAdapter implements the domain's service.Metrics and service.UsageObserver
// interfaces on top of the Prometheus Metrics.
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter wraps a concrete Prometheus Metrics object.
func NewMetricsAdapter(metrics *Metrics) *MetricsAdapter {
	return &MetricsAdapter{metrics: metrics}
}

func (a *MetricsAdapter) RecordSmsSent(countryCode string) {
	a.metrics.RecordSmsSent(countryCode)
}

func (a *MetricsAdapter) RecordHTTPRequest(endpoint string) {
	a.metrics.RecordHTTPRequest(endpoint)
}

func (a *MetricsAdapter) SetStoredMessages(count int) {
	a.metrics.SmsStored.Set(float64(count))
}

func (a *MetricsAdapter) RecordDeviceCall(operation, result string, duration time.Duration) {
	a.metrics.DeviceLatency.WithLabelValues(operation, result).Observe(duration.Seconds())
}

func (a *MetricsAdapter) RecordRateLimitHit(scope, period string) {
	a.metrics.RateLimitRejects.WithLabelValues(scope, period).Inc()
}

// ObserveGlobalUsage mirrors the ledger's global counters.
func (a *MetricsAdapter) ObserveGlobalUsage(hourly, daily int) {
	a.metrics.HourlyUsage.Set(float64(hourly))
	a.metrics.DailyUsage.Set(float64(daily))
}

// ObserveCallerUsage mirrors one caller's counters.
func (a *MetricsAdapter) ObserveCallerUsage(caller string, hourly, daily int) {
	a.metrics.CallerHourly.WithLabelValues(caller).Set(float64(hourly))
	a.metrics.CallerDaily.WithLabelValues(caller).Set(float64(daily))
}
