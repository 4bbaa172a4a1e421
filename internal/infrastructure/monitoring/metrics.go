package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	SmsSent          prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	SmsByCountry     *prometheus.CounterVec
	HourlyLimit      prometheus.Gauge
	DailyLimit       prometheus.Gauge
	HourlyUsage      prometheus.Gauge
	DailyUsage       prometheus.Gauge
	CallerHourly     *prometheus.GaugeVec
	CallerDaily      *prometheus.GaugeVec
	CallerHourlyCap  *prometheus.GaugeVec
	CallerDailyCap   *prometheus.GaugeVec
	SmsStored        prometheus.Gauge
	StartTime        prometheus.Gauge
	VersionInfo      *prometheus.GaugeVec
	DeviceLatency    *prometheus.HistogramVec
	RateLimitRejects *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SmsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "smser_sms_sent_total",
			Help: "Total number of SMS messages accepted by the device.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smser_http_requests_total",
			Help: "Total number of HTTP requests by endpoint.",
		}, []string{"endpoint"}),
		SmsByCountry: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smser_sms_country_total",
			Help: "SMS messages sent by recipient dialing code.",
		}, []string{"country_code"}),
		HourlyLimit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_hourly_limit",
			Help: "Global hourly send ceiling.",
		}),
		DailyLimit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_daily_limit",
			Help: "Global daily send ceiling.",
		}),
		HourlyUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_hourly_usage",
			Help: "Sends counted in the current global hourly window.",
		}),
		DailyUsage: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_daily_usage",
			Help: "Sends counted in the current global daily window.",
		}),
		CallerHourly: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smser_client_hourly_usage",
			Help: "Sends counted in the caller's current hourly window.",
		}, []string{"client"}),
		CallerDaily: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smser_client_daily_usage",
			Help: "Sends counted in the caller's current daily window.",
		}, []string{"client"}),
		CallerHourlyCap: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smser_client_hourly_limit",
			Help: "Per-caller hourly send ceiling.",
		}, []string{"client"}),
		CallerDailyCap: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smser_client_daily_limit",
			Help: "Per-caller daily send ceiling.",
		}, []string{"client"}),
		SmsStored: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_sms_stored",
			Help: "Message count reported by the device on the last list.",
		}),
		StartTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smser_start_time_seconds",
			Help: "Unix time the gateway started.",
		}),
		VersionInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smser_version_info",
			Help: "Build information, always 1.",
		}, []string{"version", "git_hash"}),
		DeviceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smser_device_request_duration_seconds",
			Help:    "Latency of device calls by operation and result.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		RateLimitRejects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smser_rate_limit_rejections_total",
			Help: "Sends rejected by the quota ledger.",
		}, []string{"scope", "period"}),
	}
}

// Init publishes the static gauges: limits, start time and build info.
func (m *Metrics) Init(hourly, daily int, limits []models.CallerLimit, startedAt time.Time) {
	m.HourlyLimit.Set(float64(hourly))
	m.DailyLimit.Set(float64(daily))
	for _, limit := range limits {
		m.CallerHourlyCap.WithLabelValues(limit.Name).Set(float64(limit.Hourly))
		m.CallerDailyCap.WithLabelValues(limit.Name).Set(float64(limit.Daily))
		m.CallerHourly.WithLabelValues(limit.Name).Set(0)
		m.CallerDaily.WithLabelValues(limit.Name).Set(0)
	}
	m.StartTime.Set(float64(startedAt.Unix()))
	m.VersionInfo.WithLabelValues(constants.Version, constants.GitHash).Set(1)
}

// RecordSmsSent counts an accepted message and its dialing code.
func (m *Metrics) RecordSmsSent(countryCode string) {
	m.SmsSent.Inc()
	m.SmsByCountry.WithLabelValues(countryCode).Inc()
}

// RecordHTTPRequest counts a request to endpoint.
func (m *Metrics) RecordHTTPRequest(endpoint string) {
	m.HTTPRequests.WithLabelValues(endpoint).Inc()
}
