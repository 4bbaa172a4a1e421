package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smsgw/internal/config"
	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

func TestZapLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := newZapLogger(&config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")
	log.WithComponent("test").Info(ctx, "hello",
		logger.String("token", "abcdefghijkl"),
		logger.Int("count", 3),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "abcd***ijkl", entry["token"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestZapLogger_ErrorCarriesCause(t *testing.T) {
	var buf bytes.Buffer
	log, err := newZapLogger(&config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Error(context.Background(), "boom", errors.New("device unreachable"))
	assert.Contains(t, buf.String(), "device unreachable")
}

func TestZapLogger_SetLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	log, err := newZapLogger(&config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	child := log.WithComponent("child")

	child.Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	log.SetLevel(constants.LogLevelDebug)
	assert.Equal(t, constants.LogLevelDebug, child.GetLevel())
	child.Debug(context.Background(), "visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))
}

func TestMetrics_Init(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	limits := []models.CallerLimit{{Name: "web", Hourly: 5, Daily: 50}}

	m.Init(100, 1000, limits, time.Unix(1700000000, 0))

	assert.Equal(t, 100.0, testutil.ToFloat64(m.HourlyLimit))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.DailyLimit))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CallerHourlyCap.WithLabelValues("web")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.CallerDailyCap.WithLabelValues("web")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CallerHourly.WithLabelValues("web")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.StartTime))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionInfo.WithLabelValues(constants.Version, constants.GitHash)))
}

func TestMetricsAdapter(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	a := NewMetricsAdapter(m)

	a.RecordSmsSent("+420")
	a.RecordSmsSent("+420")
	a.RecordSmsSent("unknown")
	a.RecordHTTPRequest("send_sms")
	a.SetStoredMessages(7)
	a.RecordDeviceCall("send", "ok", 20*time.Millisecond)
	a.RecordRateLimitHit("caller", "hourly")
	a.ObserveGlobalUsage(3, 9)
	a.ObserveCallerUsage("web", 1, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SmsSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SmsByCountry.WithLabelValues("+420")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SmsByCountry.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("send_sms")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.SmsStored))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DeviceLatency))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejects.WithLabelValues("caller", "hourly")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HourlyUsage))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.DailyUsage))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallerHourly.WithLabelValues("web")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CallerDaily.WithLabelValues("web")))
}

func TestTracingManager_Disabled(t *testing.T) {
	tm, err := NewTracingManager(&config.TracingConfig{Enabled: false}, logger.NewNoopLogger())
	require.NoError(t, err)

	ctx, span := tm.StartSpan(context.Background(), "noop")
	defer span.End()
	assert.Empty(t, tm.TraceID(ctx))
	assert.NoError(t, tm.Shutdown(context.Background()))
}
