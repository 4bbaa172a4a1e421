package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/smsgw/internal/domain/service/mocks"
)

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordHTTPRequest", "/send-sms").Once()
	metrics.On("RecordHTTPRequest", "/fail").Once()

	router := gin.New()
	router.Use(ObservabilityMiddleware(provider.Tracer("test"), metrics))
	router.POST("/send-sms", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/send-sms"},
		{http.MethodGet, "/fail"},
		{http.MethodGet, "/nowhere"},
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(r.method, r.path, nil)
		router.ServeHTTP(w, req)
	}

	metrics.AssertExpectations(t)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "POST /send-sms", spans[0].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "GET unmatched", spans[2].Name())
}
