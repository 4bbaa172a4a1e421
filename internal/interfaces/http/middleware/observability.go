// Package middleware holds the gin middleware shared by the gateway routes.
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/smsgw/internal/domain/service"
)

// ObservabilityMiddleware starts a server span for each request and counts requests per
// route. Unmatched paths are not counted so scanners cannot blow up label cardinality.
func ObservabilityMiddleware(tracer trace.Tracer, metrics service.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		spanName := c.Request.Method + " " + route
		if route == "" {
			spanName = c.Request.Method + " unmatched"
		}
		ctx, span := tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		if route != "" && metrics != nil {
			metrics.RecordHTTPRequest(route)
		}

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
