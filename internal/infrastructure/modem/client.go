// Package modem implements the client side of the device's session-authenticated XML
// protocol: session acquisition, message listing and message submission.
package modem

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/internal/domain/service"
	"github.com/turtacn/smsgw/pkg/constants"
	"github.com/turtacn/smsgw/pkg/logger"
)

const (
	pathSession = "api/webserver/SesTokInfo"
	pathSmsList = "api/sms/sms-list"
	pathSendSms = "api/sms/send-sms"

	opSession = "session"
	opList    = "list"
	opSend    = "send"

	maxResponseBody = 1 << 20
)

var _ service.DeviceClient = (*Client)(nil)

// Client talks to one device. It holds no session state between calls.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	log          logger.Logger
	metrics      service.Metrics
	tracer       trace.Tracer
	logSensitive bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every device call. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics records the latency and outcome of each call.
func WithMetrics(m service.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithSensitiveLogging logs phone numbers and message bodies unmasked.
func WithSensitiveLogging(enabled bool) Option {
	return func(c *Client) { c.logSensitive = enabled }
}

// NewClient creates a client for the device at baseURL, e.g. "http://192.168.8.1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: constants.DefaultDeviceTimeout,
		log:     logger.NewNoopLogger(),
		tracer:  otel.Tracer("github.com/turtacn/smsgw/internal/infrastructure/modem"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   3 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          8,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		c.httpClient = &http.Client{Transport: transport, Timeout: c.timeout}
	}
	c.log = c.log.WithComponent("modem")
	return c
}

// BaseURL returns the device address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AcquireSession fetches a fresh session id and verification token.
func (c *Client) AcquireSession(ctx context.Context) (session models.Session, err error) {
	ctx, finish := c.begin(ctx, opSession)
	defer func() { finish(err) }()

	body, err := c.do(ctx, opSession, http.MethodGet, pathSession, nil, nil)
	if err != nil {
		return models.Session{}, err
	}

	var resp sesTokInfoResponse
	if decodeErr := xml.Unmarshal(body, &resp); decodeErr != nil || resp.SesInfo == nil || resp.TokInfo == nil {
		return models.Session{}, c.classifyFailure(opSession, body, decodeErr)
	}

	sessionID, err := ParseSessionID(*resp.SesInfo)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{SessionID: sessionID, Token: strings.TrimSpace(*resp.TokInfo)}, nil
}

// ListMessages reads the first page of the selected mailbox.
func (c *Client) ListMessages(ctx context.Context, session models.Session, params models.ListParams) (result *models.ListResult, err error) {
	ctx, finish := c.begin(ctx, opList,
		attribute.String("sms.box_type", params.BoxType.String()),
		attribute.Int("sms.read_count", params.ReadCount),
	)
	defer func() { finish(err) }()

	payload, err := marshalRequest(newListRequest(params))
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	body, err := c.do(ctx, opList, http.MethodPost, pathSmsList, &session, payload)
	if err != nil {
		return nil, err
	}

	var resp smsListResponse
	if decodeErr := xml.Unmarshal(body, &resp); decodeErr != nil || resp.Count == nil {
		return nil, c.classifyFailure(opList, body, decodeErr)
	}

	result = &models.ListResult{Count: *resp.Count, Messages: []models.DeviceMessage{}}
	if resp.Messages != nil {
		for _, m := range resp.Messages.Message {
			result.Messages = append(result.Messages, m.toModel())
		}
	}

	c.log.Debug(ctx, "Listed messages",
		logger.Int("count", result.Count),
		logger.Int("returned", len(result.Messages)),
		logger.String("box_type", params.BoxType.String()),
	)
	return result, nil
}

// SendMessage submits one SMS to a single recipient. Whitespace in to is removed.
// With dryRun set nothing is sent and nil is returned.
func (c *Client) SendMessage(ctx context.Context, session models.Session, to, content string, dryRun bool) (err error) {
	to = StripWhitespace(to)

	if dryRun {
		c.log.Info(ctx, "Dry run, SMS not sent",
			logger.Sensitive("to", to, c.logSensitive),
			logger.Sensitive("message", content, c.logSensitive),
		)
		return nil
	}

	ctx, finish := c.begin(ctx, opSend, attribute.Int("sms.length", len([]rune(content))))
	defer func() { finish(err) }()

	payload, err := marshalRequest(newSendRequest(to, content))
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	body, err := c.do(ctx, opSend, http.MethodPost, pathSendSms, &session, payload)
	if err != nil {
		return err
	}

	// The device answers a bare <response>OK</response> on success.
	if bytes.Contains(body, []byte(okMarker)) {
		c.log.Info(ctx, "SMS sent",
			logger.Sensitive("to", to, c.logSensitive),
			logger.Sensitive("message", content, c.logSensitive),
		)
		return nil
	}
	return c.classifyFailure(opSend, body, nil)
}

// do performs one request with the per-call timeout and returns the raw body.
func (c *Client) do(ctx context.Context, op, method, path string, session *models.Session, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	url := joinURL(c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &models.TransportError{Op: op, Err: err}
	}
	if session != nil {
		req.Header.Set("Cookie", "SessionID="+session.SessionID)
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		req.Header.Set("__RequestVerificationToken", session.Token)
		req.Header.Set("Content-Type", "text/xml")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "Device request failed", logger.String("operation", op), logger.String("url", url), logger.Error(err))
		return nil, &models.TransportError{Op: op, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Debug(ctx, "failed to close device response body", logger.Error(closeErr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, &models.TransportError{Op: op, Err: err}
	}
	if len(body) > maxResponseBody {
		return nil, &models.ProtocolError{
			Op:   op,
			Body: snippet(body),
			Err:  fmt.Errorf("response body exceeds %d bytes", maxResponseBody),
		}
	}
	if resp.StatusCode/100 != 2 {
		c.log.Warn(ctx, "Device returned non-2xx status",
			logger.String("operation", op),
			logger.Int("status", resp.StatusCode),
			logger.String("body_snippet", snippet(body)),
		)
	}
	return body, nil
}

// classifyFailure turns an unexpected body into a DeviceFault when it carries the error
// envelope, else into a ProtocolError holding the raw body.
func (c *Client) classifyFailure(op string, body []byte, decodeErr error) error {
	if fault, ok := parseErrorEnvelope(body); ok {
		return fault
	}
	return &models.ProtocolError{Op: op, Body: string(body), Err: decodeErr}
}

// begin starts a span for op and returns a function that ends it and records metrics.
func (c *Client) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "modem."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("modem.url", c.baseURL))...),
	)
	return ctx, func(err error) {
		result := outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(attribute.String("modem.result", result))
		span.End()
		if c.metrics != nil {
			c.metrics.RecordDeviceCall(op, result, time.Since(start))
		}
	}
}

func outcome(err error) string {
	var (
		transportErr *models.TransportError
		protocolErr  *models.ProtocolError
		sessionErr   *models.SessionFormatError
		fault        *models.DeviceFault
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &fault):
		return "device_fault"
	case errors.As(err, &transportErr):
		return "transport_error"
	case errors.As(err, &protocolErr):
		return "protocol_error"
	case errors.As(err, &sessionErr):
		return "session_format_error"
	default:
		return "error"
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
