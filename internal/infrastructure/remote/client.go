// Package remote is a client for another running gateway. The CLI uses it when
// --remote-url is given instead of talking to the device directly.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/smsgw/internal/application/dto"
	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/pkg/errors"
	"github.com/turtacn/smsgw/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Error is a non-2xx answer from the remote gateway.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote gateway returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the gateway HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a client for the gateway at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log.WithComponent("remote"),
	}
}

// SendSMS posts req to /send-sms. A dry run is answered locally without contacting the
// remote gateway.
func (c *Client) SendSMS(ctx context.Context, req *dto.SendSMSRequest) (*dto.SendSMSResponse, error) {
	if req.DryRun {
		return &dto.SendSMSResponse{Status: "success", Message: "Dry run, SMS not sent"}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-sms", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp dto.SendSMSResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSMS reads messages through /get-sms. Enumerations are sent as wire codes.
func (c *Client) ListSMS(ctx context.Context, params models.ListParams) (*models.ListResult, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(params.ReadCount))
	q.Set("ascending", strconv.FormatBool(params.Ascending))
	q.Set("unread_preferred", strconv.FormatBool(params.UnreadPreferred))
	q.Set("box_type", strconv.Itoa(params.BoxType.Code()))
	q.Set("sort_by", strconv.Itoa(params.SortType.Code()))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-sms?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp dto.ListSMSResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &models.ListResult{Count: resp.Count, Messages: resp.Messages}, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	c.log.Debug(req.Context(), "Calling remote gateway",
		logger.String("method", req.Method),
		logger.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to remote gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read remote response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errors.ErrorResponse
		message := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &errResp) == nil && errResp.Message != "" {
			message = errResp.Message
		}
		return &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid response from remote gateway: %w", err)
	}
	return nil
}
