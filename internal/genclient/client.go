package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mewai/internal/generation"
	"mewai/internal/logging"
	"mewai/internal/services"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 8 << 20

	startPath  = "/api/generation/start"
	statusPath = "/api/generation/"
	healthPath = "/api/health"

	// RequestIDHeader carries the per-request correlation identifier.
	RequestIDHeader = "X-Request-ID"
)

// Client issues requests against one generation service.
type Client struct {
	base       *url.URL
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	requestID  func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client's own Timeout
// is left untouched.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAPIToken sends the token as a bearer Authorization header.
func WithAPIToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestIDGenerator overrides how correlation ids are produced (useful for tests).
func WithRequestIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// New constructs a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("genclient: base url required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("genclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("genclient: unsupported scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("genclient: base url missing host")
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	client := &Client{
		base:      base,
		timeout:   defaultTimeout,
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.timeout}
	}
	client.logger = logging.NewComponentLogger(client.logger, "genclient")
	return client, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type startResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type statusResponse struct {
	ID       string             `json:"id"`
	Status   string             `json:"status"`
	Progress *float64           `json:"progress"`
	Result   *generation.Result `json:"result"`
	Message  string             `json:"message"`
	Error    string             `json:"error"`
	Topic    string             `json:"topic"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Start submits settings and returns the handle of the created job.
func (c *Client) Start(ctx context.Context, settings generation.Settings) (generation.Handle, error) {
	var handle generation.Handle
	body, err := json.Marshal(settings)
	if err != nil {
		return handle, services.Wrap(services.ErrValidation, "genclient", "start", "encode settings", err)
	}

	var resp startResponse
	if err := c.do(ctx, "start", http.MethodPost, startPath, body, &resp); err != nil {
		return handle, err
	}

	handle.ID = strings.TrimSpace(resp.ID)
	if handle.ID == "" {
		return generation.Handle{}, services.Wrap(services.ErrTransport, "genclient", "start", "response missing job id", nil)
	}
	handle.Status = generation.StatusPending
	if resp.Status != "" {
		status, ok := generation.ParseStatus(resp.Status)
		if !ok {
			return generation.Handle{}, services.Wrap(services.ErrTransport, "genclient", "start", fmt.Sprintf("unexpected status %q", resp.Status), nil)
		}
		handle.Status = status
	}
	handle.Message = resp.Message
	return handle, nil
}

// Status fetches the current snapshot for job id.
func (c *Client) Status(ctx context.Context, id string) (generation.Snapshot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return generation.Snapshot{}, services.Wrap(services.ErrValidation, "genclient", "status", "job id required", nil)
	}

	var resp statusResponse
	if err := c.do(services.WithJobID(ctx, id), "status", http.MethodGet, statusPath+url.PathEscape(id), nil, &resp); err != nil {
		return generation.Snapshot{}, err
	}

	status, ok := generation.ParseStatus(resp.Status)
	if !ok {
		return generation.Snapshot{}, services.Wrap(services.ErrTransport, "genclient", "status", fmt.Sprintf("unexpected status %q", resp.Status), nil)
	}
	snapshot := generation.Snapshot{
		ID:      strings.TrimSpace(resp.ID),
		Status:  status,
		Result:  resp.Result,
		Message: firstNonEmpty(resp.Message, resp.Error),
		Topic:   resp.Topic,
	}
	if snapshot.ID == "" {
		snapshot.ID = id
	}
	if resp.Progress != nil && !math.IsNaN(*resp.Progress) {
		snapshot.Progress = generation.ClampProgress(int(math.Round(*resp.Progress)))
	}
	return snapshot, nil
}

// Health reports whether the service answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, "health", http.MethodGet, healthPath, nil, &resp); err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(resp.Status), "ok") {
		return services.Wrap(services.ErrTransport, "genclient", "health", fmt.Sprintf("service reported status %q", resp.Status), nil)
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body []byte, out any) error {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.requestID()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base.JoinPath(path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return services.Wrap(services.ErrTransport, "genclient", operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("request failed",
			logging.String("operation", operation),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return services.Wrap(services.ErrTransport, "genclient", operation, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return services.Wrap(services.ErrTransport, "genclient", operation, "read response", err)
	}
	logger.Debug("request completed",
		logging.String("operation", operation),
		logging.Int("http_status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(operation, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return services.Wrap(services.ErrTransport, "genclient", operation, "decode response", err)
	}
	return nil
}

// HTTPStatusError records a non-2xx response. It is wrapped by a services
// marker and can be extracted with errors.As.
type HTTPStatusError struct {
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// maxErrorRunes bounds the text kept from a non-JSON error body.
const maxErrorRunes = 200

func statusError(operation string, code int, payload []byte) error {
	httpErr := &HTTPStatusError{StatusCode: code, Message: errorMessage(payload)}
	marker := services.ErrTransport
	message := "service error"
	switch {
	case code == http.StatusNotFound && operation == "status":
		marker = services.ErrNotFound
		message = "unknown job id"
	case code >= 400 && code < 500 && operation == "start":
		marker = services.ErrValidation
		message = "request rejected"
	}
	return services.Wrap(marker, "genclient", operation, message, httpErr)
}

// errorMessage extracts a human-readable message from an error body. The
// service uses "message" or "error"; framework-level rejections use "detail",
// which is either a string or a list of {msg} objects.
func errorMessage(payload []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		text := []rune(strings.TrimSpace(string(payload)))
		if len(text) > maxErrorRunes {
			text = text[:maxErrorRunes]
		}
		return string(text)
	}
	if msg := firstNonEmpty(body.Message, body.Error); msg != "" {
		return msg
	}
	if len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
