package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

const (
	// DefaultTenantHeader carries the tenant identifier on every request
	DefaultTenantHeader = "X-Tenant-ID"

	// RequestIDHeader correlates agent logs with backend logs
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 30 * time.Second
)

// Config holds backend connection settings
type Config struct {
	BaseURL      string        // e.g. https://api.example.com/api
	TenantID     string        // Sent on every request when set
	TenantHeader string        // Default: X-Tenant-ID
	Timeout      time.Duration // Per request (default: 30s)
}

// TokenSourceFunc adapts a function to driven.TokenSource
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Client is the backend HTTP client shared by every console flow.
// It attaches credentials and the tenant header, decodes responses and
// reports 401 answers to authenticated requests. It never touches the
// session itself.
type Client struct {
	baseURL      string
	tenantID     string
	tenantHeader string
	http         *http.Client
	tokens       driven.TokenSource
	reporter     driven.UnauthorizedReporter
	logger       *slog.Logger
}

// NewClient creates a Client. tokens and reporter may be nil.
func NewClient(cfg Config, tokens driven.TokenSource, reporter driven.UnauthorizedReporter, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base url %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	if logger == nil {
		logger = slog.Default()
	}

	tenantHeader := cfg.TenantHeader
	if tenantHeader == "" {
		tenantHeader = DefaultTenantHeader
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		tenantID:     cfg.TenantID,
		tenantHeader: tenantHeader,
		http:         &http.Client{Timeout: timeout},
		tokens:       tokens,
		reporter:     reporter,
		logger:       logger,
	}, nil
}

// Request describes one backend call
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        any // JSON-encoded when non-nil
	RequireAuth bool
	Token       string // Overrides the token source; sent even without RequireAuth
	Binary      bool   // Return the raw body, for downloads
}

// Response is a decoded 2xx answer. JSON is nil for empty or non-JSON bodies.
type Response struct {
	Status      int
	Header      http.Header
	ContentType string
	JSON        json.RawMessage
	Data        []byte // Binary mode only
	Filename    string // Binary mode, from Content-Disposition
}

// Do sends the request. A non-2xx answer yields a *domain.APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", httpReq.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("backend request",
		"method", httpReq.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", httpReq.Header.Get(RequestIDHeader),
	)

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, contentType, body)
		if resp.StatusCode == http.StatusUnauthorized && req.RequireAuth && c.reporter != nil {
			c.reporter.Raise(apiErr.Message)
		}
		return nil, apiErr
	}

	out := &Response{
		Status:      resp.StatusCode,
		Header:      resp.Header,
		ContentType: contentType,
	}

	switch {
	case req.Binary:
		out.Data = body
		out.Filename = filename(resp.Header.Get("Content-Disposition"))
	case resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0:
	case isJSON(contentType):
		out.JSON = json.RawMessage(body)
	}
	return out, nil
}

// DoJSON sends the request and decodes the JSON answer into out
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || resp.JSON == nil {
		return nil
	}
	if err := json.Unmarshal(resp.JSON, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Binary {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.tenantID != "" {
		httpReq.Header.Set(c.tenantHeader, c.tenantID)
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	token := req.Token
	if token == "" && req.RequireAuth && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// errorBody covers the error shapes returned by the backend
type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

func parseError(status int, contentType string, body []byte) *domain.APIError {
	if !isJSON(contentType) || len(body) == 0 {
		return domain.NewAPIError(status, "", nil)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.NewAPIError(status, "", nil)
	}

	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	message := eb.Message
	if message == "" {
		switch e := eb.Error.(type) {
		case string:
			message = e
		case map[string]any:
			if m, ok := e["message"].(string); ok {
				message = m
			}
		}
	}
	return domain.NewAPIError(status, message, data)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func filename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
