// Package rest implements backend.Backend over the upstream service's JSON
// REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/teamboard/internal/backend"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/platform/logger"
)

const maxResponseBytes = 4 << 20

// Client calls the upstream backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Ensure Client implements backend.Backend interface
var _ backend.Backend = (*Client)(nil)

// New creates a client for the backend configured in cfg.
func New(cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient creates a client that sends requests through httpClient.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", baseURL)
	}
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "backend_client")),
	}, nil
}

// request describes one upstream call.
type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do sends req and decodes a successful JSON response into out, which may
// be nil. Transport failures wrap backend.ErrUnavailable; non-2xx responses
// are returned as *backend.APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	endpoint := c.baseURL.JoinPath(req.path)
	// JoinPath drops a trailing slash the backend's routes rely on.
	if strings.HasSuffix(req.path, "/") && !strings.HasSuffix(endpoint.Path, "/") {
		endpoint.Path += "/"
	}
	if len(req.query) > 0 {
		endpoint.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("backend request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s %s: %v", backend.ErrUnavailable, req.method, req.path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug("failed to close backend response body", slog.String("error", cerr.Error()))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", backend.ErrUnavailable, err)
	}

	log.Debug("backend request completed",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode backend response for %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// parseError extracts the backend's explanation from an error response. It
// reads "detail" (a string or a list of validation errors), then "message",
// and falls back to the raw body.
func parseError(status int, data []byte) *backend.APIError {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	detail := ""
	if err := json.Unmarshal(data, &payload); err == nil {
		detail = detailText(payload.Detail)
		if detail == "" {
			detail = payload.Message
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(data))
		if len(detail) > 200 {
			detail = detail[:200]
		}
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &backend.APIError{StatusCode: status, Detail: detail}
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

// Login implements backend.AuthBackend.
func (c *Client) Login(ctx context.Context, employeeID int, password string) (*backend.LoginResult, error) {
	var result backend.LoginResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   map[string]any{"e_id": employeeID, "password": password},
	}, &result)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %s", backend.ErrInvalidCredentials, backend.Detail(err))
		}
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response carried no token", backend.ErrUnavailable)
	}
	if result.TokenType == "" {
		result.TokenType = "bearer"
	}
	return &result, nil
}

// ChangePassword implements backend.AuthBackend.
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/change-password",
		token:  token,
		body:   map[string]string{"current_password": currentPassword, "new_password": newPassword},
	}, nil)
}

// ForgotPassword implements backend.AuthBackend.
func (c *Client) ForgotPassword(ctx context.Context, employeeID int) (string, error) {
	var result struct {
		ResetToken string `json:"reset_token"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/forgot-password",
		body:   map[string]int{"e_id": employeeID},
	}, &result)
	if err != nil {
		return "", err
	}
	return result.ResetToken, nil
}

// ResetPassword implements backend.AuthBackend.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/reset-password",
		body:   map[string]string{"reset_token": resetToken, "new_password": newPassword},
	}, nil)
}
