// Package gateway is the single HTTP entry point to the upstream commerce
// API. It attaches the stored bearer credential to every outgoing request
// and purges credentials when the upstream reports them invalid.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultMaxResponseSize is the maximum allowed response size from the
// upstream API when none is configured (10MB)
const defaultMaxResponseSize = 10 * 1024 * 1024

// Config holds upstream client settings
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxResponseSize int64
}

// Client performs HTTP requests against the upstream commerce API
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxResponseSize int64
	creds           *Credentials
	onUnauthorized  func(ctx context.Context, clientKey string)
	logger          *zap.Logger
}

// New creates a new upstream API client
func New(cfg Config, creds *Credentials, logger *zap.Logger) *Client {
	maxSize := cfg.MaxResponseSize
	if maxSize <= 0 {
		maxSize = defaultMaxResponseSize
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		maxResponseSize: maxSize,
		creds:           creds,
		logger:          logger,
	}
}

// SetOnUnauthorized registers the hook invoked after a 401 response has
// purged the stored credentials. Components use it to force
// re-authentication; they must tolerate in-flight operations being
// abandoned when it fires.
func (c *Client) SetOnUnauthorized(fn func(ctx context.Context, clientKey string)) {
	c.onUnauthorized = fn
}

// Get performs a GET request and decodes the response body into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch performs a PATCH request with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do performs an HTTP request against the upstream API
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	clientKey := ClientKeyFrom(ctx)
	if clientKey != "" {
		if token, err := c.creds.Token(ctx, clientKey); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize))
	if err != nil {
		return fmt.Errorf("gateway: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, clientKey)
		return &APIError{Status: resp.StatusCode, Message: extractMessage(respBody, "Authentication required")}
	}

	if resp.StatusCode >= 400 {
		fallback := fmt.Sprintf("Request failed with HTTP %d", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: extractMessage(respBody, fallback)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("gateway: failed to parse response: %w", err)
		}
	}

	return nil
}

// handleUnauthorized purges stored credentials and fires the re-auth hook.
// In-flight operations for the same client may be abandoned as a result.
func (c *Client) handleUnauthorized(ctx context.Context, clientKey string) {
	if clientKey == "" {
		return
	}
	if err := c.creds.Purge(ctx, clientKey); err != nil {
		c.logger.Warn("Failed to purge credentials after 401",
			zap.String("client_key", clientKey),
			zap.Error(err),
		)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx, clientKey)
	}
}

// upstreamError matches the error payload shapes the backend emits
type upstreamError struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractMessage pulls the human-readable message out of an error payload,
// falling back to the supplied generic text
func extractMessage(body []byte, fallback string) string {
	if len(body) == 0 {
		return fallback
	}
	var payload upstreamError
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fallback
}
