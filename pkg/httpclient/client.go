package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Client is a thin JSON-over-HTTP client with default headers.
// It performs exactly one attempt per call.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
}

// NewClient creates a new HTTP client. A zero timeout keeps the transport default.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: headers,
	}
}

// Fetch makes an HTTP GET request and returns the body of a 2xx response
func (c *Client) Fetch(ctx context.Context, targetURL string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, targetURL, nil, headers)
}

// PostJSON marshals payload and sends it with POST
func (c *Client) PostJSON(ctx context.Context, targetURL string, payload any, headers map[string]string) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPost, targetURL, payload, headers)
}

// PatchJSON marshals payload and sends it with PATCH
func (c *Client) PatchJSON(ctx context.Context, targetURL string, payload any, headers map[string]string) ([]byte, error) {
	return c.sendJSON(ctx, http.MethodPatch, targetURL, payload, headers)
}

func (c *Client) sendJSON(ctx context.Context, method, targetURL string, payload any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.do(ctx, method, targetURL, data, headers)
}

func (c *Client) do(ctx context.Context, method, targetURL string, body []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("method", method).
			Str("url", targetURL).
			Msg("Request failed")
		return nil, err
	}

	// 读取并立即关闭 body
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()

	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
		}
	}

	return data, nil
}
