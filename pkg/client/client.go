// Package client posts questions to a chat backend's response endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatwidget/pkg/chat"
)

// ErrMissingAnswer is returned when a 2xx reply carries no answer field.
var ErrMissingAnswer = errors.New("response has no answer")

// StatusError is returned when the backend replies with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}

	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

// Client asks questions over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + chat.ResponsePath,
		// No timeout: a call only ends when the backend answers or ctx is done.
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint returns the full URL questions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask posts question and returns the answer verbatim.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(chat.ChatRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("posting question",
		zap.String("url", c.endpoint),
		zap.Int("body_size", len(body)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var decoded chat.ChatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if decoded.Answer == nil {
		return "", ErrMissingAnswer
	}

	return *decoded.Answer, nil
}
