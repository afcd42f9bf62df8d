// Package apiclient is the single HTTP entry point to the Meganote backend.
// Every call resolves to the decoded payload or fails with *APIError, so
// callers can show err.Error() without looking at transport details.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	UnknownErrorMessage = "Unknown error"
	TimeoutMessage      = "Request timed out"

	maxBodyBytes = 4 << 20
)

// APIError is the uniform failure shape of every backend call
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Message returns the human-readable message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Client talks JSON to the backend. A Client is immutable once built;
// WithBearer derives a session-scoped copy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     zerolog.Logger
}

// New creates a Client for baseURL whose requests give up after timeout.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient creates a Client on top of an existing http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With().Str("component", "apiclient").Logger(),
	}
}

// WithBearer returns a copy of the client that sends the given access token.
// An empty token yields a copy without authorization.
func (c *Client) WithBearer(token string) *Client {
	scoped := *c
	scoped.token = token
	return &scoped
}

// HasBearer reports whether requests carry an Authorization header.
func (c *Client) HasBearer() bool {
	return c.token != ""
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		if isTimeout(err) {
			return &APIError{Message: TimeoutMessage}
		}
		return &APIError{Message: UnknownErrorMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("read response body")
		if isTimeout(err) {
			return &APIError{Status: resp.StatusCode, Message: TimeoutMessage}
		}
		return &APIError{Status: resp.StatusCode, Message: UnknownErrorMessage}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromBody(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("decode response body")
		return &APIError{Status: resp.StatusCode, Message: UnknownErrorMessage}
	}
	return nil
}

// errorFromBody extracts the envelope's message, or substitutes the generic one.
func errorFromBody(status int, raw []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Message == "" {
		return &APIError{Status: status, Message: UnknownErrorMessage}
	}
	return &APIError{Status: status, Message: envelope.Message}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
