// Package apiclient talks to the growth archive REST API.
//
// Every failure, whether transport or server-reported, comes back as a single
// *errors.Error with code REQUEST_FAILED whose message is safe to show a user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/growth-archive/internal/tokenstore"
	appErrors "github.com/noah-isme/growth-archive/pkg/errors"
)

// Observer receives one callback per API call. status is 0 when no response arrived.
type Observer interface {
	ObserveAPICall(operation string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Observer   Observer
}

// Client is the HTTP client for the backend.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   tokenstore.Store
	logger   *zap.Logger
	observer Observer
}

// New builds a client that reads and writes credentials through tokens.
func New(tokens tokenstore.Store, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		tokens:   tokens,
		logger:   logger,
		observer: opts.Observer,
	}
}

// HasToken reports whether a bearer token is stored.
func (c *Client) HasToken(ctx context.Context) bool {
	return tokenstore.Present(ctx, c.tokens)
}

// Credentials returns the stored credentials, if any.
func (c *Client) Credentials(ctx context.Context) (tokenstore.Credentials, bool) {
	creds, ok, err := c.tokens.Get(ctx)
	if err != nil {
		c.logger.Warn("read stored token", zap.Error(err))
		return tokenstore.Credentials{}, false
	}
	return creds, ok
}

// do performs one request with the stored token. out may be nil when the operation has no result.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	creds, _ := c.Credentials(ctx)
	return c.send(ctx, op, method, path, creds.Token, body, out)
}

// send performs one request; bearer is omitted when empty.
func (c *Client) send(ctx context.Context, op, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.logger.Error("encode request body", zap.String("operation", op), zap.Error(err))
			return appErrors.RequestFailed(0, "")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.logger.Error("build request", zap.String("operation", op), zap.Error(err))
		return appErrors.RequestFailed(0, "")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, time.Since(start))
		c.logger.Warn("api request failed",
			zap.String("operation", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return appErrors.RequestFailed(0, "")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, readErr := io.ReadAll(resp.Body)
	c.observe(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := errorMessage(data)
		c.logger.Debug("api request rejected",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return appErrors.RequestFailed(resp.StatusCode, message)
	}
	if readErr != nil {
		c.logger.Warn("read response body", zap.String("operation", op), zap.Error(readErr))
		return appErrors.RequestFailed(resp.StatusCode, "")
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("decode response body", zap.String("operation", op), zap.Error(err))
		return appErrors.RequestFailed(resp.StatusCode, "")
	}
	return nil
}

func (c *Client) observe(op string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAPICall(op, status, d)
	}
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// errorMessage extracts a readable reason from an error body. detail may be a
// string or a list of validation issues; anything else yields "".
func errorMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var issues []validationIssue
	if err := json.Unmarshal(payload.Detail, &issues); err == nil {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if m := strings.TrimSpace(issue.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func archivePath(id string) string {
	return fmt.Sprintf("/archives/%s", escape(id))
}

// ClearToken forgets stored credentials without contacting the server.
func (c *Client) ClearToken(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}
