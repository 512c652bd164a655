// Package backend is the HTTP client for the course backend REST API. Every
// failure it returns is a *domain.Error: transport problems become network
// failures, 401/403 become auth failures and any other non-2xx status becomes
// a backend rejection carrying the server's detail string.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a client for baseURL. A zero timeout leaves requests
// unbounded; a hung call then stays in flight until its context ends.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request. The token is read once by the caller and passed in,
// so a request is never replayed under a different credential.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Error(err),
		)
		return domain.NewNetworkFailure(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := parseDetail(raw, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return domain.NewAuthFailure(op, resp.StatusCode, detail)
		}
		return domain.NewBackendRejection(op, resp.StatusCode, detail)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.Is(err, io.EOF) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return &domain.Error{
				Kind:   domain.KindBackendRejection,
				Op:     op,
				Status: resp.StatusCode,
				Detail: "invalid response from server",
				Err:    err,
			}
		}
		return domain.NewNetworkFailure(op, err)
	}
	return nil
}

type validationDetail struct {
	Msg string `json:"msg"`
}

// parseDetail extracts the human-readable detail from an error body. FastAPI
// sends either {"detail": "..."} or, for request validation,
// {"detail": [{"msg": "..."}, ...]}.
func parseDetail(raw []byte, status int) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []validationDetail
		if err := json.Unmarshal(envelope.Detail, &list); err == nil && len(list) > 0 {
			msgs := make([]string, 0, len(list))
			for _, d := range list {
				if d.Msg != "" {
					msgs = append(msgs, d.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/api/health", "", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
