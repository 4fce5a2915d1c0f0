package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

// HTTPClient talks to the FinTrack JSON API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

// NewHTTPClient targets the server at baseURL, e.g. "http://127.0.0.1:5001".
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server address %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. A 401 maps to
// ErrInvalidCredentials.
func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: identifier, Password: password})
	if err != nil {
		return nil, err
	}

	var res models.LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &res); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind == ErrUnauthorized {
			apiErr.Kind = ErrInvalidCredentials
		}
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, fmt.Errorf("%w: login response without token", ErrUnavailable)
	}
	return &res, nil
}

// Profile fetches the account the token belongs to.
func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Insights fetches an AI insight of the given kind for userID. The body is
// returned as-is.
func (c *HTTPClient) Insights(ctx context.Context, token, kind, userID string) (json.RawMessage, error) {
	path := "/api/ai/" + url.PathEscape(kind) + "/" + url.PathEscape(userID)

	raw, status, err := c.send(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, apiError(status, raw)
	}
	return json.RawMessage(raw), nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Ping checks /api/health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	raw, status, err := c.send(ctx, http.MethodGet, "/api/health", "", nil)
	if err != nil {
		return err
	}
	var h healthResponse
	if status != http.StatusOK || json.Unmarshal(raw, &h) != nil || h.Status != "healthy" {
		return fmt.Errorf("%w: health check answered %d", ErrUnavailable, status)
	}
	return nil
}

// do sends a request and decodes the envelope's data into out.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	raw, status, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	if status/100 != 2 {
		return apiError(status, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if !env.Success {
		return &APIError{Status: status, Message: env.Error, Kind: ErrUnavailable}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	u := *c.baseURL
	u.Path += path

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return raw, resp.StatusCode, nil
}

// apiError maps a non-2xx response to an *APIError.
func apiError(status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	kind := ErrUnavailable
	switch {
	case status == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case status == http.StatusForbidden:
		kind = ErrForbidden
	case status/100 == 4:
		kind = ErrBadRequest
	}
	return &APIError{Status: status, Message: env.Error, Kind: kind}
}
