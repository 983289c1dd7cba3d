package remote

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

	"github.com/google/uuid"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/httputil"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/observability"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// Client calls a simulator served by [Handler].
type Client struct {
	endpoint *url.URL
	http     *http.Client
	name     string
	attempts int
	delay    time.Duration
}

var _ simulator.Simulator = (*Client)(nil)

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the default [httputil.NewClient].
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRetry sets the attempt count and initial backoff for transient
// failures.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithName sets the name reported to caches and hooks. It should identify
// the model behind the server, since results are cached under it.
func WithName(name string) ClientOption {
	return func(c *Client) { c.name = name }
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "simulator URL %q must be an absolute http(s) URL", baseURL)
	}
	u = u.JoinPath(SimulatePath)
	c := &Client{
		endpoint: u,
		http:     httputil.NewClient(0),
		name:     "remote:" + u.Host,
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name identifies the server in cache keys.
func (c *Client) Name() string { return c.name }

// Simulate posts cfg to the server.
func (c *Client) Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
	body, err := json.Marshal(Request{Configuration: cfg})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode configuration")
	}
	id := uuid.NewString()

	var res *column.SimulationResult
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		res, err = c.post(ctx, id, body)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "simulate request %s", id)
		}
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "simulate request %s", id)
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, id string, body []byte) (*column.SimulationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, id)

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &httputil.RetryableError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSimulationFailed, err, "decode response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode == http.StatusOK {
		if out.Result == nil {
			return nil, errors.New(errors.ErrCodeSimulationFailed, "server returned no result")
		}
		return out.Result, nil
	}
	return nil, remoteError(resp.StatusCode, out.Error)
}

// remoteError restores the server's error code on the client side.
func remoteError(status int, body *ErrorBody) error {
	if body == nil {
		return errors.New(errors.ErrCodeSimulationFailed, "status %d without error body", status)
	}
	switch {
	case body.Code == errors.ErrCodeNotConverged:
		return simulator.NotConverged("%s", body.Message)
	case status == http.StatusUnprocessableEntity:
		return errors.New(body.Code, "%s", body.Message)
	case status == http.StatusBadRequest:
		return errors.New(errors.ErrCodeInvalidConfig, "server rejected configuration: %s", body.Message)
	default:
		return errors.New(errors.ErrCodeSimulationFailed, "status %d: %s", status, body.Message)
	}
}
