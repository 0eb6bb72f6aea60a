package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-reconciler/internal/domain/port/core"
	"github.com/sony/gobreaker"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 1 << 20

// Options configures a gateway HTTP client
type Options struct {
	Gateway string
	// Timeout bounds every call, including reading the body
	Timeout time.Duration
	// MaxFailures consecutive failures open the breaker
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call
	OpenTimeout time.Duration
}

// DefaultOptions returns the defaults for gateway calls
func DefaultOptions(gatewayName string) Options {
	return Options{
		Gateway:     gatewayName,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// Request is one JSON call to a gateway
type Request struct {
	Op     string // used in errors and logs, e.g. "stk_push"
	Method string
	URL    string
	Header map[string]string
	// Body is JSON-encoded when non-nil
	Body any
	// ErrorBody, when set, receives the decoded body of a non-2xx response
	ErrorBody any
	// Expected reports whether a non-2xx status (ErrorBody already decoded) is a
	// normal answer. The call still fails but does not count against the breaker.
	Expected func(status int) bool
}

// expectedError marks a non-2xx answer the caller anticipated
type expectedError struct {
	err error
}

func (e *expectedError) Error() string { return e.err.Error() }
func (e *expectedError) Unwrap() error { return e.err }

// Client sends JSON requests through a circuit breaker and converts every
// failure to *errs.GatewayError
type Client struct {
	gateway string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	clock   coreport.TimeProvider
	logger  coreport.Logger
}

// NewClient creates a gateway client. A nil httpClient uses a fresh http.Client.
func NewClient(opts Options, httpClient *http.Client, clock coreport.TimeProvider, logger coreport.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	defaults := DefaultOptions(opts.Gateway)
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = defaults.MaxFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = defaults.OpenTimeout
	}

	c := &Client{
		gateway: opts.Gateway,
		http:    httpClient,
		timeout: opts.Timeout,
		clock:   clock,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Gateway,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		// rejected credentials and bad requests say nothing about upstream health
		IsSuccessful: func(err error) bool {
			var expected *expectedError
			if errors.As(err, &expected) {
				return true
			}
			var gwErr *errs.GatewayError
			if errors.As(err, &gwErr) && gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Gateway circuit breaker state changed", map[string]any{
				"gateway": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return c
}

// Gateway returns the name used in errors
func (c *Client) Gateway() string {
	return c.gateway
}

// Do sends req and decodes a 2xx JSON response into out (which may be nil)
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	ctx, cancel := c.clock.WithTimeout(ctx, coreport.Duration(c.timeout))
	defer cancel()

	start := c.clock.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, req, out)
	})

	var expected *expectedError
	if errors.As(err, &expected) {
		return expected.err
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errs.NewGatewayError(c.gateway, req.Op, 0, err)
		}
		c.logger.Warn("Gateway call failed", coreport.ErrorFields(err, map[string]any{
			"duration_ms": c.clock.Since(start).Std().Milliseconds(),
		}))
		return err
	}

	c.logger.Debug("Gateway call succeeded", map[string]any{
		"gateway":     c.gateway,
		"operation":   req.Op,
		"duration_ms": c.clock.Since(start).Std().Milliseconds(),
	})
	return nil
}

func (c *Client) send(ctx context.Context, req Request, out any) error {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return errs.NewGatewayError(c.gateway, req.Op, 0, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return errs.NewGatewayError(c.gateway, req.Op, 0, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return c.transportError(ctx, req.Op, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.transportError(ctx, req.Op, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errs.NewGatewayError(c.gateway, req.Op, resp.StatusCode, errs.ErrAuth)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if req.ErrorBody != nil {
			_ = json.Unmarshal(raw, req.ErrorBody)
		}
		gwErr := errs.NewGatewayError(c.gateway, req.Op, resp.StatusCode,
			fmt.Errorf("unexpected response: %s", snippet(raw)))
		if req.Expected != nil && req.Expected(resp.StatusCode) {
			return &expectedError{err: gwErr}
		}
		return gwErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.NewGatewayError(c.gateway, req.Op, resp.StatusCode, fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, op string, status int, err error) error {
	gwErr := errs.NewGatewayError(c.gateway, op, status, err)
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		gwErr.Timeout = true
	}
	return gwErr
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
