package backend

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

	"github.com/opdesk/opdesk/pkg/circuitbreaker"
	"github.com/opdesk/opdesk/pkg/errors"
	"github.com/opdesk/opdesk/pkg/metrics"
)

// Envelope is the uniform response shape of the hospital backend: a
// boolean status flag and either a data payload or a message string.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	URL     string          `json:"url,omitempty"`
}

// Client is the shared HTTP plumbing under every role-scoped client. The
// session is injected at construction and consulted on every request;
// there is no ambient global token.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *Session
	cb      *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures int
	BreakerWait time.Duration
}

func NewClient(cfg ClientConfig, session *Session, m *metrics.Metrics) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.BreakerWait <= 0 {
		cfg.BreakerWait = 30 * time.Second
	}

	return &Client{
		base:    base,
		http:    &http.Client{Timeout: cfg.Timeout},
		session: session,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "hospital-backend",
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.BreakerWait,
		}),
		metrics: m,
	}, nil
}

// Get issues a GET and decodes the envelope's data payload into out.
func (c *Client) Get(ctx context.Context, operation, path string, out interface{}) error {
	return c.do(ctx, operation, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the envelope's data
// payload into out. A nil out discards the payload.
func (c *Client) Post(ctx context.Context, operation, path string, body, out interface{}) error {
	return c.do(ctx, operation, http.MethodPost, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, operation, path string, body, out interface{}) error {
	return c.do(ctx, operation, http.MethodPatch, path, body, out)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	env, err := c.roundTrip(ctx, operation, method, path, body)
	if err != nil {
		return err
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.NewInternal(fmt.Errorf("failed to decode %s response: %w", operation, err))
		}
	}
	return nil
}

// GetBinary fetches a binary document (e.g. a rendered prescription PDF)
// and returns the raw bytes with the reported content type. The backend
// may answer with a JSON envelope carrying a url instead of the stream
// itself; the url is followed for the real bytes.
func (c *Client) GetBinary(ctx context.Context, operation, path string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}

	payload, contentType, err := c.fetchBinary(operation, req)
	if err != nil {
		return nil, "", err
	}
	if strings.Contains(contentType, "json") {
		return c.followDocumentURL(ctx, operation, payload)
	}
	return payload, contentType, nil
}

// followDocumentURL resolves the url-indirection form of the document
// contract: a `{status, url}` envelope pointing at the real stream.
func (c *Client) followDocumentURL(ctx context.Context, operation string, payload []byte) ([]byte, string, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, "", errors.NewUnavailable("malformed document envelope", err)
	}
	if !env.Status || env.URL == "" {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("backend rejected %s", operation)
		}
		return nil, "", errors.NewUnavailable(msg, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.URL, nil)
	if err != nil {
		return nil, "", errors.NewInternal(err)
	}
	if c.session != nil {
		if err := c.session.Authorize(req); err != nil {
			return nil, "", err
		}
	}
	return c.fetchBinary(operation, req)
}

func (c *Client) fetchBinary(operation string, req *http.Request) ([]byte, string, error) {
	var (
		payload     []byte
		contentType string
	)
	start := time.Now()
	cbErr := c.cb.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return errors.NewUnavailable("hospital backend unreachable", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return errors.NewNotFound("document", nil)
		}
		if resp.StatusCode >= 400 {
			return errors.NewUnavailable(
				fmt.Sprintf("backend returned %d for %s", resp.StatusCode, operation), nil)
		}

		payload, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.NewUnavailable("failed to read document stream", err)
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	c.observe(operation, start, cbErr)
	return payload, contentType, cbErr
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path string, body interface{}) (*Envelope, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var env Envelope
	start := time.Now()
	cbErr := c.cb.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return errors.NewUnavailable("hospital backend unreachable", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Unauthorized(nil)
		}

		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return errors.NewUnavailable("malformed backend response", err)
		}

		// A status:false envelope is treated identically to a
		// transport-level failure for user messaging.
		if !env.Status || resp.StatusCode >= 400 {
			msg := env.Message
			if msg == "" {
				msg = fmt.Sprintf("backend rejected %s", operation)
			}
			return errors.NewUnavailable(msg, nil)
		}
		return nil
	})
	c.observe(operation, start, cbErr)
	if cbErr != nil {
		return nil, cbErr
	}
	return &env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	rawQuery := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, rawQuery = path[:i], path[i+1:]
	}
	u := c.base.JoinPath(path)
	u.RawQuery = rawQuery

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.session != nil {
		if err := c.session.Authorize(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.BackendCalls.WithLabelValues(operation, status).Inc()
	c.metrics.BackendLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
