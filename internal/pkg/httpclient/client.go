// Package httpclient is the JSON-over-HTTP client shared by the adapters for
// external services. Any 2xx response is a success.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rus1K7/Airport/internal/pkg/metrics"
	"github.com/Rus1K7/Airport/pkg/options"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Service string
	Method  string
	Path    string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s %s: unexpected status %d", e.Service, e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client calls one external service.
type Client struct {
	service string
	base    *url.URL
	hc      *http.Client
}

// New returns a client for opts.BaseURL joined with apiPrefix (e.g. "/v1").
func New(service string, opts *options.ClientOptions, apiPrefix string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + apiPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base url: %w", service, err)
	}

	return &Client{
		service: service,
		base:    base,
		hc:      &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Do sends in (if non-nil) as JSON and decodes the response into out (if non-nil).
// op names the call in metrics.
func (c *Client) Do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	code, err := c.do(ctx, method, path, query, in, out)
	metrics.OutboundLatency.WithLabelValues(c.service, op, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s request: %w", c.service, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%s %s %s: %w", c.service, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{
			Service: c.service,
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Body:    strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", c.service, err)
	}
	return resp.StatusCode, nil
}
