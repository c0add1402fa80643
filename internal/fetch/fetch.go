package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps http.Client with a fixed user-agent and bounded per-request
// timeouts. One Client is shared across a whole ingestion run so connections
// are pooled; requests are never retried.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds a request when the caller does not pass its own.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
}

// Response is a completed HTTP exchange. Non-2xx statuses are returned here
// rather than as errors because retrieval strategies branch on them.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError returns an HTTPStatusError when the response status is outside
// the 2xx range, nil otherwise.
func (r *Response) StatusError() error {
	if r.StatusCode >= 200 && r.StatusCode <= 299 {
		return nil
	}
	return &HTTPStatusError{StatusCode: r.StatusCode}
}

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string { return fmt.Sprintf("HTTP %d", e.StatusCode) }

// TransportError reports a network-level failure (DNS, connect, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// NewClient builds a Client with a shared transport suitable for reuse
// across a batch run.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		UserAgent:  userAgent,
		Timeout:    timeout,
	}
}

// Close releases pooled idle connections. Safe to call on all exit paths.
func (c *Client) Close() {
	if c == nil || c.HTTPClient == nil {
		return
	}
	c.HTTPClient.CloseIdleConnections()
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a single GET with context, user-agent, and the given timeout
// (falling back to the client default). A completed exchange is returned even
// for non-2xx statuses; only transport failures produce an error.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	// Reject non-HTTP(S) schemes early
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme: %q", rawURL)}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if timeout <= 0 {
		timeout = c.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
