// Package webclient provides the shared HTTP client used by all service
// adapters. Transport failures never cross the API boundary as errors; they
// are reported as a synthetic 408 response with an empty body. Decoding the
// body is the caller's responsibility.
package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 20 * time.Second
	scrapeTimeout  = 60 * time.Second

	userAgent   = "LookupBot/1.0"
	maxBodySize = 5 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the outcome of a single request.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
}

// OK reports whether the response carries a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Client performs GET and POST requests against remote service origins.
// One Client (and its connection pool) is shared per bot instance.
type Client struct {
	client HTTPClient
	pooled *http.Client
}

// New creates a Client over the given HTTP client.
func New(client HTTPClient) *Client {
	return &Client{client: client}
}

// NewPooled creates a Client with its own pooled transport.
// Close releases the pool's idle connections.
func NewPooled() *Client {
	hc := &http.Client{}
	return &Client{client: hc, pooled: hc}
}

// Close releases idle connections held by a pooled client.
func (c *Client) Close() {
	if c.pooled != nil {
		c.pooled.CloseIdleConnections()
	}
}

// Get performs a GET request with the default 20s timeout.
func (c *Client) Get(ctx context.Context, rawurl string, params url.Values, headers map[string]string) Response {
	return c.do(ctx, http.MethodGet, rawurl, params, nil, headers, defaultTimeout)
}

// Scrape performs a GET request against an HTML scrape endpoint with the
// longer 60s timeout.
func (c *Client) Scrape(ctx context.Context, rawurl string, headers map[string]string) Response {
	return c.do(ctx, http.MethodGet, rawurl, nil, nil, headers, scrapeTimeout)
}

// Post performs a POST request with a JSON-encoded body.
func (c *Client) Post(ctx context.Context, rawurl string, body any, headers map[string]string) Response {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return Response{Status: http.StatusRequestTimeout}
		}
	}
	return c.do(ctx, http.MethodPost, rawurl, nil, payload, headers, defaultTimeout)
}

func (c *Client) do(ctx context.Context, method, rawurl string, params url.Values, body []byte, headers map[string]string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if len(params) > 0 {
		sep := "?"
		if u, err := url.Parse(rawurl); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		rawurl += sep + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return Response{Status: http.StatusRequestTimeout}
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{Status: http.StatusRequestTimeout}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{Status: http.StatusRequestTimeout}
	}

	return Response{
		Status:      resp.StatusCode,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}
}
