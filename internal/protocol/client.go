// Package protocol implements HTTP communication with the catalog API.
// A Client is constructed once from a profile and shared by every component
// that needs the API; endpoint URLs are resolved from the base URL at
// construction time instead of on every call.
package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Origin     string
	APIKey     string
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client implements interfaces.CatalogClient
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	origin     string
	apiKey     string
	userAgent  string
	logger     *logging.Logger

	products singleflight.Group

	mutex sync.RWMutex
	stats Statistics
}

var _ interfaces.CatalogClient = (*Client)(nil)

// NewClient creates a catalog client with the given options
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("baseURL must use http or https")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetProtocolLogger()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		origin:     opts.Origin,
		apiKey:     opts.APIKey,
		userAgent:  fmt.Sprintf("Catalog-Console/%s", ClientVersion),
		logger:     logger,
	}, nil
}

// NewClientFromProfile builds a client from the recognised profile options
func NewClientFromProfile(profile *interfaces.Profile) (*Client, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile cannot be nil")
	}
	return NewClient(Options{
		BaseURL: profile.BaseURL,
		Timeout: profile.Timeout(),
		Origin:  profile.Origin,
		APIKey:  profile.APIKey,
	})
}

// BaseURL returns the resolved base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Stats returns a copy of the request statistics
func (c *Client) Stats() Statistics {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stats
}

// buildURL appends an already-escaped endpoint suffix to the base URL path
func (c *Client) buildURL(endpoint string) string {
	u := *c.baseURL
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + endpoint
	if path, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = path
	}
	return u.String()
}

// setStandardHeaders sets the headers every request carries
func (c *Client) setStandardHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

// do executes one request and returns the raw body of a 2xx response.
// Transport failures become *NetworkError, non-2xx statuses *HTTPError.
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	target := c.buildURL(endpoint)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setStandardHeaders(req, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.updateRequestStatistics(elapsed, false)
		c.logger.Warn("Request failed", "method", method, "url", target, "error", err.Error())
		return nil, &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.updateRequestStatistics(elapsed, false)
		return nil, &NetworkError{Op: method, URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.LogHTTPRequest(method, target, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.updateRequestStatistics(elapsed, false)
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(data),
		}
	}

	c.updateRequestStatistics(elapsed, true)
	return data, nil
}

// doJSON executes a request and decodes the 2xx body into out
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	data, err := c.do(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// updateRequestStatistics updates request counters and the moving average latency
func (c *Client) updateRequestStatistics(responseTime time.Duration, success bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := &c.stats
	stats.TotalRequests++
	stats.LastRequestTime = time.Now()

	if success {
		stats.SuccessfulRequests++
	} else {
		stats.FailedRequests++
	}

	if stats.TotalRequests == 1 {
		stats.AverageResponseTime = responseTime
	} else {
		total := stats.AverageResponseTime * time.Duration(stats.TotalRequests-1)
		stats.AverageResponseTime = (total + responseTime) / time.Duration(stats.TotalRequests)
	}
}
