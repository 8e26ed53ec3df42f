package protocol

import (
	"fmt"
	"time"
)

// Endpoint path suffixes, resolved against the configured base URL
const (
	EndpointProducts      = "/products"
	EndpointSaveProduct   = "/save-product"
	EndpointUpdateProduct = "/update-product"
	EndpointGenerate      = "/generate"
	EndpointStatus        = "/status/"
)

// DefaultRequestTimeout applies when Options.Timeout is zero
const DefaultRequestTimeout = 30 * time.Second

// ClientVersion is reported in the User-Agent header
const ClientVersion = "1.0.0"

// NetworkError is a transport-level failure: DNS, refused connection,
// timeout or an unreadable response body.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-success HTTP status together with the response text
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed: %d %s - %s", e.StatusCode, e.Status, e.Body)
}

// DecodeError means the server answered 2xx but the JSON body was unusable
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Statistics tracks request counts and latency for the status line
type Statistics struct {
	TotalRequests       int           `json:"totalRequests"`
	SuccessfulRequests  int           `json:"successfulRequests"`
	FailedRequests      int           `json:"failedRequests"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
	LastRequestTime     time.Time     `json:"lastRequestTime"`
}
