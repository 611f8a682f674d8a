// Package clients fetches the static assets a report embeds.
package clients

import (
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"
)

type HTTPClientOptions struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	UserAgent        string
}

// DefaultHTTPClientOptions bounds every logo fetch; a fetch that outlives
// Timeout fails the export.
func DefaultHTTPClientOptions() *HTTPClientOptions {
	return &HTTPClientOptions{
		RetryCount:       2,
		RetryWaitTime:    500 * time.Millisecond,
		RetryMaxWaitTime: 2 * time.Second,
		Timeout:          15 * time.Second,
		UserAgent:        "observador/1.0",
	}
}

func newHTTPClient(t *HTTPClientOptions) *resty.Client {
	return resty.New().
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetTimeout(t.Timeout).
		SetHeader("User-Agent", t.UserAgent).
		SetHeader("Accept", "image/png,image/jpeg,image/webp,image/gif;q=0.9,*/*;q=0.5")
}

func statusError(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("asset not found (404)")
	case code == http.StatusForbidden, code == http.StatusUnauthorized:
		return fmt.Errorf("asset access denied (%d)", code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("asset host is rate limiting (429)")
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
