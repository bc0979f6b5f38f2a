// Package httpc provides a shared HTTP client with sensible defaults.
// Use this instead of http.DefaultClient to ensure timeouts are set.
package httpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations. Only the local dashboard is ever
// contacted, so these are short.
const (
	DefaultTimeout        = 5 * time.Second
	DefaultConnectTimeout = 2 * time.Second
)

// maxBody bounds decoded responses
const maxBody = 1 << 20

// Client is a shared HTTP client with production-ready defaults.
var Client = NewClient(DefaultTimeout)

// NewClient creates a new HTTP client with the specified timeout.
// For most cases, use the shared Client variable instead.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: DefaultConnectTimeout,
			}).DialContext,
			MaxIdleConns:    4,
			IdleConnTimeout: 30 * time.Second,
			Proxy:           nil, // loopback only, never proxied
		},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, e.Body)
}

// GetJSON performs a GET and decodes the JSON response into v.
func GetJSON(ctx context.Context, url string, v any) error {
	return doJSON(ctx, http.MethodGet, url, v)
}

// PostJSON performs a body-less POST and decodes the JSON response into v.
// v may be nil.
func PostJSON(ctx context.Context, url string, v any) error {
	return doJSON(ctx, http.MethodPost, url, v)
}

func doJSON(ctx context.Context, method, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(body)
		return &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(body).Decode(v)
}
