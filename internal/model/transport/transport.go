package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model/extract"

	"github.com/tidwall/gjson"
)

const (
	DefaultTimeout         = 60 * time.Second
	ContentTypeJSON        = "application/json"
	maxResponseBytes       = 8 << 20
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// NewClient returns an HTTP client bounded by timeout (DefaultTimeout when zero).
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Endpoint joins a base URL and a path suffix without doubling slashes.
func Endpoint(base, suffix string) string {
	return strings.TrimRight(base, "/") + suffix
}

type Response struct {
	StatusCode int
	Body       []byte
}

// PostJSON performs exactly one POST. Any failure before a status line is
// read is reported as ErrRequestFailed.
func PostJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, llmErrors.RequestFailed(provider, fmt.Errorf("construct request: %w", err))
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, llmErrors.RequestFailed(provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, llmErrors.RequestFailed(provider, fmt.Errorf("read response: %w", err))
	}

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// DecodeEnvelope parses the response body as a JSON object and converts
// vendor-reported errors into *errors.APIError.
func DecodeEnvelope(provider string, resp *Response) (gjson.Result, error) {
	failed := resp.StatusCode >= http.StatusBadRequest

	if !gjson.ValidBytes(resp.Body) {
		if failed {
			return gjson.Result{}, &llmErrors.APIError{Provider: provider, StatusCode: resp.StatusCode}
		}
		return gjson.Result{}, llmErrors.InvalidEnvelope(provider)
	}

	body := gjson.ParseBytes(resp.Body)
	if msg, ok := extract.VendorError(body); ok {
		return gjson.Result{}, &llmErrors.APIError{Provider: provider, StatusCode: statusIfFailed(resp.StatusCode), Message: msg}
	}
	if failed {
		return gjson.Result{}, &llmErrors.APIError{Provider: provider, StatusCode: resp.StatusCode}
	}
	if !body.IsObject() {
		return gjson.Result{}, llmErrors.InvalidEnvelope(provider)
	}

	return body, nil
}

func statusIfFailed(code int) int {
	if code >= http.StatusBadRequest {
		return code
	}
	return 0
}
