package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	llmErrors "github.com/harunnryd/listingai/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.anthropic.com/v1/messages", Endpoint("https://api.anthropic.com/v1/", "/messages"))
	assert.Equal(t, "http://localhost:8080/chat/completions", Endpoint("http://localhost:8080", "/chat/completions"))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient(0).Timeout)
	assert.Equal(t, 5*time.Second, NewClient(5*time.Second).Timeout)
}

func TestPostJSON_SendsHeadersAndBody(t *testing.T) {
	var gotHeader http.Header
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("x-api-key", "secret")

	resp, err := PostJSON(context.Background(), srv.Client(), "anthropic", srv.URL, h, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "secret", gotHeader.Get("x-api-key"))
	assert.Equal(t, ContentTypeJSON, gotHeader.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestPostJSON_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := PostJSON(context.Background(), NewClient(time.Second), "openai", url, nil, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, llmErrors.ErrRequestFailed))
	assert.Contains(t, err.Error(), "openai request failed")
}

func TestPostJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := PostJSON(context.Background(), NewClient(50*time.Millisecond), "custom", srv.URL, nil, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, llmErrors.ErrRequestFailed))
}

func TestDecodeEnvelope(t *testing.T) {
	body, err := DecodeEnvelope("custom", &Response{StatusCode: 200, Body: []byte(`{"response":"hi"}`)})
	require.NoError(t, err)
	assert.Equal(t, "hi", body.Get("response").String())

	_, err = DecodeEnvelope("custom", &Response{StatusCode: 200, Body: []byte(`<html>`)})
	assert.True(t, errors.Is(err, llmErrors.ErrInvalidEnvelope))
	assert.Equal(t, "custom returned invalid JSON", err.Error())

	_, err = DecodeEnvelope("custom", &Response{StatusCode: 200, Body: []byte(`"just a string"`)})
	assert.True(t, errors.Is(err, llmErrors.ErrInvalidEnvelope))

	_, err = DecodeEnvelope("openai", &Response{StatusCode: 401, Body: []byte(`{"error":{"message":"Incorrect API key provided"}}`)})
	var apiErr *llmErrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Incorrect API key provided")

	_, err = DecodeEnvelope("openai", &Response{StatusCode: 200, Body: []byte(`{"error":{"type":"overloaded"}}`)})
	assert.True(t, errors.Is(err, llmErrors.ErrAPI))
	assert.Contains(t, err.Error(), "Unknown error")

	_, err = DecodeEnvelope("anthropic", &Response{StatusCode: 502, Body: []byte(`Bad Gateway`)})
	assert.True(t, errors.Is(err, llmErrors.ErrAPI))
	assert.Contains(t, err.Error(), "status 502")
}
