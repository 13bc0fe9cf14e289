package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model/contract"
	"github.com/harunnryd/listingai/internal/model/fakeserver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, status int, body string, mutate ...func(*contract.ProviderConfig)) (*Provider, *fakeserver.Server) {
	t.Helper()
	srv := fakeserver.New(t, status, body)
	cfg := contract.ProviderConfig{
		Credential: "sk-test",
		Model:      "gpt-test",
		Endpoint:   srv.URL + "/v1/",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg), srv
}

func TestCallText_SystemStaysInBand(t *testing.T) {
	reply := fakeserver.Sentence()
	p, srv := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody(reply))

	got, err := p.CallText(context.Background(), []contract.Message{
		contract.System("You describe homes."),
		contract.User("Describe a loft."),
	})
	require.NoError(t, err)
	assert.Equal(t, reply, got)

	req := srv.Last(t)
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, []any{
		map[string]any{"role": "system", "content": "You describe homes."},
		map[string]any{"role": "user", "content": "Describe a loft."},
	}, req.Body["messages"])
	_, hasSystem := req.Body["system"]
	assert.False(t, hasSystem)
	_, hasFormat := req.Body["response_format"]
	assert.False(t, hasFormat)
	assert.Equal(t, "gpt-test", req.Body["model"])
	assert.Equal(t, float64(DefaultMaxTokens), req.Body["max_tokens"])
	assert.Equal(t, 0.7, req.Body["temperature"])
}

func TestCallText_Headers(t *testing.T) {
	p, srv := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody("ok"), func(c *contract.ProviderConfig) {
		c.ExtraHeaders = map[string]string{"OpenAI-Organization": "org-listings"}
	})

	_, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	require.NoError(t, err)

	h := srv.Last(t).Header
	assert.Equal(t, "Bearer sk-test", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "org-listings", h.Get("OpenAI-Organization"))
	assert.Empty(t, h.Get("x-api-key"))
}

func TestCallText_NoChoicesIsEmpty(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, `{"id":"x","choices":[]}`)

	got, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCallStructured_ResponseFormat(t *testing.T) {
	p, srv := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody(`{"city":"Leeds"}`))

	schema := contract.Schema{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
	}
	got, err := p.CallStructured(context.Background(), []contract.Message{contract.User("Where is it?")}, schema)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Leeds"}, got)

	req := srv.Last(t)
	assert.Equal(t, 0.1, req.Body["temperature"])

	format, ok := req.Body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	jsonSchema, ok := format["json_schema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, SchemaName, jsonSchema["name"])
	assert.Equal(t, map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
	}, jsonSchema["schema"])
}

func TestCallStructured_FencedAndRaw(t *testing.T) {
	p, srv := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody("```json\n{\"a\":1}\n```"))
	msgs := []contract.Message{contract.User("hi")}

	fenced, err := p.CallStructured(context.Background(), msgs, contract.Schema{})
	require.NoError(t, err)

	srv.Reply(http.StatusOK, fakeserver.ChatCompletionBody(`{"a":1}`))
	raw, err := p.CallStructured(context.Background(), msgs, contract.Schema{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": float64(1)}, fenced)
	assert.Equal(t, fenced, raw)
}

func TestCallStructured_MalformedYieldsEmptyMapping(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody("not json"))

	got, err := p.CallStructured(context.Background(), []contract.Message{contract.User("hi")}, contract.Schema{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got)
}

func TestCall_VendorError(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusTooManyRequests, fakeserver.ErrorBody("Rate limit reached for gpt-test"))

	_, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llmErrors.ErrAPI))
	assert.Contains(t, err.Error(), "Rate limit reached for gpt-test")

	var apiErr *llmErrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestCall_VendorErrorWithoutMessage(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, `{"error":{"code":"server_error"}}`)

	_, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	assert.True(t, errors.Is(err, llmErrors.ErrAPI))
	assert.Contains(t, err.Error(), "Unknown error")
}

func TestCall_TransportFailure(t *testing.T) {
	p, srv := newTestProvider(t, http.StatusOK, "{}")
	srv.Close()

	_, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llmErrors.ErrRequestFailed))
	assert.Contains(t, err.Error(), "openai request failed")
}

func TestCall_Cancelled(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody("ok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CallText(ctx, []contract.Message{contract.User("hi")})
	assert.True(t, errors.Is(err, llmErrors.ErrRequestFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCallText_EmptyContentKeptOnWire(t *testing.T) {
	p, srv := newTestProvider(t, http.StatusOK, fakeserver.ChatCompletionBody("hello"))

	_, err := p.CallText(context.Background(), []contract.Message{
		contract.System(""),
		contract.User("hi"),
	})
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"role":"system","content":""},{"role":"user","content":"hi"}]`,
		string(mustMarshal(t, srv.Last(t).Body["messages"])))
}

func TestCallText_TolerantEnvelopeFields(t *testing.T) {
	bodies := []string{
		`{"choices":[{"message":{"content":"ok"}}],"created":1718000000.5}`,
		`{"choices":[{"index":"0","message":{"role":"assistant","content":"ok"}}]}`,
		`{"choices":[{"message":{"content":"ok"}}],"usage":"weird"}`,
	}

	for _, body := range bodies {
		p, _ := newTestProvider(t, http.StatusOK, body)
		got, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
		require.NoError(t, err, body)
		assert.Equal(t, "ok", got, body)
	}
}

func TestCallText_NullContentIsEmpty(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusOK, `{"choices":[{"message":{"content":null}}]}`)

	got, err := p.CallText(context.Background(), []contract.Message{contract.User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
