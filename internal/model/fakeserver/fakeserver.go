// Package fakeserver provides an httptest-backed vendor endpoint that
// records every request and replies with a canned body.
package fakeserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	loremgen "github.com/bozaro/golorem"
)

// Captured is one request as seen by the server.
type Captured struct {
	Method string
	Path   string
	Header http.Header
	Raw    []byte
	Body   map[string]any
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests []Captured
}

// New starts a server replying with status and body and closes it with t.
func New(t testing.TB, status int, body string) *Server {
	t.Helper()

	s := &Server{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Reply changes the canned response for subsequent requests.
func (s *Server) Reply(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

func (s *Server) Requests() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Captured, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent request; it fails the test when there is none.
func (s *Server) Last(t testing.TB) Captured {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatalf("fakeserver: no requests captured")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	captured := Captured{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Raw:    raw,
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		captured.Body = decoded
	}

	s.mu.Lock()
	s.requests = append(s.requests, captured)
	status, body := s.status, s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

var (
	loremMu  sync.Mutex
	loremGen = loremgen.New()
)

// Sentence returns filler text for replies whose wording does not matter.
func Sentence() string {
	loremMu.Lock()
	defer loremMu.Unlock()
	return loremGen.Sentence(5, 12)
}

// AnthropicBody wraps text in a messages-API response.
func AnthropicBody(text string) string {
	return mustJSON(map[string]any{
		"id":          "msg_fake",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-3-7-sonnet-latest",
		"stop_reason": "end_turn",
		"content":     []any{map[string]any{"type": "text", "text": text}},
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
}

// ChatCompletionBody wraps text in a chat-completions response.
func ChatCompletionBody(text string) string {
	return mustJSON(map[string]any{
		"id":      "chatcmpl-fake",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": text},
		}},
	})
}

// ErrorBody returns a vendor error envelope carrying message.
func ErrorBody(message string) string {
	return mustJSON(map[string]any{
		"error": map[string]any{"type": "invalid_request_error", "message": message},
	})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
