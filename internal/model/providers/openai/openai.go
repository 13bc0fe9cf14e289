// Package openai adapts chat-completions backends: OpenAI itself, Ollama and
// any other server that speaks the same wire format.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model/contract"
	"github.com/harunnryd/listingai/internal/model/extract"
	"github.com/harunnryd/listingai/internal/model/transport"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = openai.GPT4oMini
	DefaultMaxTokens = 2000

	// SchemaName is the fixed name of the structured-output container.
	SchemaName = "response"

	chatCompletionsPath   = "/chat/completions"
	structuredTemperature = 0.1
	textTemperature       = 0.7
)

type Provider struct {
	apiKey    string
	model     string
	endpoint  string
	headers   map[string]string
	maxTokens int
	strict    bool
	client    *http.Client
}

func New(cfg contract.ProviderConfig) *Provider {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Provider{
		apiKey:    cfg.Credential,
		model:     model,
		endpoint:  transport.Endpoint(baseURL, chatCompletionsPath),
		headers:   maps.Clone(cfg.ExtraHeaders),
		maxTokens: maxTokens,
		strict:    cfg.StrictJSON,
		client:    transport.NewClient(cfg.Timeout),
	}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) CallText(ctx context.Context, messages []contract.Message) (string, error) {
	return p.send(ctx, p.chatRequest(messages, textTemperature))
}

// CallStructured relies on the backend enforcing response_format natively.
func (p *Provider) CallStructured(ctx context.Context, messages []contract.Message, schema contract.Schema) (any, error) {
	req := p.chatRequest(messages, structuredTemperature)
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   SchemaName,
			Schema: schema,
		},
	}

	text, err := p.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.strict {
		return extract.StructuredStrict(text)
	}
	return extract.Structured(text), nil
}

// completionRequest keeps every message field on the wire, including empty content.
type completionRequest struct {
	Model          string                               `json:"model"`
	Messages       []contract.Message                   `json:"messages"`
	MaxTokens      int                                  `json:"max_tokens"`
	Temperature    float64                              `json:"temperature"`
	ResponseFormat *openai.ChatCompletionResponseFormat `json:"response_format,omitempty"`
}

// chatRequest passes messages through verbatim; the wire roles already match.
func (p *Provider) chatRequest(messages []contract.Message, temperature float64) completionRequest {
	if messages == nil {
		messages = []contract.Message{}
	}
	return completionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: temperature,
	}
}

// send reads only choices[0].message.content so unrelated envelope fields
// with unexpected types do not fail the call.
func (p *Provider) send(ctx context.Context, req completionRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", llmErrors.Internal(fmt.Sprintf("encode openai request: %v", err))
	}

	resp, err := transport.PostJSON(ctx, p.client, p.Name(), p.endpoint, p.header(), b)
	if err != nil {
		return "", err
	}
	envelope, err := transport.DecodeEnvelope(p.Name(), resp)
	if err != nil {
		return "", err
	}

	text, _, _ := extract.FirstMatch(envelope, []extract.Probe{extract.ChoicesProbe})
	return text, nil
}

func (p *Provider) header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", transport.ContentTypeJSON)
	h.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.headers {
		h.Set(k, v)
	}
	return h
}
