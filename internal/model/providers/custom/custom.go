// Package custom talks to a generic chat-completions style backend whose
// response envelope is not known in advance.
package custom

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

	"github.com/tidwall/sjson"
)

const (
	DefaultMaxTokens = 2000

	chatCompletionsPath   = "/chat/completions"
	structuredTemperature = 0.1
	textTemperature       = 0.7
)

// ResponseProbes is the fixed precedence used to locate the reply text.
var ResponseProbes = []extract.Probe{
	extract.ChoicesProbe,
	extract.ContentProbe,
	extract.ResponseProbe,
}

type Provider struct {
	apiKey    string
	model     string
	endpoint  string
	headers   map[string]string
	maxTokens int
	strict    bool
	client    *http.Client
}

// New requires an endpoint; the model and credential may be empty.
func New(cfg contract.ProviderConfig) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, llmErrors.InvalidInput("custom provider requires an endpoint")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Provider{
		apiKey:    cfg.Credential,
		model:     cfg.Model,
		endpoint:  transport.Endpoint(cfg.Endpoint, chatCompletionsPath),
		headers:   maps.Clone(cfg.ExtraHeaders),
		maxTokens: maxTokens,
		strict:    cfg.StrictJSON,
		client:    transport.NewClient(cfg.Timeout),
	}, nil
}

func (p *Provider) Name() string {
	return "custom"
}

func (p *Provider) CallText(ctx context.Context, messages []contract.Message) (string, error) {
	body, err := p.requestBody(messages, textTemperature)
	if err != nil {
		return "", err
	}
	return p.send(ctx, body)
}

// CallStructured sends the schema as a sibling field next to format "json".
// Whether the backend honours either is up to the backend.
func (p *Provider) CallStructured(ctx context.Context, messages []contract.Message, schema contract.Schema) (any, error) {
	body, err := p.requestBody(messages, structuredTemperature)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, llmErrors.InvalidInput(fmt.Sprintf("encode schema: %v", err))
	}
	if body, err = sjson.SetBytes(body, "format", "json"); err != nil {
		return nil, llmErrors.Internal(fmt.Sprintf("set format: %v", err))
	}
	if body, err = sjson.SetRawBytes(body, "schema", encoded); err != nil {
		return nil, llmErrors.Internal(fmt.Sprintf("set schema: %v", err))
	}

	text, err := p.send(ctx, body)
	if err != nil {
		return nil, err
	}
	if p.strict {
		return extract.StructuredStrict(text)
	}
	return extract.Structured(text), nil
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []contract.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

func (p *Provider) requestBody(messages []contract.Message, temperature float64) ([]byte, error) {
	if messages == nil {
		messages = []contract.Message{}
	}
	b, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, llmErrors.Internal(fmt.Sprintf("encode custom request: %v", err))
	}
	return b, nil
}

func (p *Provider) send(ctx context.Context, body []byte) (string, error) {
	resp, err := transport.PostJSON(ctx, p.client, p.Name(), p.endpoint, p.header(), body)
	if err != nil {
		return "", err
	}

	envelope, err := transport.DecodeEnvelope(p.Name(), resp)
	if err != nil {
		return "", err
	}

	text, _, ok := extract.FirstMatch(envelope, ResponseProbes)
	if !ok {
		return "", llmErrors.UnrecognizedResponse(p.Name())
	}
	return text, nil
}

// header applies caller headers last so they can replace any default.
func (p *Provider) header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", transport.ContentTypeJSON)
	if p.apiKey != "" {
		h.Set("Authorization", "Bearer "+p.apiKey)
	}
	for k, v := range p.headers {
		h.Set(k, v)
	}
	return h
}
