// Package anthropic adapts the Messages API, where the system prompt travels
// in a top-level field rather than as a conversation turn.
package anthropic

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

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com/v1"
	DefaultMaxTokens = 4000
	APIVersion       = "2023-06-01"

	messagesPath          = "/messages"
	structuredTemperature = 0.1
	textTemperature       = 0.7
	schemaInstructionText = "You must respond with valid JSON matching this schema: "
)

var DefaultModel = string(anthropic.ModelClaude3_7SonnetLatest)

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
		endpoint:  transport.Endpoint(baseURL, messagesPath),
		headers:   maps.Clone(cfg.ExtraHeaders),
		maxTokens: maxTokens,
		strict:    cfg.StrictJSON,
		client:    transport.NewClient(cfg.Timeout),
	}
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) CallText(ctx context.Context, messages []contract.Message) (string, error) {
	system, turns := splitSystem(messages)
	return p.send(ctx, system, turns, textTemperature)
}

// CallStructured appends the schema to the system prompt. Nothing on the
// vendor side enforces it.
func (p *Provider) CallStructured(ctx context.Context, messages []contract.Message, schema contract.Schema) (any, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, llmErrors.InvalidInput(fmt.Sprintf("encode schema: %v", err))
	}

	system, turns := splitSystem(messages)
	system = withSchemaInstruction(system, string(encoded))

	text, err := p.send(ctx, system, turns, structuredTemperature)
	if err != nil {
		return nil, err
	}
	if p.strict {
		return extract.StructuredStrict(text)
	}
	return extract.Structured(text), nil
}

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	System      string  `json:"system,omitempty"`
	Messages    []turn  `json:"messages"`
	Temperature float64 `json:"temperature"`
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *Provider) send(ctx context.Context, system string, turns []turn, temperature float64) (string, error) {
	b, err := json.Marshal(messagesRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      system,
		Messages:    turns,
		Temperature: temperature,
	})
	if err != nil {
		return "", llmErrors.Internal(fmt.Sprintf("encode anthropic request: %v", err))
	}

	resp, err := transport.PostJSON(ctx, p.client, p.Name(), p.endpoint, p.header(), b)
	if err != nil {
		return "", err
	}
	if _, err := transport.DecodeEnvelope(p.Name(), resp); err != nil {
		return "", err
	}

	var msg anthropic.Message
	if err := json.Unmarshal(resp.Body, &msg); err != nil {
		return "", llmErrors.InvalidEnvelope(p.Name())
	}
	if len(msg.Content) == 0 {
		return "", nil
	}
	return msg.Content[0].Text, nil
}

func (p *Provider) header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", transport.ContentTypeJSON)
	h.Set("x-api-key", p.apiKey)
	h.Set("anthropic-version", APIVersion)
	for k, v := range p.headers {
		h.Set(k, v)
	}
	return h
}

// splitSystem lifts the first system turn into the top-level system field.
// Every other role outside user/assistant, later system turns included, is
// sent as a user turn.
func splitSystem(messages []contract.Message) (string, []turn) {
	system := ""
	seenSystem := false
	turns := make([]turn, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case contract.RoleSystem:
			if !seenSystem {
				system = m.Content
				seenSystem = true
				continue
			}
			turns = append(turns, turn{Role: contract.RoleUser, Content: m.Content})
		case contract.RoleUser, contract.RoleAssistant:
			turns = append(turns, turn{Role: m.Role, Content: m.Content})
		default:
			turns = append(turns, turn{Role: contract.RoleUser, Content: m.Content})
		}
	}
	return system, turns
}

func withSchemaInstruction(system, schema string) string {
	instruction := schemaInstructionText + schema
	if system == "" {
		return instruction
	}
	return system + "\n\n" + instruction
}
