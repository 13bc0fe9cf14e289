package model

import (
	"fmt"

	"github.com/harunnryd/listingai/internal/config"
	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model/contract"
	anthropicProvider "github.com/harunnryd/listingai/internal/model/providers/anthropic"
	customProvider "github.com/harunnryd/listingai/internal/model/providers/custom"
	openaiProvider "github.com/harunnryd/listingai/internal/model/providers/openai"
)

// NewAdapter builds the adapter described by a registry entry.
func NewAdapter(entry config.ModelRegistry) (Adapter, error) {
	timeout, err := config.Timeout(fmt.Sprintf("models.registry[%s].request_timeout", entry.Name), entry.RequestTimeout, config.DefaultModelRequestTimeout)
	if err != nil {
		return nil, err
	}

	cfg := contract.ProviderConfig{
		Credential:   entry.APIKey,
		Model:        entry.Model,
		Endpoint:     entry.BaseURL,
		ExtraHeaders: entry.Headers,
		MaxTokens:    entry.MaxTokens,
		StrictJSON:   entry.StrictJSON,
		Timeout:      timeout,
	}

	switch entry.Provider {
	case "anthropic":
		if cfg.Credential == "" {
			return nil, llmErrors.InvalidInput("API key required for Anthropic provider")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = config.DefaultAnthropicBaseURL
		}
		return NewProviderAdapter(entry.Name, "anthropic", anthropicProvider.New(cfg)), nil

	case "openai":
		if cfg.Credential == "" {
			return nil, llmErrors.InvalidInput("API key required for OpenAI provider")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = config.DefaultOpenAIBaseURL
		}
		return NewProviderAdapter(entry.Name, "openai", openaiProvider.New(cfg)), nil

	case "ollama":
		if cfg.Endpoint == "" {
			cfg.Endpoint = config.DefaultOllamaBaseURL
		}
		if cfg.Credential == "" {
			cfg.Credential = config.DefaultOllamaAPIKey
		}
		return NewProviderAdapter(entry.Name, "ollama", openaiProvider.New(cfg)), nil

	case "custom":
		provider, err := customProvider.New(cfg)
		if err != nil {
			return nil, err
		}
		return NewProviderAdapter(entry.Name, "custom", provider), nil

	default:
		return nil, llmErrors.InvalidInput(fmt.Sprintf("unknown provider type: %s", entry.Provider))
	}
}
