package model

import (
	"context"

	"github.com/harunnryd/listingai/internal/model/contract"
)

// Client is the contract every vendor adapter implements.
type Client interface {
	CallStructured(ctx context.Context, messages []contract.Message, schema contract.Schema) (any, error)
	CallText(ctx context.Context, messages []contract.Message) (string, error)
}

// Adapter is a configured Client known by a registry name.
type Adapter interface {
	Client
	Name() string
	Type() string
}

type ModelRouter interface {
	CallStructured(ctx context.Context, model string, messages []contract.Message, schema contract.Schema) (any, error)
	CallText(ctx context.Context, model string, messages []contract.Message) (string, error)
	Adapter(model string) (Adapter, error)
	ListModels() []ModelInfo
}

type ModelInfo struct {
	Name     string `json:"name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Strict   bool   `json:"strict_json" yaml:"strict_json"`
}
