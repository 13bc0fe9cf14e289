package model

import (
	"context"

	"github.com/harunnryd/listingai/internal/model/contract"
)

// ProviderAdapter attaches a registry name and provider type to a Client.
type ProviderAdapter struct {
	client       Client
	name         string
	providerType string
}

func NewProviderAdapter(name, providerType string, client Client) *ProviderAdapter {
	return &ProviderAdapter{client: client, name: name, providerType: providerType}
}

func (a *ProviderAdapter) CallStructured(ctx context.Context, messages []contract.Message, schema contract.Schema) (any, error) {
	return a.client.CallStructured(ctx, messages, schema)
}

func (a *ProviderAdapter) CallText(ctx context.Context, messages []contract.Message) (string, error) {
	return a.client.CallText(ctx, messages)
}

func (a *ProviderAdapter) Name() string {
	return a.name
}

func (a *ProviderAdapter) Type() string {
	return a.providerType
}
