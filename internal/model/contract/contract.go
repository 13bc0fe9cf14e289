package contract

import (
	"encoding/json"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Schema is an opaque JSON-schema-shaped value. Adapters embed it in the
// request but never validate the reply against it.
type Schema map[string]any

// MarshalJSON encodes a nil schema as an empty object.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(s))
}

// ProviderConfig is copied into an adapter at construction and never mutated.
type ProviderConfig struct {
	Credential   string
	Model        string
	Endpoint     string
	ExtraHeaders map[string]string
	// MaxTokens of zero selects the adapter's own ceiling.
	MaxTokens int
	// StrictJSON turns malformed structured output into ErrInvalidModelOutput
	// instead of an empty mapping.
	StrictJSON bool
	// Timeout of zero selects the 60 second default.
	Timeout time.Duration
}
