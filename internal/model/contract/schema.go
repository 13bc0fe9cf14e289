package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseSchema decodes a schema document. YAML is accepted alongside JSON.
func ParseSchema(data []byte) (Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if schema == nil {
		return nil, fmt.Errorf("parse schema: document is empty")
	}
	return schema, nil
}

// ParseConversation decodes an ordered list of messages.
func ParseConversation(data []byte) ([]Message, error) {
	var messages []Message
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse conversation: %w", err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}
