package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMarshalJSON(t *testing.T) {
	var nilSchema Schema
	b, err := json.Marshal(nilSchema)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))

	b, err = json.Marshal(Schema{"price": "number"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"number"}`, string(b))
}

func TestParseSchema_YAMLAndJSON(t *testing.T) {
	fromYAML, err := ParseSchema([]byte("type: object\nproperties:\n  bedrooms:\n    type: integer\n"))
	require.NoError(t, err)

	fromJSON, err := ParseSchema([]byte(`{"type":"object","properties":{"bedrooms":{"type":"integer"}}}`))
	require.NoError(t, err)

	a, _ := json.Marshal(fromYAML)
	b, _ := json.Marshal(fromJSON)
	assert.JSONEq(t, string(b), string(a))
}

func TestParseSchema_Empty(t *testing.T) {
	_, err := ParseSchema([]byte(""))
	assert.Error(t, err)
}

func TestParseConversation(t *testing.T) {
	messages, err := ParseConversation([]byte(`
- role: system
  content: You write listing blurbs.
- role: user
  content: Three bed cottage near the river.
`))
	require.NoError(t, err)
	assert.Equal(t, []Message{
		System("You write listing blurbs."),
		User("Three bed cottage near the river."),
	}, messages)

	empty, err := ParseConversation([]byte("[]"))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
