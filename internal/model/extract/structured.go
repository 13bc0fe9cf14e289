package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)\\s*```")

// UnwrapFence returns the body of the first fenced code block, or the
// trimmed input when there is none.
func UnwrapFence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// Structured parses model output as a JSON mapping or array. Anything else,
// including an empty container, yields an empty mapping.
func Structured(text string) any {
	v, ok := decodeContainer(UnwrapFence(text))
	if !ok {
		return map[string]any{}
	}
	return v
}

// StructuredStrict is Structured with the failure surfaced as ErrInvalidModelOutput.
func StructuredStrict(text string) (any, error) {
	v, ok := decodeContainer(UnwrapFence(text))
	if !ok {
		return nil, llmErrors.InvalidModelOutput("structured output is not a non-empty JSON object or array")
	}
	return v, nil
}

func decodeContainer(raw string) (any, bool) {
	if raw == "" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]any:
		return t, len(t) > 0
	case []any:
		return t, len(t) > 0
	default:
		return nil, false
	}
}
