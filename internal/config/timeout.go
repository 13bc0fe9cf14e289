package config

import (
	"fmt"
	"strings"
	"time"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
)

// Timeout resolves a timeout setting named by key. An empty value takes
// fallback; the result must be positive.
func Timeout(key, value, fallback string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(fallback)
	}
	if candidate == "" {
		return 0, llmErrors.InvalidInput(fmt.Sprintf("%s is not set", key))
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, llmErrors.InvalidInput(fmt.Sprintf("%s: %q is not a duration", key, candidate))
	}
	if d <= 0 {
		return 0, llmErrors.InvalidInput(fmt.Sprintf("%s must be positive, got %s", key, candidate))
	}
	return d, nil
}
