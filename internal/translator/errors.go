package translator

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or placeholder credential. No request
// was sent.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Provider, e.Reason)
}

// ProviderError is a failure during a provider call: transport errors,
// non-2xx statuses and undecodable responses. It is never retried.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: API returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

var placeholderPrefixes = []string{
	"sk-your",
	"your-",
	"your_",
	"<",
	"changeme",
	"replace-me",
}

// IsPlaceholderKey reports whether key is empty or an obvious template value.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(k, p) {
			return true
		}
	}
	return false
}
