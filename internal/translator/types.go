package translator

import (
	"context"
	"time"

	"github.com/valpere/cliptran/internal/pricing"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one entry of the ordered chat payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the provider-neutral completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// Completion is the provider-neutral response. HasUsage is false when the
// provider omitted token counts; Usage is then all zero.
type Completion struct {
	Text     string
	Usage    pricing.Usage
	HasUsage bool
	Latency  time.Duration
}

// Provider is a remote chat-completion service. Variants differ only in
// endpoint and credential scheme.
type Provider interface {
	Name() string
	// CheckCredentials returns a *ConfigurationError when the provider cannot
	// be called. It never touches the network.
	CheckCredentials() error
	Complete(ctx context.Context, req ChatRequest) (*Completion, error)
}

// Registry maps provider IDs to providers.
type Registry map[string]Provider

// Get returns the provider registered under id.
func (r Registry) Get(id string) (Provider, bool) {
	p, ok := r[id]
	return p, ok
}
