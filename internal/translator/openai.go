package translator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/valpere/cliptran/internal/postprocess"
	"github.com/valpere/cliptran/internal/pricing"
)

// Default endpoints.
const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"
)

// maxErrorBody caps how much of an error response is kept in ProviderError.
const maxErrorBody = 2048

// chatClient speaks the OpenAI chat-completions wire format. The exported
// variants wrap it with their own endpoint and credential handling.
type chatClient struct {
	name      string
	baseURL   string
	apiKey    string
	client    *http.Client
	authorize func(*http.Request)
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *chatClient) Name() string { return c.name }

func (c *chatClient) CheckCredentials() error {
	if IsPlaceholderKey(c.apiKey) {
		return &ConfigurationError{Provider: c.name, Reason: "API key is missing or still a placeholder"}
	}
	return nil
}

func (c *chatClient) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	start := time.Now()

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(msg))),
		}
	}

	var out chatResponse
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("empty response from API")}
	}

	completion := &Completion{
		Text:    postprocess.Clean(out.Choices[0].Message.Content),
		Latency: time.Since(start),
	}
	if out.Usage != nil {
		completion.HasUsage = true
		completion.Usage = pricing.Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		}
	}
	return completion, nil
}

// OpenAIProvider calls the OpenAI API (or a compatible proxy) with a bearer
// key and optional organization header.
type OpenAIProvider struct {
	chatClient
	organization string
}

// NewOpenAIProvider creates the OpenAI variant. An empty baseURL selects the
// public endpoint; a nil client gets a 120s timeout.
func NewOpenAIProvider(apiKey, baseURL, organization string, client *http.Client) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	p := &OpenAIProvider{organization: organization}
	p.chatClient = chatClient{
		name:    pricing.ProviderOpenAI,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClientOrDefault(client),
		authorize: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+apiKey)
			if p.organization != "" {
				r.Header.Set("OpenAI-Organization", p.organization)
			}
		},
	}
	return p
}

// DeepSeekProvider calls the DeepSeek API.
type DeepSeekProvider struct {
	chatClient
}

// NewDeepSeekProvider creates the DeepSeek variant.
func NewDeepSeekProvider(apiKey, baseURL string, client *http.Client) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = DefaultDeepSeekBaseURL
	}
	return &DeepSeekProvider{chatClient{
		name:    pricing.ProviderDeepSeek,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClientOrDefault(client),
		authorize: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+apiKey)
			r.Header.Set("Accept", "application/json")
		},
	}}
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 120 * time.Second}
}
