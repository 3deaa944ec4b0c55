package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/voocel/litellm"
)

// Config holds provider configuration.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// LiteLLMProvider implements Provider using the litellm client, which routes
// to OpenAI, Anthropic or Gemini depending on the configured model name.
type LiteLLMProvider struct {
	client *litellm.Client
	cfg    Config
}

// NewLiteLLMProvider creates a provider for the configured model.
func NewLiteLLMProvider(cfg Config) *LiteLLMProvider {
	if cfg.APIKey == "" {
		return &LiteLLMProvider{cfg: cfg}
	}

	var opt litellm.ClientOption
	switch {
	case strings.HasPrefix(cfg.Model, "claude"):
		if cfg.BaseURL != "" {
			opt = litellm.WithAnthropic(cfg.APIKey, cfg.BaseURL)
		} else {
			opt = litellm.WithAnthropic(cfg.APIKey)
		}
	case strings.HasPrefix(cfg.Model, "gemini"):
		if cfg.BaseURL != "" {
			opt = litellm.WithGemini(cfg.APIKey, cfg.BaseURL)
		} else {
			opt = litellm.WithGemini(cfg.APIKey)
		}
	default:
		if cfg.BaseURL != "" {
			opt = litellm.WithOpenAI(cfg.APIKey, cfg.BaseURL)
		} else {
			opt = litellm.WithOpenAI(cfg.APIKey)
		}
	}

	client := litellm.New(opt, litellm.WithDefaults(cfg.MaxTokens, cfg.Temperature))

	return &LiteLLMProvider{client: client, cfg: cfg}
}

// Complete generates a completion for the given prompt.
func (p *LiteLLMProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("llm provider not configured")
	}

	req := &litellm.Request{
		Model: p.cfg.Model,
		Messages: []litellm.Message{
			{Role: "user", Content: prompt},
		},
	}
	if p.cfg.Temperature != 0 {
		req.Temperature = litellm.Float64Ptr(p.cfg.Temperature)
	}
	if p.cfg.MaxTokens != 0 {
		req.MaxTokens = litellm.IntPtr(p.cfg.MaxTokens)
	}

	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	return resp.Content, nil
}

// IsConfigured returns true if the provider has an API key and model.
func (p *LiteLLMProvider) IsConfigured() bool {
	return p.client != nil && p.cfg.Model != ""
}
