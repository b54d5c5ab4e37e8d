// Package llm talks to chat-completion backends: any OpenAI-compatible
// server (Ollama, LM Studio, vLLM) or Anthropic's Messages API.
package llm

import (
	"context"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/config"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client produces an assistant reply for a conversation.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Name() string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// New returns the client selected by cfg.Provider, defaulting to OpenAI-compatible.
func New(cfg config.LLMConfig) Client {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	default:
		return NewOpenAIClient(cfg, nil)
	}
}
