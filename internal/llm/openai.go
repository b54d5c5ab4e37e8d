package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	defaultAPIBase     = "http://localhost:11434/v1"
	defaultAPIKey      = "sk-no-key-required"
	defaultTemperature = 0.7
	defaultTimeout     = 60 * time.Second
	modelListTimeout   = 2 * time.Second
	preferredModelHint = "qwen"
)

// OpenAIClient calls POST {base}/chat/completions on an OpenAI-compatible server.
type OpenAIClient struct {
	httpClient  *http.Client
	apiBase     string
	apiKey      string
	temperature float64
	autoDetect  bool

	mu       sync.Mutex
	model    string
	detected bool
}

// NewOpenAIClient builds a client from cfg. A nil httpClient gets one with the
// configured timeout.
func NewOpenAIClient(cfg config.LLMConfig, httpClient *http.Client) *OpenAIClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if base == "" {
		base = defaultAPIBase
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = defaultAPIKey
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               nil,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &OpenAIClient{
		httpClient:  httpClient,
		apiBase:     base,
		apiKey:      apiKey,
		temperature: temperature,
		autoDetect:  cfg.AutoDetect,
		model:       cfg.Model,
	}
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// Endpoint is the base URL requests go to.
func (c *OpenAIClient) Endpoint() string { return c.apiBase }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends the conversation and returns choices[0].message.content.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.Model(ctx),
		Messages:    messages,
		Temperature: c.temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.apiBase + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(err, c.apiBase)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(err, c.apiBase)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, truncate(string(raw), 200))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, truncate(string(raw), 200))
	}

	return parsed.Choices[0].Message.Content, nil
}

// Model returns the model to use, asking the server for its installed models
// until one detection succeeds.
func (c *OpenAIClient) Model(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.autoDetect || c.detected {
		return c.model
	}

	detectCtx, cancel := context.WithTimeout(ctx, modelListTimeout)
	defer cancel()

	models, err := ListModels(detectCtx, c.httpClient, c.apiBase)
	if err != nil || len(models) == 0 {
		log.Debug().Err(err).Str("endpoint", c.apiBase).Msg("model autodetect skipped")
		return c.model
	}

	c.model = PickModel(models, c.model)
	c.detected = true
	log.Info().Str("model", c.model).Msg("llm model autodetected")
	return c.model
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels queries the Ollama tags endpoint that sits beside the /v1 API.
func ListModels(ctx context.Context, httpClient *http.Client, apiBase string) ([]string, error) {
	base := strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/v1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, classify(err, base)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// PickModel prefers a qwen model, then the first installed one, then fallback.
func PickModel(models []string, fallback string) string {
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), preferredModelHint) {
			return m
		}
	}
	if len(models) > 0 {
		return models[0]
	}
	return fallback
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
