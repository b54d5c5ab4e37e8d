package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-no-key-required", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Bias is 12%."}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIBase: srv.URL + "/v1/", Model: "qwen2.5:7b"}, srv.Client())
	reply, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "Bias is 12%.", reply)
	assert.Equal(t, "qwen2.5:7b", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, srv.URL+"/v1", c.Endpoint())
}

func TestOpenAIClientBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIBase: srv.URL}, srv.Client())
	_, err := c.Complete(context.Background(), nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "model not found", statusErr.Body)
	assert.Contains(t, Diagnose(err, c.Endpoint()), "status 404")
}

func TestOpenAIClientUnknownFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIBase: srv.URL}, srv.Client())
	_, err := c.Complete(context.Background(), nil)

	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, Diagnose(err, c.Endpoint()), "unknown format")
}

func TestOpenAIClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIBase: base}, &http.Client{Timeout: time.Second})
	_, err := c.Complete(context.Background(), nil)

	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, Diagnose(err, base), base)
}

func TestOpenAIClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewOpenAIClient(config.LLMConfig{APIBase: srv.URL}, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := c.Complete(context.Background(), nil)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, Diagnose(err, srv.URL), "too long")
}

func TestOpenAIClientModelAutodetect(t *testing.T) {
	var tagCalls int
	var used string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			tagCalls++
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3:8b"},{"name":"Qwen2.5:14b"}]}`))
		case "/v1/chat/completions":
			var req chatRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			used = req.Model
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIBase: srv.URL + "/v1", Model: "fallback", AutoDetect: true}, srv.Client())
	for i := 0; i < 2; i++ {
		_, err := c.Complete(context.Background(), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, "Qwen2.5:14b", used)
	assert.Equal(t, 1, tagCalls)
}

func TestPickModel(t *testing.T) {
	assert.Equal(t, "qwen2:7b", PickModel([]string{"mistral", "qwen2:7b"}, "x"))
	assert.Equal(t, "mistral", PickModel([]string{"mistral", "llama3"}, "x"))
	assert.Equal(t, "x", PickModel(nil, "x"))
}

func TestDiagnoseFallback(t *testing.T) {
	assert.Empty(t, Diagnose(nil, ""))
	assert.Contains(t, Diagnose(errors.New("boom"), ""), "boom")
}

func TestNewSelectsProvider(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, New(config.LLMConfig{}).Name())
	assert.Equal(t, ProviderAnthropic, New(config.LLMConfig{Provider: "Anthropic", APIKey: "k"}).Name())
}
