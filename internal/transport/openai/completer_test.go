package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterCompletionMetrics()
	os.Exit(m.Run())
}

// chatRequest mirrors the fields of the OpenAI chat request the tests inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature    float32 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4-turbo-preview",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
	}
}

func newTestCompleter(url, key string, timeout time.Duration) *Completer {
	return NewCompleter(&Config{
		APIKey:   key,
		BaseURL:  url,
		Timeout:  timeout,
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestCompleter_Complete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"careers":[]}`))
	}))
	defer server.Close()

	c := newTestCompleter(server.URL, "test-key", time.Second)
	res, err := c.Complete(context.Background(), domain.PromptSpec{
		System:      "sys",
		User:        "find careers",
		Format:      domain.FormatJSON,
		Temperature: 0.7,
		MaxTokens:   1500,
		Model:       domain.ModelStandard,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if res.Content != `{"careers":[]}` {
		t.Errorf("content = %q", res.Content)
	}
	if res.PromptTokens != 120 || res.CompletionTokens != 80 || res.TotalTokens != 200 {
		t.Errorf("usage = %+v", res)
	}
	if got.Model != DefaultStandardModel {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "find careers" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v", got.ResponseFormat)
	}
	if got.MaxTokens != 1500 || got.Temperature != 0.7 {
		t.Errorf("max_tokens=%d temperature=%v", got.MaxTokens, got.Temperature)
	}
}

func TestCompleter_LightTextPrompt(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("https://www.iitb.ac.in"))
	}))
	defer server.Close()

	c := newTestCompleter(server.URL, "test-key", time.Second)
	if _, err := c.Complete(context.Background(), domain.PromptSpec{
		User: "url please", Format: domain.FormatText, Temperature: 0.3, Model: domain.ModelLight,
	}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got.Model != DefaultLightModel {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("a prompt without system text must send one user message, got %+v", got.Messages)
	}
	if got.ResponseFormat != nil {
		t.Errorf("plain text prompts must not request json_object, got %+v", got.ResponseFormat)
	}
}

func TestCompleter_MissingKeyNoNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := newTestCompleter(server.URL, "  ", time.Second)
	_, err := c.Complete(context.Background(), domain.PromptSpec{User: "x"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("health check without key: %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("no request may reach the provider, got %d", hits.Load())
	}
}

func TestCompleter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized,
			`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, domain.ErrConfiguration},
		{"forbidden", http.StatusForbidden,
			`{"error":{"message":"Country not supported","type":"forbidden"}}`, domain.ErrConfiguration},
		{"server error", http.StatusInternalServerError,
			`{"error":{"message":"The server had an error","type":"server_error"}}`, domain.ErrUpstream},
		{"non-json body", http.StatusBadGateway, `upstream connect error`, domain.ErrUpstream},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			c := newTestCompleter(server.URL, "test-key", time.Second)
			_, err := c.Complete(context.Background(), domain.PromptSpec{User: "x"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if hits.Load() != 1 {
				t.Errorf("failures must not be retried, hits = %d", hits.Load())
			}
		})
	}
}

func TestCompleter_EmptyReply(t *testing.T) {
	for name, content := range map[string]string{"blank": "  \n", "no choices": ""} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				resp := chatResponse(content)
				if name == "no choices" {
					resp["choices"] = []any{}
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			}))
			defer server.Close()

			c := newTestCompleter(server.URL, "test-key", time.Second)
			_, err := c.Complete(context.Background(), domain.PromptSpec{User: "x"})
			if !errors.Is(err, domain.ErrEmptyReply) || !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("expected ErrEmptyReply wrapping ErrUpstream, got %v", err)
			}
		})
	}
}

func TestCompleter_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestCompleter(server.URL, "test-key", 50*time.Millisecond)
	start := time.Now()
	_, err := c.Complete(context.Background(), domain.PromptSpec{User: "x"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream on timeout, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestCompleter_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-3.5-turbo","object":"model"}]}`))
	}))
	defer server.Close()

	c := newTestCompleter(server.URL, "test-key", time.Second)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		body, want string
	}{
		{`{"detail":"model not found"}`, "model not found"},
		{`{"error":{"message":"rate limit"}}`, "rate limit"},
		{`plain failure`, "plain failure"},
	}
	for _, tc := range tests {
		if got := extractDetail([]byte(tc.body)); got != tc.want {
			t.Errorf("extractDetail(%s) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
