// Package openai implements the chat-completion gateway on an OpenAI-compatible API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/metrics"
)

// Default model ids per class.
const (
	DefaultStandardModel = "gpt-4-turbo-preview"
	DefaultLightModel    = "gpt-3.5-turbo"
	DefaultTimeout       = 60 * time.Second
)

// Completer is a chat-completion provider using the OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	apiKey   string
	models   map[domain.ModelClass]string
	timeout  time.Duration
	provider string
	logger   *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	StandardModel string
	LightModel    string
	Timeout       time.Duration
	Provider      string
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completer.
// An empty APIKey is accepted; every call then fails with domain.ErrConfiguration.
func NewCompleter(cfg *Config) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Completer{
		client:  openai.NewClientWithConfig(clientCfg),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		models: map[domain.ModelClass]string{
			domain.ModelStandard: firstNonEmpty(cfg.StandardModel, DefaultStandardModel),
			domain.ModelLight:    firstNonEmpty(cfg.LightModel, DefaultLightModel),
		},
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Complete implements domain.Completer. It issues exactly one request.
func (c *Completer) Complete(ctx context.Context, prompt domain.PromptSpec) (domain.Completion, error) {
	model := c.model(prompt.Model)

	if c.apiKey == "" {
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "not_configured").Inc()
		return domain.Completion{}, fmt.Errorf("completion API key is not set: %w", domain.ErrConfiguration)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, buildRequest(model, prompt))

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		kind, mapped := parseAPIError(ctx, err)
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, kind).Inc()
		return domain.Completion{}, mapped
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("model %s: %w", model, domain.ErrEmptyReply)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())

	u := resp.Usage
	if u.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(u.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "completion").Add(float64(u.CompletionTokens))
	}

	return domain.Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("completion API key is not set: %w", domain.ErrConfiguration)
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (c *Completer) model(class domain.ModelClass) string {
	if m, ok := c.models[class]; ok {
		return m
	}
	return c.models[domain.ModelStandard]
}

func buildRequest(model string, prompt domain.PromptSpec) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.User})

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	}
	if prompt.Format == domain.FormatJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

// parseAPIError maps a provider failure to a domain error and a metric label.
// Rejected credentials are a configuration fault; everything else is upstream.
func parseAPIError(ctx context.Context, err error) (string, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout", fmt.Errorf("completion request timed out: %w", domain.ErrUpstream)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled", fmt.Errorf("completion request canceled: %w", domain.ErrUpstream)
	}

	status, detail := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, detail = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status, detail = reqErr.HTTPStatusCode, extractDetail(reqErr.Body)
	default:
		return "transport", fmt.Errorf("completion request failed: %w", domain.ErrUpstream)
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "auth", fmt.Errorf("completion API rejected credentials (%d): %w", status, domain.ErrConfiguration)
	}
	return "api_error", fmt.Errorf("completion API error %d: %s: %w", status, detail, domain.ErrUpstream)
}

// extractDetail reads "detail" or "error.message" from an error body.
func extractDetail(body []byte) string {
	r := gjson.GetManyBytes(body, "detail", "error.message")
	for _, v := range r {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
